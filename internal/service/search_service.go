package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ecopress/internal/db"
	"gorm.io/gorm"
)

// DefaultSearchPageSize 搜索结果每页条数
const DefaultSearchPageSize = 8

// SearchParams 汇总搜索页的查询参数
type SearchParams struct {
	Query    string
	Author   string
	Tag      string
	Category string
	Page     int
}

// SearchResult 是一页搜索结果
type SearchResult[T any] struct {
	Items      []T
	Pagination Pagination
	Expr       *QueryExpr
}

// SearchService 将搜索词与筛选条件编译为 SQL 并执行分页查询
type SearchService struct {
	db       *gorm.DB
	pageSize int
}

// NewSearchService creates a SearchService; a non-positive pageSize uses the default.
func NewSearchService(gdb *gorm.DB, pageSize int) *SearchService {
	if pageSize <= 0 {
		pageSize = DefaultSearchPageSize
	}
	return &SearchService{db: gdb, pageSize: pageSize}
}

// SearchArticles 搜索已发布文章
func (s *SearchService) SearchArticles(params SearchParams) (*SearchResult[db.Article], error) {
	return runSearch[db.Article](s, &db.Article{}, "Author", db.ArticleSchema, params)
}

// SearchPapers 搜索已发布论文
func (s *SearchService) SearchPapers(params SearchParams) (*SearchResult[db.ResearchPaper], error) {
	return runSearch[db.ResearchPaper](s, &db.ResearchPaper{}, "UploadedBy", db.PaperSchema, params)
}

func runSearch[T any](s *SearchService, model interface{}, preload string, schema db.ContentSchema, params SearchParams) (*SearchResult[T], error) {
	expr := CompileQuery(ParseQuery(params.Query))
	result := &SearchResult[T]{Expr: expr}

	var total int64
	counter := s.applyFilters(s.db.Model(model), schema, expr, params)
	if err := counter.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", schema.Name, err)
	}

	result.Pagination = Paginate(params.Page, total, s.pageSize)

	orderBy := fmt.Sprintf("%s.%s desc, %s.id desc", schema.Table, schema.DateColumn, schema.Table)
	dataQuery := s.applyFilters(s.db.Model(model).Preload(preload), schema, expr, params)
	if err := dataQuery.Order(orderBy).
		Limit(result.Pagination.PerPage).
		Offset(result.Pagination.Offset()).
		Find(&result.Items).Error; err != nil {
		return nil, fmt.Errorf("search %s: %w", schema.Name, err)
	}

	return result, nil
}

func (s *SearchService) applyFilters(query *gorm.DB, schema db.ContentSchema, expr *QueryExpr, params SearchParams) *gorm.DB {
	column := func(name string) string { return schema.Table + "." + name }
	likeOp := likeOperator(s.db)

	query = query.Where(column("published")+" = ?", true)

	if expr != nil {
		columns := make([]string, 0, len(schema.TextColumns))
		for _, name := range schema.TextColumns {
			columns = append(columns, column(name))
		}
		clause, args := expr.SQL(columns, likeOp)
		query = query.Where(clause, args...)
	}

	if author := strings.TrimSpace(params.Author); author != "" {
		if id, err := strconv.ParseUint(author, 10, 32); err == nil {
			query = query.Where(column(schema.AuthorColumn)+" = ?", uint(id))
		} else {
			users := s.db.Model(&db.User{}).Select("id").Where("LOWER(username) = LOWER(?)", author)
			query = query.Where(column(schema.AuthorColumn)+" IN (?)", users)
		}
	}

	if tag := strings.TrimSpace(params.Tag); tag != "" && schema.HasTags() {
		query = query.Where(column(schema.TagColumn)+" "+likeOp+" ? ESCAPE '\\'", "%"+escapeLike(tag)+"%")
	}

	if category := strings.TrimSpace(params.Category); category != "" && schema.HasCategory() {
		query = query.Where("LOWER("+column(schema.CategoryColumn)+") = LOWER(?)", category)
	}

	return query
}

// likeOperator 返回当前方言下大小写不敏感的模糊匹配运算符
func likeOperator(gdb *gorm.DB) string {
	if gdb != nil && gdb.Dialector != nil && gdb.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}
