package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecopress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrArticleInvalid  = errors.New("article title and content are required")
	ErrSlugTaken       = errors.New("slug already in use")
	ErrCoverInvalid    = errors.New("cover dimensions are invalid")
)

// DefaultIndexPageSize 首页每页文章数
const DefaultIndexPageSize = 6

// ArticleService wraps article related database operations.
type ArticleService struct {
	db  *gorm.DB
	now func() time.Time
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title       string
	Slug        string
	Summary     string
	Content     string
	Category    string
	Tags        string
	Published   bool
	CoverURL    string
	CoverWidth  int
	CoverHeight int
}

// ArticleListResult 首页分页结果
type ArticleListResult struct {
	Articles   []db.Article
	Pagination Pagination
}

// NewArticleService creates an ArticleService instance.
func NewArticleService(gdb *gorm.DB) *ArticleService {
	return &ArticleService{db: gdb, now: time.Now}
}

// ListPublished returns a page of published articles, newest first.
func (s *ArticleService) ListPublished(page, perPage int) (*ArticleListResult, error) {
	if perPage <= 0 {
		perPage = DefaultIndexPageSize
	}

	var total int64
	if err := s.db.Model(&db.Article{}).Where("published = ?", true).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	result := &ArticleListResult{Pagination: Paginate(page, total, perPage)}
	if err := s.db.Preload("Author").
		Where("published = ?", true).
		Order("publish_date desc, id desc").
		Limit(result.Pagination.PerPage).
		Offset(result.Pagination.Offset()).
		Find(&result.Articles).Error; err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return result, nil
}

// GetBySlug 获取文章，includeDrafts 为 false 时只返回已发布文章
func (s *ArticleService) GetBySlug(slug string, includeDrafts bool) (*db.Article, error) {
	query := s.db.Preload("Author").Where("slug = ?", strings.TrimSpace(slug))
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}

	var article db.Article
	if err := query.First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// FindPublishedByIDs returns the published articles among ids, keyed by id.
func (s *ArticleService) FindPublishedByIDs(ids []uint) (map[uint]db.Article, error) {
	found := make(map[uint]db.Article, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var articles []db.Article
	if err := s.db.Preload("Author").
		Where("id IN ? AND published = ?", ids, true).
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("load articles by id: %w", err)
	}
	for _, article := range articles {
		found[article.ID] = article
	}
	return found, nil
}

// Create persists a new article authored by authorID.
func (s *ArticleService) Create(authorID uint, input ArticleInput) (*db.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	coverURL, coverWidth, coverHeight, err := normalizeCover(input)
	if err != nil {
		return nil, err
	}

	slug, err := uniqueSlug(s.db, &db.Article{}, input.Slug, input.Title, "article", 0)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		Title:       strings.TrimSpace(input.Title),
		Slug:        slug,
		Summary:     strings.TrimSpace(input.Summary),
		Content:     input.Content,
		Category:    strings.TrimSpace(input.Category),
		Tags:        normalizeTags(input.Tags),
		Published:   input.Published,
		CoverURL:    coverURL,
		CoverWidth:  coverWidth,
		CoverHeight: coverHeight,
	}
	if authorID != 0 {
		article.AuthorID = &authorID
	}
	if article.Published {
		article.PublishDate = s.now()
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	return &article, nil
}

// Update applies updates to the article identified by slug.
func (s *ArticleService) Update(slug string, input ArticleInput) (*db.Article, error) {
	existing, err := s.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}
	coverURL, coverWidth, coverHeight, err := normalizeCover(input)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Slug) == "" {
		input.Slug = existing.Slug
	}
	newSlug, err := uniqueSlug(s.db, &db.Article{}, input.Slug, input.Title, "article", existing.ID)
	if err != nil {
		return nil, err
	}

	if input.Published && (!existing.Published || existing.PublishDate.IsZero()) {
		existing.PublishDate = s.now()
	}

	existing.Title = strings.TrimSpace(input.Title)
	existing.Slug = newSlug
	existing.Summary = strings.TrimSpace(input.Summary)
	existing.Content = input.Content
	existing.Category = strings.TrimSpace(input.Category)
	existing.Tags = normalizeTags(input.Tags)
	existing.Published = input.Published
	existing.CoverURL = coverURL
	existing.CoverWidth = coverWidth
	existing.CoverHeight = coverHeight

	if err := s.db.Omit("Author").Save(existing).Error; err != nil {
		return nil, fmt.Errorf("update article: %w", err)
	}
	return existing, nil
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return ErrArticleInvalid
	}
	return nil
}

func normalizeCover(input ArticleInput) (string, int, int, error) {
	coverURL := strings.TrimSpace(input.CoverURL)
	if coverURL == "" {
		return "", 0, 0, nil
	}

	if input.CoverWidth <= 0 || input.CoverHeight <= 0 {
		return "", 0, 0, ErrCoverInvalid
	}

	return coverURL, input.CoverWidth, input.CoverHeight, nil
}

// normalizeTags 去除空白标签，并按不区分大小写的方式去重
func normalizeTags(raw string) string {
	tags := db.SplitTags(raw)
	seen := make(map[string]struct{}, len(tags))
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, tag)
	}
	return strings.Join(kept, ", ")
}
