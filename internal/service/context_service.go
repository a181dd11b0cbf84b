package service

import (
	"sort"
	"strings"
	"time"

	"github.com/ecopress/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthorOption 是搜索页作者下拉框中的一项
type AuthorOption struct {
	ID       uint
	Username string
}

// FilterOptions 搜索页的可选筛选项。Degraded 表示部分数据加载失败。
type FilterOptions struct {
	Authors    []AuthorOption
	Tags       []string
	Categories []string
	Degraded   bool
}

// RecentArticles 是会话中最近浏览的文章
type RecentArticles struct {
	Articles []db.Article
	Degraded bool
}

// TodayCounts 今日访问计数
type TodayCounts struct {
	TotalToday uint64
	UserToday  uint64
	Degraded   bool
}

// ContextService 为页面模板汇总公共数据。所有方法都不返回错误：
// 失败时记录日志并通过 Degraded 标记降级结果。
type ContextService struct {
	db         *gorm.DB
	articles   *ArticleService
	visits     *VisitService
	recencyCap int
	log        *zap.Logger
}

// NewContextService creates a ContextService.
func NewContextService(gdb *gorm.DB, articles *ArticleService, visits *VisitService, recencyCap int, log *zap.Logger) *ContextService {
	if recencyCap <= 0 {
		recencyCap = DefaultRecencyCap
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextService{db: gdb, articles: articles, visits: visits, recencyCap: recencyCap, log: log}
}

// FilterOptions 汇总 schema 对应内容表中已发布内容的作者、标签与分类
func (s *ContextService) FilterOptions(schema db.ContentSchema) FilterOptions {
	var result FilterOptions

	published := func() *gorm.DB {
		return s.db.Table(schema.Table).Where("published = ? AND deleted_at IS NULL", true)
	}

	authorIDs := published().Select(schema.AuthorColumn).Where(schema.AuthorColumn + " IS NOT NULL")
	if err := s.db.Model(&db.User{}).
		Select("id, username").
		Where("id IN (?)", authorIDs).
		Order("LOWER(username) asc").
		Scan(&result.Authors).Error; err != nil {
		s.log.Warn("load author options", zap.String("content", schema.Name), zap.Error(err))
		result.Authors = nil
		result.Degraded = true
	}

	if schema.HasTags() {
		var raw []string
		if err := published().Where(schema.TagColumn+" <> ''").Order("id asc").Pluck(schema.TagColumn, &raw).Error; err != nil {
			s.log.Warn("load tag options", zap.String("content", schema.Name), zap.Error(err))
			result.Degraded = true
		} else {
			result.Tags = flattenTags(raw)
		}
	}

	if schema.HasCategory() {
		var categories []string
		if err := published().
			Where(schema.CategoryColumn+" <> ''").
			Distinct().
			Pluck(schema.CategoryColumn, &categories).Error; err != nil {
			s.log.Warn("load category options", zap.String("content", schema.Name), zap.Error(err))
			result.Degraded = true
		} else {
			sortFold(categories)
			result.Categories = categories
		}
	}

	return result
}

// RecentInSession 按会话列表顺序返回仍然存在且已发布的文章，最多 recencyCap 篇
func (s *ContextService) RecentInSession(ids []uint) RecentArticles {
	if len(ids) > s.recencyCap {
		ids = ids[:s.recencyCap]
	}
	if len(ids) == 0 {
		return RecentArticles{}
	}

	found, err := s.articles.FindPublishedByIDs(ids)
	if err != nil {
		s.log.Warn("load recently viewed articles", zap.Error(err))
		return RecentArticles{Degraded: true}
	}

	articles := make([]db.Article, 0, len(ids))
	for _, id := range ids {
		if article, ok := found[id]; ok {
			articles = append(articles, article)
		}
	}
	return RecentArticles{Articles: articles}
}

// VisitSummary 返回登录用户的历史访问汇总；匿名访问返回零值
func (s *ContextService) VisitSummary(identity VisitIdentity) VisitSummary {
	if !identity.IsUser() {
		return VisitSummary{}
	}

	summary, err := s.visits.Summary(identity)
	if err != nil {
		s.log.Warn("load visit summary", zap.Uint("user_id", identity.UserID), zap.Error(err))
		return VisitSummary{Degraded: true}
	}
	return summary
}

// TodayCounts 返回今日全站访问数与 identity 的访问数
func (s *ContextService) TodayCounts(identity VisitIdentity, now time.Time) TodayCounts {
	userTotal, globalTotal, err := s.visits.Counts(identity, now)
	if err != nil {
		s.log.Warn("load today visit counts", zap.Error(err))
		return TodayCounts{Degraded: true}
	}
	return TodayCounts{TotalToday: globalTotal, UserToday: userTotal}
}

// flattenTags 拆分逗号分隔的标签，按不区分大小写去重，保留首次出现的写法
func flattenTags(raw []string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, len(raw))
	for _, value := range raw {
		for _, tag := range db.SplitTags(value) {
			key := strings.ToLower(tag)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, tag)
		}
	}

	sortFold(tags)
	return tags
}

// sortFold 忽略大小写排序，大小写相同的值保持原有顺序
func sortFold(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return strings.ToLower(values[i]) < strings.ToLower(values[j])
	})
}
