package handler

import (
	"net/http"
	"time"

	"github.com/ecopress/internal/config"
	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/mailer"
	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	cfg      config.AppConfig
	log      *zap.Logger
	metrics  *metrics.Metrics
	users    *service.UserService
	articles *service.ArticleService
	papers   *service.PaperService
	pages    *service.PageService
	search   *service.SearchService
	visits   *service.VisitService
	context  *service.ContextService
	contacts *service.ContactService
	now      func() time.Time
}

// Dependencies 构造 API 所需的外部依赖；Logger、Metrics、Mailer、Now 可以为空
type Dependencies struct {
	DB      *gorm.DB
	Config  config.AppConfig
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Mailer  mailer.Sender
	Now     func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(deps Dependencies) *API {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.NewIsolated()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := deps.Config
	config.ApplyDefaults(&cfg)

	articles := service.NewArticleService(deps.DB)
	visits := service.NewVisitService(deps.DB)

	return &API{
		db:       deps.DB,
		cfg:      cfg,
		log:      log,
		metrics:  m,
		users:    service.NewUserService(deps.DB),
		articles: articles,
		papers:   service.NewPaperService(deps.DB),
		pages:    service.NewPageService(deps.DB),
		search:   service.NewSearchService(deps.DB, cfg.Tracking.SearchPageSize),
		visits:   visits,
		context:  service.NewContextService(deps.DB, articles, visits, cfg.Tracking.RecencyCap, log),
		contacts: service.NewContactService(deps.DB, deps.Mailer, cfg.ContactRecipient, log),
		now:      now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Ping is the liveness probe.
func (a *API) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// renderHTML 在渲染模板前附加所有页面共用的数据：当前用户、最近浏览、访问汇总与搜索筛选项
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	user := currentUser(c)
	setDefault(payload, "currentUser", user)
	setDefault(payload, "staticURL", a.cfg.StaticURLPrefix)
	setDefault(payload, "adminURL", a.cfg.AdminPrefix)
	setDefault(payload, "trackVisitURL", a.cfg.TrackVisitPath)
	setDefault(payload, "year", a.now().Year())
	setDefault(payload, "flash", popFlash(c))

	if _, exists := payload["recentArticles"]; !exists {
		recent := a.context.RecentInSession(a.recentIDs(c))
		payload["recentArticles"] = recent.Articles
	}

	if _, exists := payload["visitTotal"]; !exists {
		var summary service.VisitSummary
		if user != nil {
			summary = a.context.VisitSummary(service.UserIdentity(user.ID))
		}
		payload["visitTotal"] = summary.Total
		payload["visitLastSeen"] = summary.LastSeen
	}

	if _, exists := payload["filterAuthors"]; !exists {
		options := a.context.FilterOptions(db.ArticleSchema)
		payload["filterAuthors"] = options.Authors
		payload["filterTags"] = options.Tags
		payload["filterCategories"] = options.Categories
	}

	c.HTML(status, template, payload)
}

func (a *API) renderError(c *gin.Context, status int, title, message string) {
	a.renderHTML(c, status, "error.html", gin.H{"title": title, "message": message})
}

func setDefault(payload gin.H, key string, value interface{}) {
	if _, exists := payload[key]; !exists {
		payload[key] = value
	}
}
