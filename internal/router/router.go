package router

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/ecopress/internal/config"
	"github.com/ecopress/internal/handler"
	"github.com/ecopress/internal/logger"
	"github.com/ecopress/internal/mailer"
	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionName = "ecopress_session"

// Options 汇总构建路由所需的依赖；Logger、Metrics、Mailer、Now 可以为空
type Options struct {
	Config  config.AppConfig
	DB      *gorm.DB
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Mailer  mailer.Sender
	Now     func() time.Time
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) (*gin.Engine, error) {
	if opts.DB == nil {
		return nil, errors.New("router: database is required")
	}

	cfg := opts.Config
	config.ApplyDefaults(&cfg)

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewIsolated()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	api := handler.NewAPI(handler.Dependencies{
		DB:      opts.DB,
		Config:  cfg,
		Logger:  log,
		Metrics: m,
		Mailer:  opts.Mailer,
		Now:     now,
	})
	handler.RegisterValidators()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(logger.GinMiddleware(log), gin.Recovery())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 加载模板并添加自定义函数
	tmpl, err := web.Templates(templateFuncs(now))
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS(routePrefix(cfg.StaticURLPrefix), http.FS(web.Static()))
	r.Static(routePrefix(cfg.UploadURLPath), cfg.UploadDir)

	r.GET("/ping", api.Ping)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"title":     "Not found",
			"message":   "The page you are looking for does not exist.",
			"staticURL": cfg.StaticURLPrefix,
			"year":      now().Year(),
		})
	})

	site := r.Group("/")
	site.Use(api.CurrentUser(), api.TrackVisits())
	{
		site.GET("/", api.ShowIndex)
		site.GET("/about/", api.ShowAbout)
		site.GET("/team/", api.ShowTeam)
		site.GET("/contact/", api.ShowContact)
		site.POST("/contact/", api.SubmitContact)
		site.GET("/search/", api.Search)
		site.GET(cfg.TrackVisitPath, api.TrackVisit)

		site.GET("/signup/", api.ShowSignup)
		site.POST("/signup/", api.Signup)
		site.GET("/login/", api.ShowLogin)
		site.POST("/login/", api.Login)
		site.GET("/logout/", api.Logout)

		site.GET("/article/:slug/", api.ShowArticle)
		site.GET("/paper/:slug/", api.ShowPaper)

		member := site.Group("")
		member.Use(api.LoginRequired())
		{
			member.GET("/dashboard/", api.ShowDashboard)
		}

		editor := site.Group("")
		editor.Use(api.EditorRequired())
		{
			editor.GET("/article/add/", api.ShowArticleCreate)
			editor.POST("/article/add/", api.CreateArticle)
			editor.POST("/article/cover/", api.UploadCover)
			editor.GET("/article/:slug/edit/", api.ShowArticleEdit)
			editor.POST("/article/:slug/edit/", api.UpdateArticle)
			editor.GET("/paper/add/", api.ShowPaperCreate)
			editor.POST("/paper/add/", api.CreatePaper)
		}

		// 后台管理路由
		admin := site.Group(routePrefix(cfg.AdminPrefix))
		admin.Use(api.AdminRequired())
		{
			admin.GET("/", api.ShowAdminDashboard)
			admin.GET("/pages/:slug/", api.ShowPageEditor)
			admin.POST("/pages/:slug/", api.UpdatePage)
		}
	}

	return r, nil
}

func routePrefix(prefix string) string {
	trimmed := strings.TrimRight(prefix, "/")
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

func templateFuncs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"formatDate": func(value interface{}) string {
			t, ok := asTime(value)
			if !ok {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatTime": func(value interface{}) string {
			t, ok := asTime(value)
			if !ok {
				return ""
			}
			return t.Format("Jan 2, 2006 15:04")
		},
		"timeAgo": func(value interface{}) string {
			t, ok := asTime(value)
			if !ok {
				return ""
			}
			return formatRelativeTime(now(), t)
		},
	}
}

func asTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	}
	return time.Time{}, false
}

// formatRelativeTime 把时间转换为相对描述，未来时间视为刚刚
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour") + " ago"
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day") + " ago"
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month") + " ago"
	default:
		return plural(int(diff/(365*24*time.Hour)), "year") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
