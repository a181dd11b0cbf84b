package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// ShowIndex 渲染首页：已发布文章分页列表、今日访问数与最新论文
func (a *API) ShowIndex(c *gin.Context) {
	page := service.ParsePage(c.Query("page"))

	result, err := a.articles.ListPublished(page, a.cfg.Tracking.IndexPageSize)
	if err != nil {
		a.log.Error("list published articles", zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "Articles could not be loaded.")
		return
	}

	papers, err := a.papers.ListPublished(5)
	if err != nil {
		a.log.Warn("list published papers", zap.Error(err))
		papers = nil
	}

	var identity service.VisitIdentity
	if user := currentUser(c); user != nil {
		identity = service.UserIdentity(user.ID)
	}
	counts := a.context.TodayCounts(identity, a.now())

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title":            "Latest articles",
		"articles":         result.Articles,
		"papers":           papers,
		"pager":            newPager(result.Pagination, c.Request.URL.Query()),
		"totalVisitsToday": counts.TotalToday,
		"userVisitsToday":  counts.UserToday,
	})
}

// ShowAbout renders the about page.
func (a *API) ShowAbout(c *gin.Context) {
	a.showPage(c, db.PageSlugAbout)
}

// ShowTeam renders the team page.
func (a *API) ShowTeam(c *gin.Context) {
	a.showPage(c, db.PageSlugTeam)
}

func (a *API) showPage(c *gin.Context, slug string) {
	page, err := a.pages.GetOrDefault(slug)
	if err != nil {
		a.log.Error("load page", zap.String("slug", slug), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "This page could not be loaded.")
		return
	}

	var content template.HTML
	if page.Content != "" {
		content, err = renderMarkdown(page.Content)
		if err != nil {
			a.log.Error("render page", zap.String("slug", slug), zap.Error(err))
		}
	}

	a.renderHTML(c, http.StatusOK, "page.html", gin.H{
		"title":   page.Title,
		"page":    page,
		"content": content,
	})
}

func renderMarkdown(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
