package handler

import (
	"errors"
	"net/http"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var editablePages = map[string]bool{
	db.PageSlugAbout: true,
	db.PageSlugTeam:  true,
}

// ShowPageEditor renders the admin editor for the about or team page.
func (a *API) ShowPageEditor(c *gin.Context) {
	slug := c.Param("slug")
	if !editablePages[slug] {
		a.renderError(c, http.StatusNotFound, "Not found", "Only the about and team pages can be edited.")
		return
	}

	page, err := a.pages.GetOrDefault(slug)
	if err != nil {
		a.log.Error("load page", zap.String("slug", slug), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "The page could not be loaded.")
		return
	}

	a.renderPageEditor(c, http.StatusOK, page, "")
}

// UpdatePage 保存页面的标题与 Markdown 内容
func (a *API) UpdatePage(c *gin.Context) {
	slug := c.Param("slug")
	if !editablePages[slug] {
		a.renderError(c, http.StatusNotFound, "Not found", "Only the about and team pages can be edited.")
		return
	}

	var form pageForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderPageEditor(c, http.StatusBadRequest, &db.Page{Slug: slug, Title: form.Title, Content: form.Content}, describeBindError(err))
		return
	}

	if _, err := a.pages.SavePage(slug, form.Title, form.Content); err != nil {
		if errors.Is(err, service.ErrPageContentMissing) {
			a.renderPageEditor(c, http.StatusBadRequest, &db.Page{Slug: slug, Title: form.Title}, "Content is required.")
			return
		}
		a.log.Error("save page", zap.String("slug", slug), zap.Error(err))
		a.renderPageEditor(c, http.StatusInternalServerError, &db.Page{Slug: slug, Title: form.Title, Content: form.Content}, "The page could not be saved.")
		return
	}

	addFlash(c, "Page updated.")
	c.Redirect(http.StatusFound, "/"+slug+"/")
}

func (a *API) renderPageEditor(c *gin.Context, status int, page *db.Page, message string) {
	var updatedAt string
	if !page.UpdatedAt.IsZero() {
		updatedAt = page.UpdatedAt.Format("2006-01-02 15:04")
	}

	data := gin.H{
		"title":     "Edit " + page.Title,
		"page":      page,
		"updatedAt": updatedAt,
		"action":    a.cfg.AdminPrefix + "pages/" + page.Slug + "/",
	}
	if message != "" {
		data["error"] = message
	}
	a.renderHTML(c, status, "page_edit.html", data)
}
