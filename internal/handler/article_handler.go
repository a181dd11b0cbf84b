package handler

import (
	"errors"
	"net/http"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowArticle 渲染文章详情；草稿只对编辑可见。成功展示后记录到会话的最近浏览列表。
func (a *API) ShowArticle(c *gin.Context) {
	user := currentUser(c)
	article, err := a.articles.GetBySlug(c.Param("slug"), user.IsEditor())
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Not found", "That article does not exist.")
			return
		}
		a.log.Error("load article", zap.String("slug", c.Param("slug")), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "The article could not be loaded.")
		return
	}

	content, err := renderMarkdown(article.Content)
	if err != nil {
		a.log.Error("render article", zap.Uint("article_id", article.ID), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "The article could not be rendered.")
		return
	}

	a.recordRecent(c, article.ID)

	a.renderHTML(c, http.StatusOK, "article_detail.html", gin.H{
		"title":   article.Title,
		"article": article,
		"content": content,
		"canEdit": user.IsEditor(),
	})
}

// ShowArticleCreate renders the empty article form.
func (a *API) ShowArticleCreate(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "article_form.html", gin.H{
		"title":  "New article",
		"action": "/article/add/",
		"form":   articleForm{},
	})
}

// CreateArticle 保存新文章，作者为当前用户
func (a *API) CreateArticle(c *gin.Context) {
	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderArticleForm(c, http.StatusBadRequest, "New article", "/article/add/", form, describeBindError(err))
		return
	}

	article, err := a.articles.Create(currentUser(c).ID, form.input())
	if err != nil {
		status, message := articleErrorMessage(err)
		if status == http.StatusInternalServerError {
			a.log.Error("create article", zap.Error(err))
		}
		a.renderArticleForm(c, status, "New article", "/article/add/", form, message)
		return
	}

	addFlash(c, "Article saved.")
	c.Redirect(http.StatusFound, "/article/"+article.Slug+"/")
}

// ShowArticleEdit renders the form prefilled with an existing article.
func (a *API) ShowArticleEdit(c *gin.Context) {
	article, err := a.articles.GetBySlug(c.Param("slug"), true)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Not found", "That article does not exist.")
			return
		}
		a.log.Error("load article for edit", zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "The article could not be loaded.")
		return
	}

	a.renderArticleForm(c, http.StatusOK, "Edit article", editAction(article), formFromArticle(article), "")
}

// UpdateArticle 保存文章修改
func (a *API) UpdateArticle(c *gin.Context) {
	slug := c.Param("slug")
	action := "/article/" + slug + "/edit/"

	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderArticleForm(c, http.StatusBadRequest, "Edit article", action, form, describeBindError(err))
		return
	}

	article, err := a.articles.Update(slug, form.input())
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			a.renderError(c, http.StatusNotFound, "Not found", "That article does not exist.")
			return
		}
		status, message := articleErrorMessage(err)
		if status == http.StatusInternalServerError {
			a.log.Error("update article", zap.String("slug", slug), zap.Error(err))
		}
		a.renderArticleForm(c, status, "Edit article", action, form, message)
		return
	}

	addFlash(c, "Article updated.")
	c.Redirect(http.StatusFound, "/article/"+article.Slug+"/")
}

func (a *API) renderArticleForm(c *gin.Context, status int, title, action string, form articleForm, message string) {
	a.renderHTML(c, status, "article_form.html", gin.H{
		"title":  title,
		"action": action,
		"form":   form,
		"error":  message,
	})
}

func articleErrorMessage(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrSlugTaken):
		return http.StatusBadRequest, "That slug is already used by another article."
	case errors.Is(err, service.ErrArticleInvalid):
		return http.StatusBadRequest, "Title and content are required."
	case errors.Is(err, service.ErrCoverInvalid):
		return http.StatusBadRequest, "The cover image needs a width and height."
	default:
		return http.StatusInternalServerError, "The article could not be saved."
	}
}

func editAction(article *db.Article) string {
	return "/article/" + article.Slug + "/edit/"
}

func formFromArticle(article *db.Article) articleForm {
	return articleForm{
		Title:       article.Title,
		Slug:        article.Slug,
		Summary:     article.Summary,
		Content:     article.Content,
		Category:    article.Category,
		Tags:        article.Tags,
		CoverURL:    article.CoverURL,
		CoverWidth:  article.CoverWidth,
		CoverHeight: article.CoverHeight,
		Published:   article.Published,
	}
}
