package handler

import (
	"errors"
	"net/http"

	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowPaper 渲染论文详情；草稿只对编辑可见
func (a *API) ShowPaper(c *gin.Context) {
	paper, err := a.papers.GetBySlug(c.Param("slug"), currentUser(c).IsEditor())
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			a.renderError(c, http.StatusNotFound, "Not found", "That paper does not exist.")
			return
		}
		a.log.Error("load paper", zap.String("slug", c.Param("slug")), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Something went wrong", "The paper could not be loaded.")
		return
	}

	content, err := renderMarkdown(paper.Content)
	if err != nil {
		a.log.Error("render paper", zap.Uint("paper_id", paper.ID), zap.Error(err))
	}

	a.renderHTML(c, http.StatusOK, "paper_detail.html", gin.H{
		"title":   paper.Title,
		"paper":   paper,
		"content": content,
	})
}

// ShowPaperCreate renders the empty paper form.
func (a *API) ShowPaperCreate(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "paper_form.html", gin.H{
		"title": "New paper",
		"form":  paperForm{},
	})
}

// CreatePaper 保存新论文，上传者为当前用户
func (a *API) CreatePaper(c *gin.Context) {
	var form paperForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderHTML(c, http.StatusBadRequest, "paper_form.html", gin.H{
			"title": "New paper",
			"form":  form,
			"error": describeBindError(err),
		})
		return
	}

	paper, err := a.papers.Create(currentUser(c).ID, service.PaperInput{
		Title:     form.Title,
		Slug:      form.Slug,
		Abstract:  form.Abstract,
		Content:   form.Content,
		Authors:   form.Authors,
		PDFURL:    form.PDFURL,
		Published: form.Published,
	})
	if err != nil {
		status := http.StatusBadRequest
		message := "The paper could not be saved."
		switch {
		case errors.Is(err, service.ErrSlugTaken):
			message = "That slug is already used by another paper."
		case errors.Is(err, service.ErrPaperInvalid):
			message = "Title and content are required."
		default:
			status = http.StatusInternalServerError
			a.log.Error("create paper", zap.Error(err))
		}
		a.renderHTML(c, status, "paper_form.html", gin.H{"title": "New paper", "form": form, "error": message})
		return
	}

	addFlash(c, "Paper saved.")
	c.Redirect(http.StatusFound, "/paper/"+paper.Slug+"/")
}
