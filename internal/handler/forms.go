package handler

import (
	"sync"

	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type signupForm struct {
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"required,email,max=254"`
	Role      string `form:"role" binding:"omitempty,oneof=user editor"`
	Password1 string `form:"password1" binding:"required,min=6"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type articleForm struct {
	Title       string `form:"title" binding:"required,max=300"`
	Slug        string `form:"slug" binding:"omitempty,max=320,slug"`
	Summary     string `form:"summary"`
	Content     string `form:"content" binding:"required"`
	Category    string `form:"category" binding:"max=100"`
	Tags        string `form:"tags" binding:"max=300"`
	CoverURL    string `form:"cover_url"`
	CoverWidth  int    `form:"cover_width" binding:"gte=0"`
	CoverHeight int    `form:"cover_height" binding:"gte=0"`
	Published   bool   `form:"published"`
}

func (f articleForm) input() service.ArticleInput {
	return service.ArticleInput{
		Title:       f.Title,
		Slug:        f.Slug,
		Summary:     f.Summary,
		Content:     f.Content,
		Category:    f.Category,
		Tags:        f.Tags,
		Published:   f.Published,
		CoverURL:    f.CoverURL,
		CoverWidth:  f.CoverWidth,
		CoverHeight: f.CoverHeight,
	}
}

type paperForm struct {
	Title     string `form:"title" binding:"required,max=300"`
	Slug      string `form:"slug" binding:"omitempty,max=320,slug"`
	Abstract  string `form:"abstract"`
	Content   string `form:"content" binding:"required"`
	Authors   string `form:"authors" binding:"max=500"`
	PDFURL    string `form:"pdf_url"`
	Published bool   `form:"published"`
}

type contactForm struct {
	Name    string `form:"name" binding:"required,max=120"`
	Email   string `form:"email" binding:"required,email"`
	Subject string `form:"subject" binding:"required,max=200"`
	Message string `form:"message" binding:"required"`
}

type pageForm struct {
	Title   string `form:"title" binding:"max=200"`
	Content string `form:"content" binding:"required"`
}

var registerValidatorsOnce sync.Once

// RegisterValidators 向 gin 的 validator 注册自定义规则
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("slug", validateSlug)
		}
	})
}

func validateSlug(fl validator.FieldLevel) bool {
	return service.Slugify(fl.Field().String()) != ""
}
