package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// describeBindError 把 validator 的字段错误转换为可直接展示的提示
func describeBindError(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return "The form could not be read."
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, "enter a valid email address")
		case "eqfield":
			messages = append(messages, "the two passwords do not match")
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "slug":
			messages = append(messages, "slug must contain letters or digits")
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}
	return strings.Join(messages, "; ")
}

// pagerView 为模板提供带筛选参数的上一页/下一页链接
type pagerView struct {
	service.Pagination
	base url.Values
}

func newPager(p service.Pagination, query url.Values) pagerView {
	base := url.Values{}
	for key, values := range query {
		if key == "page" {
			continue
		}
		base[key] = append([]string(nil), values...)
	}
	return pagerView{Pagination: p, base: base}
}

func (p pagerView) urlFor(page int) string {
	values := url.Values{}
	for key, v := range p.base {
		values[key] = v
	}
	values.Set("page", fmt.Sprint(page))
	return "?" + values.Encode()
}

func (p pagerView) PrevURL() string { return p.urlFor(p.PrevPage()) }

func (p pagerView) NextURL() string { return p.urlFor(p.NextPage()) }

// safeRedirectTarget 只接受站内相对路径，防止开放重定向
func safeRedirectTarget(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}
