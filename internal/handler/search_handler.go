package handler

import (
	"net/http"
	"strings"

	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	searchTypeArticles = "articles"
	searchTypePapers   = "papers"
)

// Search 处理 /search/?q=&author=&tag=&category=&page=&type=
func (a *API) Search(c *gin.Context) {
	params := service.SearchParams{
		Query:    strings.TrimSpace(c.Query("q")),
		Author:   strings.TrimSpace(c.Query("author")),
		Tag:      strings.TrimSpace(c.Query("tag")),
		Category: strings.TrimSpace(c.Query("category")),
		Page:     service.ParsePage(c.Query("page")),
	}

	contentType := searchTypeArticles
	schema := db.ArticleSchema
	if strings.EqualFold(c.Query("type"), searchTypePapers) {
		contentType = searchTypePapers
		schema = db.PaperSchema
	}
	a.metrics.SearchQueries.WithLabelValues(contentType).Inc()

	data := gin.H{
		"title":            "Search",
		"query":            params.Query,
		"selectedAuthor":   params.Author,
		"selectedTag":      params.Tag,
		"selectedCategory": params.Category,
		"contentType":      contentType,
	}

	var (
		pagination service.Pagination
		err        error
	)
	if contentType == searchTypePapers {
		var result *service.SearchResult[db.ResearchPaper]
		if result, err = a.search.SearchPapers(params); err == nil {
			data["papers"] = result.Items
			pagination = result.Pagination
		}
	} else {
		var result *service.SearchResult[db.Article]
		if result, err = a.search.SearchArticles(params); err == nil {
			data["articles"] = result.Items
			pagination = result.Pagination
		}
	}

	if err != nil {
		a.log.Error("search", zap.String("type", contentType), zap.String("query", params.Query), zap.Error(err))
		a.renderError(c, http.StatusInternalServerError, "Search failed", "The search could not be completed. Please try again.")
		return
	}

	options := a.context.FilterOptions(schema)
	data["filterAuthors"] = options.Authors
	data["filterTags"] = options.Tags
	data["filterCategories"] = options.Categories
	data["total"] = pagination.Total
	data["pager"] = newPager(pagination, c.Request.URL.Query())

	a.renderHTML(c, http.StatusOK, "search_results.html", data)
}
