package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/ecopress/internal/db"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSearchArticles(t *testing.T, site *testSite) {
	t.Helper()

	alice := site.createUser("alice", "secret123", db.RoleEditor)
	bob := site.createUser("bob", "secret123", db.RoleEditor)
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	site.createArticle(db.Article{Title: "Solar Farms", Tags: "energy, solar", Category: "Energy", AuthorID: &alice.ID, Published: true, PublishDate: base})
	site.createArticle(db.Article{Title: "Wind Parks", Tags: "energy, wind", Category: "Energy", AuthorID: &alice.ID, Published: true, PublishDate: base.AddDate(0, 0, 1)})
	site.createArticle(db.Article{Title: "Coral Reefs", Tags: "ocean", Category: "Ocean", AuthorID: &bob.ID, Published: true, PublishDate: base.AddDate(0, 0, 2)})
	site.createArticle(db.Article{Title: "Solar Draft", Published: false})
}

func TestSearchArticles(t *testing.T) {
	site := newTestSite(t)
	seedSearchArticles(t, site)
	client := site.newClient()

	tests := []struct {
		name    string
		query   string
		want    []string
		notWant []string
	}{
		{name: "single term", query: "q=solar", want: []string{"Solar Farms"}, notWant: []string{"Solar Draft", "Wind Parks"}},
		{name: "or", query: "q=solar+OR+wind", want: []string{"Solar Farms", "Wind Parks"}, notWant: []string{"Coral Reefs"}},
		{name: "phrase", query: "q=%22coral+reefs%22", want: []string{"Coral Reefs"}, notWant: []string{"Solar Farms"}},
		{name: "author by username", query: "author=BOB", want: []string{"Coral Reefs"}, notWant: []string{"Wind Parks"}},
		{name: "tag", query: "tag=wind", want: []string{"Wind Parks"}, notWant: []string{"Solar Farms"}},
		{name: "category", query: "category=ocean", want: []string{"Coral Reefs"}, notWant: []string{"Wind Parks"}},
		{name: "no match", query: "q=volcano", want: []string{"No articles matched."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := site.get(client, "/search/?"+tt.query)
			require.Equal(t, http.StatusOK, resp.status)
			for _, title := range tt.want {
				assert.Contains(t, resp.body, title)
			}
			for _, title := range tt.notWant {
				assert.NotContains(t, resp.body, title)
			}
		})
	}

	assert.Equal(t, float64(len(tests)), testutil.ToFloat64(site.metrics.SearchQueries.WithLabelValues("articles")))
}

func TestSearchPaginationKeepsFilters(t *testing.T) {
	site := newTestSite(t, withSearchPageSize(1))
	seedSearchArticles(t, site)
	client := site.newClient()

	resp := site.get(client, "/search/?tag=energy")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Wind Parks", "newest first")
	assert.NotContains(t, resp.body, "Solar Farms")
	assert.Contains(t, resp.body, "Page 1 of 2")
	assert.Contains(t, resp.body, "page=2&amp;tag=energy")

	resp = site.get(client, "/search/?tag=energy&page=2")
	assert.Contains(t, resp.body, "Solar Farms")
	assert.Contains(t, resp.body, "page=1&amp;tag=energy")
}

func TestSearchPapers(t *testing.T) {
	site := newTestSite(t)
	papers := []db.ResearchPaper{
		{Title: "Soil Carbon", Slug: "soil-carbon", Abstract: "carbon in soil", Content: "x", Published: true},
		{Title: "Ocean Acidity", Slug: "ocean-acidity", Abstract: "pH levels", Content: "x", Published: true},
		{Title: "Carbon Draft", Slug: "carbon-draft", Content: "x", Published: false},
	}
	require.NoError(t, site.db.Create(&papers).Error)

	resp := site.get(site.newClient(), "/search/?type=papers&q=carbon&tag=ignored")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Soil Carbon")
	assert.NotContains(t, resp.body, "Ocean Acidity")
	assert.NotContains(t, resp.body, "Carbon Draft")
	assert.Equal(t, 1.0, testutil.ToFloat64(site.metrics.SearchQueries.WithLabelValues("papers")))
}

func TestSearchFilterOptionsComeFromPublishedArticles(t *testing.T) {
	site := newTestSite(t)
	seedSearchArticles(t, site)
	site.createArticle(db.Article{Title: "Secret", Tags: "unreleased", Category: "Hidden", Published: false})

	resp := site.get(site.newClient(), "/search/")
	assert.Contains(t, resp.body, `<option value="solar">solar</option>`)
	assert.Contains(t, resp.body, `<option value="Ocean">Ocean</option>`)
	assert.Contains(t, resp.body, ">alice</option>")
	assert.NotContains(t, resp.body, "unreleased")
	assert.NotContains(t, resp.body, "Hidden")
}
