package handler_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/ecopress/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminDashboard(t *testing.T) {
	site := newTestSite(t)
	require.NoError(t, site.db.Create(&db.ContactMessage{Name: "Ray", Email: "ray@example.com", Subject: "Partnership", Message: "Hi"}).Error)
	admin, _ := site.login("root", db.RoleAdmin)

	site.get(site.newClient(), "/")
	resp := site.get(admin, "/admin/")

	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "Users: 1")
	assert.Contains(t, resp.body, "Visits today: 1")
	assert.Contains(t, resp.body, "Partnership")
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	site := newTestSite(t)
	editor, _ := site.login("sam", db.RoleEditor)

	resp := site.get(editor, "/admin/")
	assert.Equal(t, http.StatusForbidden, resp.status)

	resp = site.postForm(editor, "/admin/pages/about/", url.Values{"content": {"hijack"}})
	assert.Equal(t, http.StatusForbidden, resp.status)

	var count int64
	require.NoError(t, site.db.Model(&db.Page{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminEditsTeamPage(t *testing.T) {
	site := newTestSite(t)
	admin, _ := site.login("tina", db.RoleAdmin)

	editor := site.get(admin, "/admin/pages/team/")
	require.Equal(t, http.StatusOK, editor.status)
	assert.Contains(t, editor.body, "Our team")

	resp := site.postForm(admin, "/admin/pages/team/", url.Values{"title": {"Our people"}, "content": {"We **plant** trees."}})
	require.Equal(t, http.StatusFound, resp.status, resp.body)
	assert.Equal(t, "/team/", resp.header.Get("Location"))

	page := site.get(site.newClient(), "/team/")
	assert.Contains(t, page.body, "Our people")
	assert.Contains(t, page.body, "<strong>plant</strong>")
}

func TestAdminPageEditorRejectsUnknownPages(t *testing.T) {
	site := newTestSite(t)
	admin, _ := site.login("uma", db.RoleAdmin)

	assert.Equal(t, http.StatusNotFound, site.get(admin, "/admin/pages/contact/").status)

	resp := site.postForm(admin, "/admin/pages/about/", url.Values{"title": {"About"}, "content": {"   "}})
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.body, "Content is required.")
}
