package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	gsessions "github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// failingStore 模拟无法写出的会话存储；会话由它自己创建，Save 才会回到这里
type failingStore struct{}

func (f failingStore) Get(r *http.Request, name string) (*gsessions.Session, error) {
	return gsessions.GetRegistry(r).Get(f, name)
}

func (f failingStore) New(_ *http.Request, name string) (*gsessions.Session, error) {
	session := gsessions.NewSession(f, name)
	session.IsNew = true
	return session, nil
}

func (failingStore) Save(*http.Request, http.ResponseWriter, *gsessions.Session) error {
	return errors.New("session store unavailable")
}

func (failingStore) Options(sessions.Options) {}

var _ sessions.Store = failingStore{}

func newInternalAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:internal_"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewAPI(Dependencies{DB: gdb, Metrics: metrics.NewIsolated()})
}

func TestTrackVisitWithoutSessionReturnsBadRequest(t *testing.T) {
	api := newInternalAPI(t)

	r := gin.New()
	r.Use(sessions.Sessions("test", failingStore{}))
	r.GET("/track-visit/", api.TrackVisit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/track-visit/", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"no session"}`, w.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.TrackingErrors.WithLabelValues(metrics.StageSession)))
}

func TestTrackVisitsSwallowsSessionFailures(t *testing.T) {
	api := newInternalAPI(t)

	r := gin.New()
	r.Use(sessions.Sessions("test", failingStore{}))
	r.Use(api.TrackVisits())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code, "analytics failures never break the page")
	assert.Equal(t, "ok", w.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.TrackingErrors.WithLabelValues(metrics.StageSession)))
	assert.Equal(t, 0.0, testutil.ToFloat64(api.metrics.VisitsCounted.WithLabelValues("middleware")))
}

func TestTrackVisitsSwallowsStorageFailures(t *testing.T) {
	api := newInternalAPI(t)
	sqlDB, err := api.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.Use(api.TrackVisits())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(api.metrics.TrackingErrors.WithLabelValues(metrics.StageStorage)))
}

func TestVisitSkipReason(t *testing.T) {
	api := newInternalAPI(t)

	tests := []struct {
		method string
		target string
		want   string
	}{
		{http.MethodGet, "/", ""},
		{http.MethodHead, "/article/kelp/", ""},
		{http.MethodPost, "/contact/", metrics.ReasonMethod},
		{http.MethodPut, "/", metrics.ReasonMethod},
		{http.MethodGet, "/static/site.css", metrics.ReasonPath},
		{http.MethodGet, "/Static/site.css", metrics.ReasonPath},
		{http.MethodGet, "/media/uploads/a.png", metrics.ReasonPath},
		{http.MethodGet, "/ADMIN/pages/about/", metrics.ReasonPath},
		{http.MethodGet, "/track-visit/", metrics.ReasonPath},
		{http.MethodGet, "/administrators-guide/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			assert.Equal(t, tt.want, api.visitSkipReason(req))
		})
	}
}

func TestSafeRedirectTarget(t *testing.T) {
	assert.Equal(t, "/dashboard/", safeRedirectTarget("/dashboard/", "/"))
	assert.Equal(t, "/", safeRedirectTarget("", "/"))
	assert.Equal(t, "/", safeRedirectTarget("https://evil.example/", "/"))
	assert.Equal(t, "/", safeRedirectTarget("//evil.example/", "/"))
	assert.Equal(t, "/", safeRedirectTarget(`/\evil.example`, "/"))
}

func TestPagerKeepsFilters(t *testing.T) {
	query := url.Values{"q": {"solar wind"}, "tag": {"energy"}, "page": {"2"}}
	pager := newPager(service.Paginate(2, 30, 10), query)

	assert.Equal(t, "?page=1&q=solar+wind&tag=energy", pager.PrevURL())
	assert.Equal(t, "?page=3&q=solar+wind&tag=energy", pager.NextURL())
	assert.Equal(t, []string{"2"}, query["page"], "source query is not modified")
}

func TestRecordRecentUsesSession(t *testing.T) {
	api := newInternalAPI(t)

	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	var ids []uint
	r.GET("/", func(c *gin.Context) {
		api.recordRecent(c, 4)
		api.recordRecent(c, 9)
		api.recordRecent(c, 4)
		ids = api.recentIDs(c)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []uint{4, 9}, ids)
	assert.Equal(t, 3.0, testutil.ToFloat64(api.metrics.RecentViews))
}
