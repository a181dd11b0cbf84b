package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ecopress/internal/config"
	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/router"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

// testClock 让测试控制节流窗口与日期
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type testSite struct {
	t       *testing.T
	db      *gorm.DB
	server  *httptest.Server
	clock   *testClock
	metrics *metrics.Metrics
	cfg     config.AppConfig
}

type siteOption func(*config.AppConfig)

func withThrottle(seconds int) siteOption {
	return func(cfg *config.AppConfig) {
		cfg.Tracking.ThrottleSeconds = seconds
	}
}

func withSearchPageSize(size int) siteOption {
	return func(cfg *config.AppConfig) {
		cfg.Tracking.SearchPageSize = size
	}
}

func newTestSite(t *testing.T, opts ...siteOption) *testSite {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := config.AppConfig{
		SessionSecret: "test-secret",
		UploadDir:     t.TempDir(),
		Tracking:      config.DefaultTracking(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	clock := &testClock{now: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)}
	m := metrics.NewIsolated()

	r, err := router.SetupRouter(router.Options{
		Config:  cfg,
		DB:      gdb,
		Metrics: m,
		Now:     clock.Now,
	})
	if err != nil {
		t.Fatalf("failed to set up router: %v", err)
	}

	server := httptest.NewServer(r)
	t.Cleanup(func() {
		server.Close()
		sqlDB.Close()
	})

	config.ApplyDefaults(&cfg)
	return &testSite{t: t, db: gdb, server: server, clock: clock, metrics: m, cfg: cfg}
}

// newClient 返回带 cookie jar、不跟随重定向的客户端，每个客户端相当于一个浏览器
func (s *testSite) newClient() *http.Client {
	jar, err := cookiejar.New(nil)
	if err != nil {
		s.t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type testResponse struct {
	status int
	header http.Header
	body   string
}

func (s *testSite) do(client *http.Client, req *http.Request) testResponse {
	s.t.Helper()

	resp, err := client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("failed to read body: %v", err)
	}
	return testResponse{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func (s *testSite) get(client *http.Client, path string) testResponse {
	s.t.Helper()

	req, err := http.NewRequest(http.MethodGet, s.server.URL+path, nil)
	if err != nil {
		s.t.Fatalf("failed to build request: %v", err)
	}
	return s.do(client, req)
}

func (s *testSite) postForm(client *http.Client, path string, form url.Values) testResponse {
	s.t.Helper()

	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		s.t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(client, req)
}

func (s *testSite) createUser(username, password, role string) db.User {
	s.t.Helper()

	if _, err := db.EnsureUser(s.db, username, password, username+"@example.com", role); err != nil {
		s.t.Fatalf("failed to create user %s: %v", username, err)
	}
	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		s.t.Fatalf("failed to load user %s: %v", username, err)
	}
	return user
}

// login 创建用户并返回已登录的客户端
func (s *testSite) login(username, role string) (*http.Client, db.User) {
	s.t.Helper()

	user := s.createUser(username, "secret123", role)
	client := s.newClient()
	resp := s.postForm(client, "/login/", url.Values{"username": {username}, "password": {"secret123"}})
	if resp.status != http.StatusFound {
		s.t.Fatalf("login as %s: expected 302, got %d: %s", username, resp.status, resp.body)
	}
	return client, user
}

func (s *testSite) createArticle(article db.Article) db.Article {
	s.t.Helper()

	if article.Slug == "" {
		article.Slug = strings.ToLower(strings.ReplaceAll(article.Title, " ", "-"))
	}
	if article.Content == "" {
		article.Content = article.Title + " body"
	}
	if article.Published && article.PublishDate.IsZero() {
		article.PublishDate = s.clock.Now().Add(-time.Hour)
	}
	if err := s.db.Create(&article).Error; err != nil {
		s.t.Fatalf("failed to create article %s: %v", article.Title, err)
	}
	return article
}

// visitTotal 返回所有访问行的次数之和
func (s *testSite) visitTotal() uint64 {
	s.t.Helper()

	var total uint64
	if err := s.db.Model(&db.Visit{}).Select("COALESCE(SUM(count), 0)").Scan(&total).Error; err != nil {
		s.t.Fatalf("failed to sum visits: %v", err)
	}
	return total
}
