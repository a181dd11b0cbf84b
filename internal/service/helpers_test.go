package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ecopress/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupServiceTestDB 为每个测试创建独立的内存数据库，避免共享缓存互相污染
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	return openServiceTestDB(t, dsn)
}

// setupFileTestDB 使用临时文件，供需要多个连接的并发测试使用
func setupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "visits.db")
	return openServiceTestDB(t, path+"?_busy_timeout=5000")
}

func openServiceTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username, role string) db.User {
	t.Helper()

	user := db.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func createTestArticle(t *testing.T, gdb *gorm.DB, article db.Article) db.Article {
	t.Helper()

	if article.Slug == "" {
		article.Slug = Slugify(article.Title)
	}
	if article.Content == "" {
		article.Content = article.Title
	}
	if err := gdb.Create(&article).Error; err != nil {
		t.Fatalf("failed to create article %s: %v", article.Title, err)
	}
	return article
}
