package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ecopress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound       = errors.New("page not found")
	ErrPageContentMissing = errors.New("page content is required")
)

// 页面缺失时展示的默认标题
var defaultPageTitles = map[string]string{
	db.PageSlugAbout: "About us",
	db.PageSlugTeam:  "Our team",
}

// PageService provides access to static pages such as About and Team.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// GetBySlug fetches a page for a given slug.
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetOrDefault 页面不存在时返回只带默认标题的占位页面
func (s *PageService) GetOrDefault(slug string) (*db.Page, error) {
	page, err := s.GetBySlug(slug)
	if errors.Is(err, ErrPageNotFound) {
		return &db.Page{Slug: slug, Title: defaultPageTitle(slug)}, nil
	}
	return page, err
}

// SavePage creates or updates the page stored under slug.
func (s *PageService) SavePage(slug, title, content string) (*db.Page, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrPageContentMissing
	}

	title = strings.TrimSpace(title)
	summary := summarizeContent(trimmed)

	var page db.Page
	err := s.db.Where("slug = ?", slug).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if title == "" {
				title = defaultPageTitle(slug)
			}
			page = db.Page{
				Slug:    slug,
				Title:   title,
				Summary: summary,
				Content: trimmed,
			}
			if err := s.db.Create(&page).Error; err != nil {
				return nil, err
			}
			return &page, nil
		}
		return nil, err
	}

	page.Content = trimmed
	page.Summary = summary
	if title != "" {
		page.Title = title
	}
	if strings.TrimSpace(page.Title) == "" {
		page.Title = defaultPageTitle(slug)
	}

	if err := s.db.Save(&page).Error; err != nil {
		return nil, err
	}

	return &page, nil
}

func defaultPageTitle(slug string) string {
	if title, ok := defaultPageTitles[slug]; ok {
		return title
	}
	if slug == "" {
		return "Page"
	}
	return strings.ToUpper(slug[:1]) + slug[1:]
}

func summarizeContent(markdown string) string {
	plain := markdown
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
		"(", " ",
		")", " ",
	)
	plain = replacer.Replace(plain)
	plain = strings.Join(strings.Fields(plain), " ")
	if plain == "" {
		return ""
	}

	const limit = 120
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return string(runes[:limit]) + "…"
}
