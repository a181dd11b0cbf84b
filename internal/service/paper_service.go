package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecopress/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPaperNotFound = errors.New("paper not found")
	ErrPaperInvalid  = errors.New("paper title and content are required")
)

// PaperService 维护研究论文
type PaperService struct {
	db *gorm.DB
}

// PaperInput represents fields accepted when creating a paper.
type PaperInput struct {
	Title     string
	Slug      string
	Abstract  string
	Content   string
	Authors   string
	PDFURL    string
	Published bool
}

// NewPaperService creates a PaperService instance.
func NewPaperService(gdb *gorm.DB) *PaperService {
	return &PaperService{db: gdb}
}

// GetBySlug 获取论文，includeDrafts 为 false 时只返回已发布论文
func (s *PaperService) GetBySlug(slug string, includeDrafts bool) (*db.ResearchPaper, error) {
	query := s.db.Preload("UploadedBy").Where("slug = ?", strings.TrimSpace(slug))
	if !includeDrafts {
		query = query.Where("published = ?", true)
	}

	var paper db.ResearchPaper
	if err := query.First(&paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	return &paper, nil
}

// ListPublished returns the newest published papers, at most limit.
func (s *PaperService) ListPublished(limit int) ([]db.ResearchPaper, error) {
	if limit <= 0 {
		limit = 5
	}

	var papers []db.ResearchPaper
	if err := s.db.Preload("UploadedBy").
		Where("published = ?", true).
		Order("created_at desc, id desc").
		Limit(limit).
		Find(&papers).Error; err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	return papers, nil
}

// Create persists a paper uploaded by uploaderID.
func (s *PaperService) Create(uploaderID uint, input PaperInput) (*db.ResearchPaper, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		return nil, ErrPaperInvalid
	}

	slug, err := uniqueSlug(s.db, &db.ResearchPaper{}, input.Slug, input.Title, "paper", 0)
	if err != nil {
		return nil, err
	}

	paper := db.ResearchPaper{
		Title:     strings.TrimSpace(input.Title),
		Slug:      slug,
		Abstract:  strings.TrimSpace(input.Abstract),
		Content:   input.Content,
		Authors:   strings.TrimSpace(input.Authors),
		PDFURL:    strings.TrimSpace(input.PDFURL),
		Published: input.Published,
	}
	if uploaderID != 0 {
		paper.UploadedByID = &uploaderID
	}

	if err := s.db.Create(&paper).Error; err != nil {
		return nil, fmt.Errorf("create paper: %w", err)
	}
	return &paper, nil
}
