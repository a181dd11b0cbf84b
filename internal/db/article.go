package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Article 定义了文章模型，标签以逗号分隔的字符串保存
type Article struct {
	gorm.Model
	Title         string    `gorm:"size:300;not null"`
	Slug          string    `gorm:"size:320;uniqueIndex;not null"`
	Summary       string    `gorm:"type:text"`
	Content       string    `gorm:"type:text;not null"`
	Category      string    `gorm:"size:100;index"`
	Tags          string    `gorm:"size:300"`
	AuthorID      *uint     `gorm:"index"`
	Author        *User     `gorm:"constraint:OnDelete:SET NULL"`
	Published     bool      `gorm:"index;default:false"`
	PublishDate   time.Time `gorm:"index"`
	CoverURL      string
	CoverWidth    int
	CoverHeight   int
	AttachmentURL string
}

// TagList 拆分逗号分隔的标签
func (a Article) TagList() []string {
	return SplitTags(a.Tags)
}

// AuthorName returns the author's username or an empty string.
func (a Article) AuthorName() string {
	if a.Author == nil {
		return ""
	}
	return a.Author.Username
}

// SplitTags splits a comma separated tag string, trimming blanks.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
