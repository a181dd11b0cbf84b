package db

import "gorm.io/gorm"

// 内置静态页面的 slug
const (
	PageSlugAbout = "about"
	PageSlugTeam  = "team"
)

// Page represents a standalone content page such as About or Team.
type Page struct {
	gorm.Model
	Slug    string `gorm:"uniqueIndex;not null"`
	Title   string `gorm:"not null"`
	Summary string
	Content string `gorm:"type:text"`
}
