package db

import "gorm.io/gorm"

// ResearchPaper 定义了论文模型，Authors 为自由文本的作者列表
type ResearchPaper struct {
	gorm.Model
	Title        string `gorm:"size:300;not null"`
	Slug         string `gorm:"size:320;uniqueIndex;not null"`
	Abstract     string `gorm:"type:text"`
	Content      string `gorm:"type:text;not null"`
	Authors      string `gorm:"size:500"`
	UploadedByID *uint  `gorm:"index"`
	UploadedBy   *User  `gorm:"constraint:OnDelete:SET NULL"`
	PDFURL       string
	Published    bool `gorm:"index;default:false"`
}

// TableName 指定自定义表名。
func (ResearchPaper) TableName() string {
	return "research_papers"
}
