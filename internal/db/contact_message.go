package db

import "gorm.io/gorm"

// ContactMessage 保存前台联系表单的提交记录
// Delivered 标记邮件是否已成功投递
type ContactMessage struct {
	gorm.Model
	Name      string `gorm:"size:120;not null"`
	Email     string `gorm:"size:254;not null"`
	Subject   string `gorm:"size:200;not null"`
	Message   string `gorm:"type:text;not null"`
	Delivered bool
}

// TableName 返回自定义表名，避免冲突
func (ContactMessage) TableName() string {
	return "contact_messages"
}
