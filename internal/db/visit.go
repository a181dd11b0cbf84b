package db

import "time"

// Visit 记录某个用户或匿名会话在某一天的访问次数。
// UserID 与 SessionKey 只会设置其一；两组唯一索引保证每个身份每天至多一行。
type Visit struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     *uint     `gorm:"uniqueIndex:idx_visit_user_date"`
	User       *User     `gorm:"constraint:OnDelete:SET NULL"`
	SessionKey *string   `gorm:"size:40;index;uniqueIndex:idx_visit_session_date"`
	Date       time.Time `gorm:"index;uniqueIndex:idx_visit_user_date;uniqueIndex:idx_visit_session_date"`
	Count      uint64    `gorm:"column:count;not null;default:0"`
	LastSeen   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName 指定自定义表名。
func (Visit) TableName() string {
	return "visits"
}

// VisitDay truncates t to the UTC calendar day used as the visit key.
func VisitDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
