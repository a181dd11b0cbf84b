package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ecopress/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 会话中与访问统计相关的键
const (
	SessionKeyLastVisit = "last_visit_time"
	SessionKeyVisitor   = "session_key"
)

// ErrNoIdentity 表示既没有登录用户也没有会话标识
var ErrNoIdentity = errors.New("visit identity is empty")

// VisitIdentity identifies a visitor: an authenticated user or an anonymous
// session key. UserID wins when both are set.
type VisitIdentity struct {
	UserID     uint
	SessionKey string
}

// UserIdentity returns the identity of an authenticated user.
func UserIdentity(userID uint) VisitIdentity {
	return VisitIdentity{UserID: userID}
}

// SessionIdentity returns the identity of an anonymous session.
func SessionIdentity(key string) VisitIdentity {
	return VisitIdentity{SessionKey: strings.TrimSpace(key)}
}

// IsUser reports whether the identity refers to an authenticated user.
func (i VisitIdentity) IsUser() bool {
	return i.UserID != 0
}

// IsZero reports whether nothing identifies the visitor.
func (i VisitIdentity) IsZero() bool {
	return i.UserID == 0 && i.SessionKey == ""
}

// VisitService 负责按身份与日期累计访问次数。
type VisitService struct {
	db *gorm.DB
}

// NewVisitService 创建 VisitService。
func NewVisitService(gdb *gorm.DB) *VisitService {
	return &VisitService{db: gdb}
}

// VisitSummary 汇总某个身份的历史访问。
type VisitSummary struct {
	Total    uint64
	LastSeen *time.Time
	Degraded bool
}

// RecordVisit 为 identity 在 now 所在的日期累加一次访问，并返回累加后的当日次数。
// 行不存在时先以 count=0 插入（唯一索引冲突时忽略），随后用单条 UPDATE 原子自增。
func (s *VisitService) RecordVisit(identity VisitIdentity, now time.Time) (uint64, error) {
	if identity.IsZero() {
		return 0, ErrNoIdentity
	}

	day := db.VisitDay(now)
	row := db.Visit{Date: day, LastSeen: now}
	var conflict []clause.Column
	if identity.IsUser() {
		userID := identity.UserID
		row.UserID = &userID
		conflict = []clause.Column{{Name: "user_id"}, {Name: "date"}}
	} else {
		key := identity.SessionKey
		row.SessionKey = &key
		conflict = []clause.Column{{Name: "session_key"}, {Name: "date"}}
	}

	if err := s.db.Clauses(clause.OnConflict{Columns: conflict, DoNothing: true}).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("ensure visit row: %w", err)
	}

	update := s.scope(s.db.Model(&db.Visit{}), identity).
		Where("date = ?", day).
		Updates(map[string]interface{}{
			"count":     gorm.Expr("count + ?", 1),
			"last_seen": now,
		})
	if update.Error != nil {
		return 0, fmt.Errorf("increment visit: %w", update.Error)
	}
	if update.RowsAffected == 0 {
		return 0, errors.New("increment visit: row vanished")
	}

	var current db.Visit
	if err := s.scope(s.db, identity).Where("date = ?", day).First(&current).Error; err != nil {
		return 0, fmt.Errorf("load visit: %w", err)
	}
	return current.Count, nil
}

// Counts 返回 identity 在 day 的次数以及当天全站总次数。
func (s *VisitService) Counts(identity VisitIdentity, day time.Time) (userTotal, globalTotal uint64, err error) {
	key := db.VisitDay(day)

	if err := s.db.Model(&db.Visit{}).
		Select("COALESCE(SUM(count), 0)").
		Where("date = ?", key).
		Scan(&globalTotal).Error; err != nil {
		return 0, 0, fmt.Errorf("sum global visits: %w", err)
	}

	if identity.IsZero() {
		return 0, globalTotal, nil
	}

	if err := s.scope(s.db.Model(&db.Visit{}), identity).
		Select("COALESCE(SUM(count), 0)").
		Where("date = ?", key).
		Scan(&userTotal).Error; err != nil {
		return 0, 0, fmt.Errorf("sum visitor visits: %w", err)
	}

	return userTotal, globalTotal, nil
}

// Summary 返回 identity 的历史访问总数与最近一次访问时间。
func (s *VisitService) Summary(identity VisitIdentity) (VisitSummary, error) {
	var summary VisitSummary
	if identity.IsZero() {
		return summary, nil
	}

	if err := s.scope(s.db.Model(&db.Visit{}), identity).
		Select("COALESCE(SUM(count), 0)").
		Scan(&summary.Total).Error; err != nil {
		return VisitSummary{}, fmt.Errorf("sum lifetime visits: %w", err)
	}

	var latest db.Visit
	err := s.scope(s.db, identity).Order("last_seen desc").First(&latest).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return VisitSummary{}, fmt.Errorf("load last visit: %w", err)
	default:
		lastSeen := latest.LastSeen
		summary.LastSeen = &lastSeen
	}

	return summary, nil
}

// RecentDays 返回 identity 自 today 前 days 天起（含该日与今天，共 days+1 个日历日）的访问行，按日期升序。
func (s *VisitService) RecentDays(identity VisitIdentity, today time.Time, days int) ([]db.Visit, error) {
	if identity.IsZero() {
		return nil, nil
	}
	if days <= 0 {
		days = 7
	}

	since := db.VisitDay(today).AddDate(0, 0, -days)
	var visits []db.Visit
	if err := s.scope(s.db, identity).
		Where("date >= ?", since).
		Order("date asc").
		Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("list recent visits: %w", err)
	}
	return visits, nil
}

func (s *VisitService) scope(query *gorm.DB, identity VisitIdentity) *gorm.DB {
	if identity.IsUser() {
		return query.Where("user_id = ?", identity.UserID)
	}
	return query.Where("session_key = ?", identity.SessionKey)
}

// ThrottleAllows reports whether a visit at now may be counted, given the
// timestamp of the last counted visit stored in the session. A missing or
// unparseable timestamp never blocks counting.
func ThrottleAllows(lastCounted string, now time.Time, window time.Duration) bool {
	if window <= 0 {
		return true
	}

	last, ok := ParseVisitTime(lastCounted)
	if !ok {
		return true
	}
	return now.Sub(last) >= window
}

var visitTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseVisitTime parses an ISO-8601 timestamp; values without a zone are UTC.
func ParseVisitTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range visitTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// FormatVisitTime formats t the way it is stored in the session.
func FormatVisitTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
