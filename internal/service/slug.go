package service

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Slugify 将标题转换为 URL 片段：去除重音后只保留 ASCII 字母数字，
// 其余连续字符折叠为单个连字符。
func Slugify(value string) string {
	decomposed := norm.NFKD.String(value)

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingDash := false
	for _, r := range decomposed {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r) || r == '-' || r == '_':
			pendingDash = true
		}
	}
	return b.String()
}

// uniqueSlug 显式填写的 slug 冲突时返回 ErrSlugTaken；由标题生成的 slug 冲突时追加数字后缀。
// 软删除的行同样占用 slug，因为唯一索引不区分 deleted_at。
func uniqueSlug(gdb *gorm.DB, model interface{}, requested, title, fallback string, selfID uint) (string, error) {
	explicit := strings.TrimSpace(requested) != ""
	base := Slugify(requested)
	if !explicit {
		base = Slugify(title)
	}
	if base == "" {
		base = fallback
	}

	candidate := base
	for suffix := 2; ; suffix++ {
		query := gdb.Unscoped().Model(model).Where("slug = ?", candidate)
		if selfID != 0 {
			query = query.Where("id <> ?", selfID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		if explicit {
			return "", ErrSlugTaken
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}
