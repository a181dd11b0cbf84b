package service

import (
	"math"
	"strconv"
	"strings"
)

// SessionKeyRecentArticles 会话中保存最近浏览文章 ID 的键
const SessionKeyRecentArticles = "recent_articles"

// DefaultRecencyCap is used when a non-positive cap is given.
const DefaultRecencyCap = 10

// RecordView moves id to the front of list, removes any other occurrence of it
// and trims the result to limit entries.
func RecordView(list []uint, id uint, limit int) []uint {
	if limit <= 0 {
		limit = DefaultRecencyCap
	}

	out := make([]uint, 0, min(len(list)+1, limit))
	out = append(out, id)
	seen := map[uint]struct{}{id: {}}

	for _, existing := range list {
		if len(out) >= limit {
			break
		}
		if _, dup := seen[existing]; dup {
			continue
		}
		seen[existing] = struct{}{}
		out = append(out, existing)
	}

	return out
}

// NormalizeRecent 尽力把会话中保存的值转换为 ID 列表：
// 无法解析的值会被丢弃，重复 ID 只保留第一次出现的位置。
func NormalizeRecent(raw interface{}) []uint {
	var values []interface{}

	switch v := raw.(type) {
	case nil:
		return []uint{}
	case []uint:
		for _, item := range v {
			values = append(values, item)
		}
	case []int:
		for _, item := range v {
			values = append(values, item)
		}
	case []int64:
		for _, item := range v {
			values = append(values, item)
		}
	case []string:
		for _, item := range v {
			values = append(values, item)
		}
	case []interface{}:
		values = v
	case string:
		for _, item := range strings.Split(v, ",") {
			values = append(values, item)
		}
	default:
		values = []interface{}{v}
	}

	ids := make([]uint, 0, len(values))
	seen := make(map[uint]struct{}, len(values))
	for _, value := range values {
		id, ok := coerceID(value)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func coerceID(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case uint32:
		return uint(v), v > 0
	case uint64:
		return uint(v), v > 0 && v <= math.MaxUint32
	case int:
		return uint(v), v > 0
	case int32:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0 && v <= math.MaxUint32
	case float64:
		if v <= 0 || v != math.Trunc(v) || v > math.MaxUint32 {
			return 0, false
		}
		return uint(v), true
	case string:
		parsed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil || parsed == 0 {
			return 0, false
		}
		return uint(parsed), true
	}
	return 0, false
}
