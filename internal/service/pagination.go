package service

import (
	"strconv"
	"strings"
)

// Pagination 描述分页后的位置信息
type Pagination struct {
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

// ParsePage 解析页码参数，非法或小于 1 的值回退到第一页
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// Paginate clamps requested into [1, TotalPages]; a page past the end
// resolves to the last page.
func Paginate(requested int, total int64, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 10
	}
	if total < 0 {
		total = 0
	}

	p := Pagination{Page: requested, PerPage: perPage, Total: total, TotalPages: 1}
	if total > 0 {
		p.TotalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > p.TotalPages {
		p.Page = p.TotalPages
	}
	return p
}

// Offset returns the number of rows to skip for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

func (p Pagination) PrevPage() int { return p.Page - 1 }

func (p Pagination) NextPage() int { return p.Page + 1 }
