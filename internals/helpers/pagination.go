package helper

import (
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	AllowAll       bool // accept per_page=all
	AllHardCap     int  // row cap for per_page=all
}

// Presets
var (
	AdminOpts  = Options{DefaultPerPage: 50, MaxPerPage: 500}
	ExportOpts = Options{DefaultPerPage: 100, MaxPerPage: 1000, AllowAll: true, AllHardCap: 10_000}
)

type Params struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string // asc|desc
	All       bool
}

func (p Params) Limit() int  { return p.PerPage }
func (p Params) Offset() int { return (p.Page - 1) * p.PerPage }

// ParseFiber reads page, per_page (alias limit), sort_by and order (alias
// sort) from the query string.
func ParseFiber(c *fiber.Ctx, defaultSortBy, defaultSortOrder string, opt Options) Params {
	q := c.Queries()
	p := Params{Page: 1, PerPage: opt.DefaultPerPage}

	if n, err := strconv.Atoi(q["page"]); err == nil && n > 1 {
		p.Page = n
	}

	perRaw := strings.TrimSpace(firstNonEmpty(q["per_page"], q["limit"]))
	switch {
	case opt.AllowAll && strings.EqualFold(perRaw, "all"):
		p.All, p.Page = true, 1
		p.PerPage = opt.MaxPerPage
		if opt.AllHardCap > 0 {
			p.PerPage = opt.AllHardCap
		}
	default:
		if n, err := strconv.Atoi(perRaw); err == nil && n > 0 {
			p.PerPage = min(n, opt.MaxPerPage)
		}
	}

	p.SortBy = strings.TrimSpace(q["sort_by"])
	if p.SortBy == "" {
		p.SortBy = defaultSortBy
	}
	p.SortOrder = strings.ToLower(strings.TrimSpace(firstNonEmpty(q["order"], q["sort"])))
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		p.SortOrder = strings.ToLower(defaultSortOrder)
		if p.SortOrder != "asc" {
			p.SortOrder = "desc"
		}
	}
	return p
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}

type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	Count      int   `json:"count"` // rows on this page
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
	NextPage   *int  `json:"next_page,omitempty"`
	PrevPage   *int  `json:"prev_page,omitempty"`
}

func BuildMeta(total int64, p Params) Meta {
	totalPages := 0
	if total > 0 && p.PerPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}
	meta := Meta{
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    p.Page > 1,
		HasNext:    totalPages > 0 && p.Page < totalPages,
	}
	if meta.HasPrev {
		prev := p.Page - 1
		meta.PrevPage = &prev
	}
	if meta.HasNext {
		next := p.Page + 1
		meta.NextPage = &next
	}
	return meta
}
