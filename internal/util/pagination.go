package util

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// Calculate clamps page and size and returns the row window for them.
func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return (page - 1) * size, size
}

type Meta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

type Page struct {
	Number int
	Offset int
	Limit  int
}

// PageFromQuery reads ?page= and ?size=.
func PageFromQuery(c echo.Context) Page {
	page := ParseIntDefault(c.QueryParam("page"), 1)
	size := ParseIntDefault(c.QueryParam("size"), DefaultPageSize)
	offset, limit := Calculate(page, size)
	if page < 1 {
		page = 1
	}
	return Page{Number: page, Offset: offset, Limit: limit}
}

func (p Page) Meta(total int64) Meta {
	return Meta{
		Page:       p.Number,
		Size:       p.Limit,
		Total:      total,
		TotalPages: (total + int64(p.Limit) - 1) / int64(p.Limit),
		HasPrev:    p.Number > 1,
		HasNext:    int64(p.Offset+p.Limit) < total,
	}
}

// Paged is the list envelope shared by every paginated endpoint.
func Paged(data any, p Page, total int64) echo.Map {
	return echo.Map{"data": data, "meta": p.Meta(total)}
}
