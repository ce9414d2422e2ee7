package utils

import (
	"math"

	"github.com/gin-gonic/gin"
)

// PageQuery holds the 1-indexed page and page size parsed from a request.
type PageQuery struct {
	Page  int
	Limit int
}

// ParsePage reads page/limit query parameters, falling back to page 1 and the
// entity-specific default limit when absent or invalid.
func ParsePage(c *gin.Context, defaultLimit int) PageQuery {
	page := StringToInt(c.Query("page"))
	if page < 1 {
		page = 1
	}
	limit := StringToInt(c.Query("limit"))
	if limit < 1 {
		limit = defaultLimit
	}
	return PageQuery{Page: page, Limit: limit}
}

func (q PageQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageInfo is the pagination block attached to every list response.
// NextPage and PrevPage are null at the respective boundary.
type PageInfo struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

// NewPageInfo computes the total page count and the nullable next/previous
// page numbers for a result set.
func NewPageInfo(total int64, q PageQuery) PageInfo {
	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
	info := PageInfo{
		Total:      total,
		TotalPages: totalPages,
		Page:       q.Page,
		Limit:      q.Limit,
	}
	if q.Page < totalPages {
		next := q.Page + 1
		info.NextPage = &next
	}
	if q.Page > 1 {
		prev := q.Page - 1
		info.PrevPage = &prev
	}
	return info
}
