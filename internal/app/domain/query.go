package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPageSize is used when page_size is omitted.
	DefaultPageSize = 10
	// MaxPageSize is the largest accepted page_size. Larger values are rejected.
	MaxPageSize = 100
)

// ListFilter selects one page of messages.
type ListFilter struct {
	Page     int
	PageSize int
	Source   string
	Start    *time.Time
	End      *time.Time
}

// ListQuery is the raw, string-typed form of a list request.
type ListQuery struct {
	Page      string
	PageSize  string
	Source    string
	StartDate string
	EndDate   string
}

// Page is one slice of a filtered message listing.
type Page struct {
	Messages   []Message `json:"messages"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// ParseListQuery converts query parameters into a validated filter.
func ParseListQuery(q ListQuery) (ListFilter, error) {
	filter := ListFilter{Page: 1, PageSize: DefaultPageSize, Source: strings.TrimSpace(q.Source)}

	if raw := strings.TrimSpace(q.Page); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, invalid("page", "must be an integer")
		}
		filter.Page = page
	}
	if raw := strings.TrimSpace(q.PageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, invalid("page_size", "must be an integer")
		}
		filter.PageSize = size
	}

	if raw := strings.TrimSpace(q.StartDate); raw != "" {
		start, err := ParseTimestamp(raw)
		if err != nil {
			return ListFilter{}, invalid("start_date", "must be an ISO 8601 date or timestamp")
		}
		filter.Start = &start
	}
	if raw := strings.TrimSpace(q.EndDate); raw != "" {
		end, err := ParseTimestamp(raw)
		if err != nil {
			return ListFilter{}, invalid("end_date", "must be an ISO 8601 date or timestamp")
		}
		// A bare date covers the whole day.
		if isDateOnly(raw) {
			end = end.Add(24*time.Hour - time.Microsecond)
		}
		filter.End = &end
	}

	if err := filter.Validate(); err != nil {
		return ListFilter{}, err
	}
	return filter, nil
}

// Validate checks pagination bounds and the date range.
func (f ListFilter) Validate() error {
	if f.Page < 1 {
		return invalid("page", "must be greater than or equal to 1")
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		return invalid("page_size", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	}
	if int64(f.Page-1) > math.MaxInt64/int64(f.PageSize) {
		return invalid("page", "is too large")
	}
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return invalid("start_date", "must not be after end_date")
	}
	return nil
}

// Offset returns the number of rows preceding the page. Validate guarantees
// it does not overflow.
func (f ListFilter) Offset() int64 {
	return int64(f.Page-1) * int64(f.PageSize)
}

// NewPage assembles pagination metadata around messages.
func NewPage(f ListFilter, messages []Message, total int64) Page {
	if messages == nil {
		messages = []Message{}
	}
	return Page{
		Messages:   messages,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: TotalPages(total, f.PageSize),
	}
}

// TotalPages is ceil(total/pageSize), zero for an empty set.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
