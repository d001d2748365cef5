// Package pagination slices ordered result sets into fixed-size pages.
package pagination

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// PageSize is shared by every listing.
const PageSize = 10

// Page describes one page of an ordered sequence. Number is 1-based.
type Page struct {
	Number   int   `json:"number"`
	NumPages int   `json:"num_pages"`
	Count    int64 `json:"count"`
	PerPage  int   `json:"per_page"`
}

// ParseNumber reads a raw ?page= value. Anything that is not a positive
// integer yields 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// New builds the page for a sequence of count items, clamping the
// requested number into [1, NumPages]. An empty sequence has one empty page.
func New(count int64, raw string) Page {
	return NewSized(count, raw, PageSize)
}

// NewSized is New with an explicit page size.
func NewSized(count int64, raw string, perPage int) Page {
	if perPage < 1 {
		perPage = PageSize
	}
	if count < 0 {
		count = 0
	}
	numPages := int((count + int64(perPage) - 1) / int64(perPage))
	if numPages == 0 {
		numPages = 1
	}

	number := ParseNumber(raw)
	if number > numPages {
		number = numPages
	}

	return Page{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Bounds returns the half-open [start, end) index range clipped to Count.
func (p Page) Bounds() (int, int) {
	start := p.Offset()
	end := start + p.PerPage
	if int64(start) > p.Count {
		start = int(p.Count)
	}
	if int64(end) > p.Count {
		end = int(p.Count)
	}
	return start, end
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.NumPages
}

func (p Page) HasOtherPages() bool {
	return p.HasPrevious() || p.HasNext()
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious() {
		return p.Number
	}
	return p.Number - 1
}

func (p Page) NextNumber() int {
	if !p.HasNext() {
		return p.Number
	}
	return p.Number + 1
}

// Numbers lists every page number, for rendering page links.
func (p Page) Numbers() []int {
	nums := make([]int, p.NumPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Slice returns the items of an in-memory sequence on the requested page.
func Slice[T any](items []T, raw string) ([]T, Page) {
	page := New(int64(len(items)), raw)
	start, end := page.Bounds()
	return items[start:end], page
}

// Query counts the rows matched by q, then loads the requested page into
// dest with the given associations preloaded. q must already carry its
// ORDER BY clause.
func Query(ctx context.Context, q *gorm.DB, raw string, dest interface{}, preloads ...string) (Page, error) {
	var count int64
	if err := q.Session(&gorm.Session{}).WithContext(ctx).Count(&count).Error; err != nil {
		return Page{}, err
	}

	page := New(count, raw)
	find := q.Session(&gorm.Session{}).WithContext(ctx)
	for _, p := range preloads {
		find = find.Preload(p)
	}
	err := find.
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(dest).Error
	if err != nil {
		return Page{}, err
	}
	return page, nil
}
