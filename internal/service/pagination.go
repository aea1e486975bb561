package service

import "math"

// Pagination describes where a page sits within a filtered result set.
// From and To are 1-based item positions; both are 0 for an empty page.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	From        int   `json:"from"`
	To          int   `json:"to"`
}

func Paginate(total int64, page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	last := int((total + int64(perPage) - 1) / int64(perPage))
	if last < 1 {
		last = 1
	}

	p := Pagination{
		CurrentPage: page,
		LastPage:    last,
		PerPage:     perPage,
		Total:       total,
	}
	// Only pages up to last can hold rows, so the offset below stays within total.
	if page <= last && total > 0 {
		offset := int64(page-1) * int64(perPage)
		p.From = int(offset + 1)
		p.To = int(min(offset+int64(perPage), total))
	}
	return p
}

// pageOffset is the row offset of page. It saturates at math.MaxInt rather
// than wrapping negative for absurd page numbers.
func pageOffset(page, perPage int) int {
	if page <= 1 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}

func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

func (p Pagination) HasNext() bool { return p.CurrentPage < p.LastPage }
