package feed

import (
	"strconv"

	"blog/internal/models"
)

// Page is one bounded slice of a feed plus what the templates need to
// draw pagination controls.
type Page struct {
	Posts   []models.Post
	Number  int
	Total   int
	HasPrev bool
	HasNext bool
}

// Paginate slices the query into pages of the given size and returns the
// requested 1-based page. Page numbers below 1 clamp to the first page and
// numbers past the end clamp to the last, so an out-of-range request is
// never an error.
func Paginate(q *Query, page, size int) (*Page, error) {
	count, err := q.Count()
	if err != nil {
		return nil, err
	}

	total := (count + size - 1) / size
	if total < 1 {
		total = 1
	}
	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	posts, err := q.Slice(size, (page-1)*size)
	if err != nil {
		return nil, err
	}
	return &Page{
		Posts:   posts,
		Number:  page,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < total,
	}, nil
}

// Prev and Next feed the pagination links in templates.
func (p *Page) Prev() int { return p.Number - 1 }
func (p *Page) Next() int { return p.Number + 1 }

// PageNumber parses a ?page= value; anything unparseable means page 1.
func PageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
