package task

import (
	"sort"
	"strconv"
	"strings"
)

// PageSize is fixed for every listing.
const PageSize = 10

// Filter narrows a listing. All criteria are optional; nil/empty means "no
// filter". Search is a case-insensitive substring match against title OR
// description.
type Filter struct {
	Status   *Status
	Priority *Priority
	Search   string
}

// ParseFilter builds a Filter from plain query-string values. Unknown status
// or priority values mean "no filter", not an error.
func ParseFilter(status, priority, search string) Filter {
	var f Filter
	if s, ok := ParseStatus(status); ok {
		f.Status = &s
	}
	if p, ok := ParsePriority(priority); ok {
		f.Priority = &p
	}
	f.Search = strings.TrimSpace(search)
	return f
}

func (f Filter) matches(t Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	return true
}

// WithStatus returns a copy of the filter narrowed to one status.
func (f Filter) WithStatus(s Status) Filter {
	f.Status = &s
	return f
}

// WithPriority returns a copy of the filter narrowed to one priority.
func (f Filter) WithPriority(p Priority) Filter {
	f.Priority = &p
	return f
}

// PageRequest selects a 1-indexed page. Out-of-range values clamp to the
// nearest valid page rather than failing.
type PageRequest struct {
	Page int
}

// ParsePage reads a page number off the wire; anything unusable means the
// first page.
func ParsePage(s string) PageRequest {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		n = 1
	}
	return PageRequest{Page: n}
}

// Page is one slice of an ordered result set plus its metadata.
type Page struct {
	Items      []Task `json:"items"`
	TotalCount int    `json:"totalCount"`
	Number     int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	HasNext    bool   `json:"hasNext"`
	HasPrev    bool   `json:"hasPrev"`
}

// sortDefault orders tasks newest first: CreatedAt descending, ties broken
// by ID descending for determinism.
func sortDefault(ts []Task) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
}

// pageCount reports how many pages a result set spans. An empty set still
// has one (empty) page so clamping always lands somewhere valid.
func pageCount(total int) int {
	if total <= 0 {
		return 1
	}
	return (total + PageSize - 1) / PageSize
}

func clampPage(page, pages int) int {
	if page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// paginate slices an already filtered and ordered result set.
func paginate(ts []Task, req PageRequest) Page {
	total := len(ts)
	pages := pageCount(total)
	number := clampPage(req.Page, pages)

	start := (number - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]Task, end-start)
	copy(items, ts[start:end])

	return Page{
		Items:      items,
		TotalCount: total,
		Number:     number,
		TotalPages: pages,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}
}

// pageMeta builds page metadata for repositories that fetch items with
// offset queries instead of slicing in memory.
func pageMeta(items []Task, total, number int) Page {
	pages := pageCount(total)
	return Page{
		Items:      items,
		TotalCount: total,
		Number:     number,
		TotalPages: pages,
		HasNext:    number < pages,
		HasPrev:    number > 1,
	}
}
