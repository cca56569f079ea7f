package catalog

const (
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Pagination is the navigation state for one page of results.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	ItemsPerPage    int  `json:"itemsPerPage"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`

	// StartIndex and EndIndex are inclusive; EndIndex < StartIndex on an empty page.
	StartIndex int `json:"-"`
	EndIndex   int `json:"-"`
}

// Paginate computes the page window for totalItems. Out-of-range pages are
// clamped into [1, totalPages], never rejected.
func Paginate(totalItems, perPage, requestedPage int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	current := requestedPage
	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	start := (current - 1) * perPage
	end := min(start+perPage-1, totalItems-1)

	return Pagination{
		CurrentPage:     current,
		TotalPages:      totalPages,
		TotalItems:      totalItems,
		ItemsPerPage:    perPage,
		HasNextPage:     current < totalPages,
		HasPreviousPage: current > 1,
		StartIndex:      start,
		EndIndex:        end,
	}
}

// Bounds returns half-open slice bounds for the page.
func (p Pagination) Bounds() (lo, hi int) {
	if p.EndIndex < p.StartIndex {
		return 0, 0
	}
	return p.StartIndex, p.EndIndex + 1
}
