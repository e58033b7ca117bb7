package domain

type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchQuery is a normalized search specification: every field is
// already validated or defaulted, pages are 1-indexed.
type SearchQuery struct {
	NameContains string
	Category     string
	MaxPrice     *float64
	Sort         SortDirection
	Page         int
	Limit        int
	Skip         int
}

// Filter translates the query into the repository-facing filter.
func (q SearchQuery) Filter() ItemFilter {
	return ItemFilter{
		NameContains: q.NameContains,
		Category:     q.Category,
		MaxPrice:     q.MaxPrice,
		Sort:         q.Sort,
		Limit:        q.Limit,
		Skip:         q.Skip,
	}
}

// ItemFilter selects and orders items in the item repository. A zero
// filter matches everything in the store's natural order. Sort orders
// by price; NewestFirst orders by creation time descending and is
// mutually exclusive with Sort.
type ItemFilter struct {
	NameContains string
	Category     string
	MaxPrice     *float64
	Sort         SortDirection
	NewestFirst  bool
	Limit        int
	Skip         int
}
