package service

import (
	"strconv"
	"strings"

	"github.com/rl1809/catalog-service/internal/core/domain"
)

// RawSearchQuery carries search parameters as they arrive from the
// transport, all optional and unvalidated.
type RawSearchQuery struct {
	Search   string
	Category string
	Price    string
	Sort     string
	Page     string
}

// BuildSearchQuery normalizes a raw query into a search specification.
// It never fails: malformed input degrades to permissive defaults
// (search is advisory, not validating). The category is passed through
// verbatim; the write path lowercases categories at rest, so a
// mixed-case category filter will miss. That asymmetry is inherited
// behavior, kept on purpose.
func BuildSearchQuery(raw RawSearchQuery, pageSize int) domain.SearchQuery {
	page := 1
	if n, err := strconv.Atoi(strings.TrimSpace(raw.Page)); err == nil && n > 0 {
		page = n
	}

	q := domain.SearchQuery{
		NameContains: raw.Search,
		Category:     raw.Category,
		Page:         page,
		Limit:        pageSize,
		Skip:         (page - 1) * pageSize,
	}

	if raw.Price != "" {
		if p, err := strconv.ParseFloat(raw.Price, 64); err == nil {
			q.MaxPrice = &p
		}
	}

	switch raw.Sort {
	case "asc":
		q.Sort = domain.SortAsc
	case "desc":
		q.Sort = domain.SortDesc
	}

	return q
}
