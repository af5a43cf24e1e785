package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shop-harvester/models"
)

// ErrBadBound is returned when a price bound is not a number.
var ErrBadBound = errors.New("invalid price bound")

// Filter selects normalized records by title substring and price range.
// Zero-valued fields are not applied.
type Filter struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
}

// ParseFilter builds a Filter from form or query-string values.
// Blank values mean "not applied".
func ParseFilter(query, minPrice, maxPrice string) (Filter, error) {
	f := Filter{Query: strings.TrimSpace(query)}

	var err error
	if f.MinPrice, err = parseBound("min_price", minPrice); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseBound("max_price", maxPrice); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseBound(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrBadBound, name, raw)
	}
	return &v, nil
}

// Apply returns the matching records in their original order. Bounds are
// inclusive and the title match ignores case. The result is never nil.
func (f Filter) Apply(records []models.NormalizedRecord) []models.NormalizedRecord {
	q := strings.ToLower(f.Query)
	out := make([]models.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) {
			continue
		}
		if f.MinPrice != nil && r.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && r.Price > *f.MaxPrice {
			continue
		}
		out = append(out, r)
	}
	return out
}
