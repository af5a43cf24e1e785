// Package sites holds the static configuration for each supported retailer.
package sites

import (
	"fmt"
	"strings"

	"shop-harvester/scraper"
)

// All returns every adapter in harvest order.
func All() []*scraper.SiteAdapter {
	return []*scraper.SiteAdapter{Amazon(), Myntra()}
}

// ByName looks an adapter up by its lower-case name.
func ByName(name string) (*scraper.SiteAdapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "amazon":
		return Amazon(), nil
	case "myntra":
		return Myntra(), nil
	default:
		return nil, fmt.Errorf("sites: unknown site %q", name)
	}
}

// Resolve maps names to adapters, preserving order.
func Resolve(names []string) ([]*scraper.SiteAdapter, error) {
	out := make([]*scraper.SiteAdapter, 0, len(names))
	for _, n := range names {
		a, err := ByName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
