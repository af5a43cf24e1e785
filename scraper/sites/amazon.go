package sites

import (
	"net/url"

	"shop-harvester/models"
	"shop-harvester/scraper"
)

const amazonBase = "https://www.amazon.in"

// Amazon searches amazon.in. Discounted and plain listings render the price
// differently, and the star rating lives in screen-reader-only text.
func Amazon() *scraper.SiteAdapter {
	return &scraper.SiteAdapter{
		Source: models.SourceAmazon,
		SearchURL: func(query string) string {
			return amazonBase + "/s?k=" + url.QueryEscape(query)
		},
		Container: scraper.CSS("div[data-component-type='s-search-result']"),
		TitleParts: []scraper.Field{{
			scraper.TextOf(scraper.Tag("h2")),
			scraper.TextOf(scraper.CSS("span.a-text-normal")),
		}},
		Price: scraper.Field{
			scraper.TextOf(scraper.Class("a-price-whole")),
			scraper.AttrOf(scraper.CSS("span.a-price > span.a-offscreen"), "textContent"),
		},
		Rating: scraper.Field{
			scraper.AttrOf(scraper.Class("a-icon-alt"), "innerHTML"),
			scraper.AttrOf(scraper.CSS("[aria-label*='out of 5 stars']"), "aria-label"),
		},
		Link: scraper.Field{
			scraper.AttrOf(scraper.Tag("a"), "href"),
			scraper.AttrOf(scraper.CSS("h2 a"), "href"),
		},
		Next:      scraper.Class("s-pagination-next"),
		NextClick: scraper.DirectClick,
	}
}
