package sites

import (
	"net/url"
	"strings"

	"shop-harvester/models"
	"shop-harvester/scraper"
)

const myntraBase = "https://www.myntra.com"

// Myntra searches myntra.com. The title is brand plus product name, and the
// pagination link sits under an overlay, so it is clicked from page script.
func Myntra() *scraper.SiteAdapter {
	return &scraper.SiteAdapter{
		Source: models.SourceMyntra,
		SearchURL: func(query string) string {
			slug := strings.Join(strings.Fields(query), "-")
			return myntraBase + "/" + url.PathEscape(slug)
		},
		Container: scraper.Class("product-base"),
		TitleParts: []scraper.Field{
			{scraper.TextOf(scraper.Class("product-brand"))},
			{scraper.TextOf(scraper.Class("product-product"))},
		},
		Price: scraper.Field{
			scraper.TextOf(scraper.Class("product-discountedPrice")),
			scraper.TextOf(scraper.Class("product-price")),
		},
		Rating: scraper.Field{
			scraper.TextOf(scraper.Class("product-ratingsContainer")),
		},
		Link: scraper.Field{
			scraper.AttrOf(scraper.Tag("a"), "href"),
		},
		Next:      scraper.CSS("li[class='pagination-next'] > a"),
		NextClick: scraper.ScriptClick,
	}
}
