package scraper

import "shop-harvester/models"

// ClickStyle selects how the next-page control is invoked.
type ClickStyle int

const (
	// DirectClick uses the driver's native click.
	DirectClick ClickStyle = iota
	// ScriptClick dispatches the click from page script, for controls that
	// are covered by overlays or otherwise reject simulated pointer input.
	ScriptClick
)

// SiteAdapter is the static parameterization of one site's listing flow.
// It carries no state; one value may be shared by many harvests.
type SiteAdapter struct {
	Source    models.Source
	SearchURL func(query string) string

	Container Locator

	// TitleParts are joined with a single space; every part is required.
	TitleParts []Field
	Price      Field
	Rating     Field
	Link       Field

	Next      Locator
	NextClick ClickStyle
}
