package scraper

import "errors"

var (
	// ErrNotFound is returned by drivers when a locator matches nothing.
	ErrNotFound = errors.New("element not found")
	// ErrUnsupportedScript is returned by drivers that cannot run the given script.
	ErrUnsupportedScript = errors.New("script not supported by driver")
)

// ClickScript dispatches a click from inside the page instead of simulating
// pointer input. Drivers call it with the target element bound to this.
const ClickScript = `function() { this.click(); }`

// Browser is the capability set the harvester needs from a page driver.
// Implementations own their own timeouts.
type Browser interface {
	Navigate(url string) error
	FindElements(loc Locator) ([]Element, error)
	FindElement(loc Locator) (Element, error)
	ExecuteScript(script string, el Element) error
	Close() error
}

// Element is one node of the current page.
type Element interface {
	FindElement(loc Locator) (Element, error)
	Text() (string, error)
	Attribute(name string) (string, error)
	Click() error
}
