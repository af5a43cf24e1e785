package scraper

import "fmt"

// LocatorKind selects how a Locator's value is interpreted.
type LocatorKind int

const (
	ByTag LocatorKind = iota
	ByClass
	ByCSS
)

func (k LocatorKind) String() string {
	switch k {
	case ByTag:
		return "tag"
	case ByClass:
		return "class"
	case ByCSS:
		return "css"
	default:
		return fmt.Sprintf("LocatorKind(%d)", int(k))
	}
}

// Locator finds elements on a page or below another element.
type Locator struct {
	Kind  LocatorKind
	Value string
}

func Tag(name string) Locator     { return Locator{Kind: ByTag, Value: name} }
func Class(name string) Locator   { return Locator{Kind: ByClass, Value: name} }
func CSS(selector string) Locator { return Locator{Kind: ByCSS, Value: selector} }

// CSS renders the locator as a CSS selector, which every driver understands.
func (l Locator) CSS() string {
	switch l.Kind {
	case ByClass:
		return "." + l.Value
	default:
		return l.Value
	}
}

func (l Locator) String() string {
	return l.Kind.String() + "(" + l.Value + ")"
}

// Strategy is one way of reading a field: locate a sub-element, then read
// either its text (Attribute empty) or the named attribute.
type Strategy struct {
	Locator   Locator
	Attribute string
}

// TextOf reads the element text of the first match of loc.
func TextOf(loc Locator) Strategy { return Strategy{Locator: loc} }

// AttrOf reads the named attribute of the first match of loc.
func AttrOf(loc Locator, name string) Strategy { return Strategy{Locator: loc, Attribute: name} }

func (s Strategy) String() string {
	if s.Attribute == "" {
		return s.Locator.String() + ".text"
	}
	return s.Locator.String() + "@" + s.Attribute
}

// Field is an ordered list of strategies; earlier entries win.
type Field []Strategy
