package scraper

import "strings"

// Extract tries each strategy in order against el and returns the first
// non-empty trimmed value. A locate miss, a read error or blank text all fall
// through to the next strategy. ok is false when every strategy failed.
func Extract(el Element, field Field) (value string, ok bool) {
	for _, s := range field {
		if v, err := s.read(el); err == nil && v != "" {
			return v, true
		}
	}
	return "", false
}

func (s Strategy) read(el Element) (string, error) {
	sub, err := el.FindElement(s.Locator)
	if err != nil {
		return "", err
	}
	var raw string
	if s.Attribute == "" {
		raw, err = sub.Text()
	} else {
		raw, err = sub.Attribute(s.Attribute)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}
