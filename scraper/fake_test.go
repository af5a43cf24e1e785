package scraper

import "errors"

// fakeElement is an in-memory Element whose children are keyed by CSS selector.
type fakeElement struct {
	text     string
	textErr  error
	attrs    map[string]string
	children map[string]*fakeElement
	onClick  func() error
	clicks   int
}

func (f *fakeElement) FindElement(loc Locator) (Element, error) {
	c, ok := f.children[loc.CSS()]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (f *fakeElement) Text() (string, error) {
	return f.text, f.textErr
}

func (f *fakeElement) Attribute(name string) (string, error) {
	v, ok := f.attrs[name]
	if !ok {
		return "", errors.New("no attribute " + name)
	}
	return v, nil
}

func (f *fakeElement) Click() error {
	f.clicks++
	if f.onClick != nil {
		return f.onClick()
	}
	return nil
}

// fakeBrowser serves a fixed list of pages; clicking next advances the page.
type fakeBrowser struct {
	pages      [][]Element
	current    int
	next       *fakeElement
	navigated  []string
	navErr     error
	scripts    []string
	nextLookup int
}

func (b *fakeBrowser) Navigate(url string) error {
	b.navigated = append(b.navigated, url)
	return b.navErr
}

func (b *fakeBrowser) FindElements(Locator) ([]Element, error) {
	if b.current >= len(b.pages) {
		return nil, nil
	}
	return b.pages[b.current], nil
}

func (b *fakeBrowser) FindElement(Locator) (Element, error) {
	b.nextLookup++
	if b.next == nil {
		return nil, ErrNotFound
	}
	return b.next, nil
}

func (b *fakeBrowser) ExecuteScript(script string, el Element) error {
	b.scripts = append(b.scripts, script)
	return el.Click()
}

func (b *fakeBrowser) Close() error { return nil }

func listing(title, price, rating, link string) *fakeElement {
	el := &fakeElement{children: map[string]*fakeElement{}}
	if title != "" {
		el.children["h2"] = &fakeElement{text: title}
	}
	if price != "" {
		el.children[".price"] = &fakeElement{text: price}
	}
	if rating != "" {
		el.children[".rating"] = &fakeElement{attrs: map[string]string{"innerHTML": rating}}
	}
	if link != "" {
		el.children["a"] = &fakeElement{attrs: map[string]string{"href": link}}
	}
	return el
}

func testAdapter() *SiteAdapter {
	return &SiteAdapter{
		Source:     "Amazon",
		SearchURL:  func(q string) string { return "https://shop.test/s?k=" + q },
		Container:  CSS("div.result"),
		TitleParts: []Field{{TextOf(Tag("h2"))}},
		Price:      Field{TextOf(Class("price"))},
		Rating:     Field{AttrOf(Class("rating"), "innerHTML")},
		Link:       Field{AttrOf(Tag("a"), "href")},
		Next:       Class("next"),
	}
}
