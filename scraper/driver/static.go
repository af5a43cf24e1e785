package driver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"shop-harvester/scraper"
)

var (
	// ErrNoPage is returned when an element lookup runs before any navigation.
	ErrNoPage = errors.New("static: no page loaded")
	// ErrNotNavigable is returned when a clicked element carries no link.
	ErrNotNavigable = errors.New("static: element has no link to follow")
)

// Fetcher supplies the raw HTML for a URL.
type Fetcher interface {
	Fetch(url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches pages over plain HTTP without running any script.
type HTTPFetcher struct {
	Client    *http.Client
	UserAgent string
}

func (f *HTTPFetcher) Fetch(rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("static: build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("static: get %s: %w", rawURL, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("static: get %s: status %d", rawURL, resp.StatusCode)
	}
	return resp.Body, nil
}

// Pages serves fixed HTML keyed by absolute URL.
type Pages map[string]string

func (p Pages) Fetch(rawURL string) (io.ReadCloser, error) {
	html, ok := p[rawURL]
	if !ok {
		return nil, fmt.Errorf("static: no page for %s", rawURL)
	}
	return io.NopCloser(strings.NewReader(html)), nil
}

// Static is a Browser over server-rendered HTML. It cannot run page script;
// clicking an element follows its link instead.
type Static struct {
	fetcher Fetcher
	doc     *goquery.Document
	base    *url.URL

	mu       sync.Mutex
	matchers map[string]cascadia.Selector
}

// NewStatic creates a Static driver reading pages from f.
func NewStatic(f Fetcher) *Static {
	return &Static{fetcher: f, matchers: make(map[string]cascadia.Selector)}
}

func (s *Static) Navigate(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("static: parse url: %w", err)
	}
	if s.base != nil {
		u = s.base.ResolveReference(u)
	}

	body, err := s.fetcher.Fetch(u.String())
	if err != nil {
		return err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return fmt.Errorf("static: parse %s: %w", u, err)
	}
	s.doc = doc
	s.base = u
	return nil
}

func (s *Static) FindElements(loc scraper.Locator) ([]scraper.Element, error) {
	if s.doc == nil {
		return nil, ErrNoPage
	}
	m, err := s.matcher(loc)
	if err != nil {
		return nil, err
	}

	sel := s.doc.FindMatcher(m)
	out := make([]scraper.Element, 0, sel.Length())
	sel.Each(func(_ int, one *goquery.Selection) {
		out = append(out, &staticElement{d: s, sel: one})
	})
	return out, nil
}

func (s *Static) FindElement(loc scraper.Locator) (scraper.Element, error) {
	if s.doc == nil {
		return nil, ErrNoPage
	}
	return s.first(s.doc.Selection, loc)
}

// ExecuteScript understands only scraper.ClickScript.
func (s *Static) ExecuteScript(script string, el scraper.Element) error {
	if script != scraper.ClickScript {
		return scraper.ErrUnsupportedScript
	}
	return el.Click()
}

func (s *Static) Close() error { return nil }

func (s *Static) first(root *goquery.Selection, loc scraper.Locator) (scraper.Element, error) {
	m, err := s.matcher(loc)
	if err != nil {
		return nil, err
	}
	sub := root.FindMatcher(m)
	if sub.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", scraper.ErrNotFound, loc)
	}
	return &staticElement{d: s, sel: sub.First()}, nil
}

func (s *Static) matcher(loc scraper.Locator) (cascadia.Selector, error) {
	css := loc.CSS()

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matchers[css]; ok {
		return m, nil
	}
	m, err := cascadia.Compile(css)
	if err != nil {
		return nil, fmt.Errorf("static: bad selector %q: %w", css, err)
	}
	s.matchers[css] = m
	return m, nil
}

func (s *Static) resolve(ref string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	if s.base != nil {
		u = s.base.ResolveReference(u)
	}
	return u.String(), nil
}

// ValidateLocator reports whether loc renders to a selector every driver accepts.
func ValidateLocator(loc scraper.Locator) error {
	if strings.TrimSpace(loc.Value) == "" {
		return fmt.Errorf("empty %s locator", loc.Kind)
	}
	_, err := cascadia.Compile(loc.CSS())
	return err
}

type staticElement struct {
	d   *Static
	sel *goquery.Selection
}

func (e *staticElement) FindElement(loc scraper.Locator) (scraper.Element, error) {
	return e.d.first(e.sel, loc)
}

func (e *staticElement) Text() (string, error) {
	return e.sel.Text(), nil
}

// Attribute mirrors what a live DOM reports: href and src come back absolute,
// and the inner* / textContent properties are synthesized from the markup.
func (e *staticElement) Attribute(name string) (string, error) {
	switch name {
	case "innerHTML":
		return e.sel.Html()
	case "outerHTML":
		return goquery.OuterHtml(e.sel)
	case "textContent", "innerText":
		return e.sel.Text(), nil
	}

	v, ok := e.sel.Attr(name)
	if !ok {
		return "", fmt.Errorf("static: no attribute %q", name)
	}
	if name == "href" || name == "src" {
		return e.d.resolve(v)
	}
	return v, nil
}

// Click follows the element's own link, or the closest enclosing or nested one.
func (e *staticElement) Click() error {
	href, ok := e.sel.Attr("href")
	if !ok {
		href, ok = e.sel.Closest("a[href]").Attr("href")
	}
	if !ok {
		href, ok = e.sel.Find("a[href]").First().Attr("href")
	}
	if !ok || strings.TrimSpace(href) == "" || strings.HasPrefix(href, "javascript:") {
		return ErrNotNavigable
	}
	return e.d.Navigate(href)
}
