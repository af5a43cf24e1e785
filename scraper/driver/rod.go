package driver

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"shop-harvester/scraper"
)

// Rod drives one browser page through go-rod.
type Rod struct {
	bin        string
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
	opTimeout  time.Duration
}

// NewRod launches the browser and opens a blank page.
func NewRod(o Options) (*Rod, error) {
	o = o.withDefaults()

	l := launcher.New().
		Headless(o.Headless).
		NoSandbox(true).
		Leakless(false)
	if o.ChromeBin != "" {
		l = l.Bin(o.ChromeBin)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("rod: launch browser: %w", err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("rod: connect: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("rod: open page: %w", err)
	}
	if o.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: o.UserAgent}); err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("rod: set user agent: %w", err)
		}
	}

	return &Rod{
		bin:        o.ChromeBin,
		launcher:   l,
		browser:    browser,
		page:       page,
		navTimeout: o.NavTimeout,
		opTimeout:  o.OpTimeout,
	}, nil
}

func (r *Rod) Navigate(url string) error {
	p := r.page.Timeout(r.navTimeout)
	defer p.CancelTimeout()

	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("rod: navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("rod: wait load %s: %w", url, err)
	}
	return nil
}

func (r *Rod) FindElements(loc scraper.Locator) ([]scraper.Element, error) {
	els, err := r.page.Elements(loc.CSS())
	if err != nil {
		return nil, fmt.Errorf("rod: query %s: %w", loc, err)
	}
	return wrapRod(r, els), nil
}

func (r *Rod) FindElement(loc scraper.Locator) (scraper.Element, error) {
	els, err := r.page.Elements(loc.CSS())
	if err != nil {
		return nil, fmt.Errorf("rod: query %s: %w", loc, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", scraper.ErrNotFound, loc)
	}
	return &rodElement{r: r, el: els[0]}, nil
}

func (r *Rod) ExecuteScript(script string, el scraper.Element) error {
	re, ok := el.(*rodElement)
	if !ok {
		return fmt.Errorf("rod: foreign element %T", el)
	}
	if _, err := re.el.Timeout(r.opTimeout).Eval(script); err != nil {
		return fmt.Errorf("rod: eval: %w", err)
	}
	return nil
}

func (r *Rod) Close() error {
	err := r.browser.Close()
	r.launcher.Kill()
	return err
}

func wrapRod(r *Rod, els rod.Elements) []scraper.Element {
	out := make([]scraper.Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{r: r, el: el}
	}
	return out
}

type rodElement struct {
	r  *Rod
	el *rod.Element
}

func (e *rodElement) FindElement(loc scraper.Locator) (scraper.Element, error) {
	els, err := e.el.Elements(loc.CSS())
	if err != nil {
		return nil, fmt.Errorf("rod: query %s: %w", loc, err)
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", scraper.ErrNotFound, loc)
	}
	return &rodElement{r: e.r, el: els[0]}, nil
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

// Attribute prefers the DOM property (absolute href, innerHTML) and falls back
// to the raw attribute.
func (e *rodElement) Attribute(name string) (string, error) {
	if prop, err := e.el.Property(name); err == nil && !prop.Nil() {
		return prop.Str(), nil
	}
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", fmt.Errorf("rod: attribute %q: %w", name, err)
	}
	if v == nil {
		return "", fmt.Errorf("rod: no attribute %q", name)
	}
	return *v, nil
}

func (e *rodElement) Click() error {
	return e.el.Timeout(e.r.opTimeout).Click(proto.InputMouseButtonLeft, 1)
}
