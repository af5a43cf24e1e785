package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"shop-harvester/scraper"
)

// Chromedp drives one Chrome tab over the DevTools protocol.
type Chromedp struct {
	bin         string
	ctx         context.Context
	cancel      context.CancelFunc
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
	opTimeout   time.Duration
}

// NewChromedp launches the browser and opens a tab.
func NewChromedp(o Options) (*Chromedp, error) {
	o = o.withDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if o.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(o.UserAgent))
	}
	if o.ChromeBin != "" {
		opts = append(opts, chromedp.ExecPath(o.ChromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		cancelAlloc()
		return nil, fmt.Errorf("chromedp: start browser: %w", err)
	}

	return &Chromedp{
		bin:         o.ChromeBin,
		ctx:         ctx,
		cancel:      cancel,
		cancelAlloc: cancelAlloc,
		navTimeout:  o.NavTimeout,
		opTimeout:   o.OpTimeout,
	}, nil
}

func (c *Chromedp) run(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

func (c *Chromedp) Navigate(url string) error {
	if err := c.run(c.navTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chromedp: navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chromedp) FindElements(loc scraper.Locator) ([]scraper.Element, error) {
	nodes, err := c.query(loc, nil)
	if err != nil {
		return nil, err
	}
	out := make([]scraper.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &chromedpElement{c: c, node: n}
	}
	return out, nil
}

func (c *Chromedp) FindElement(loc scraper.Locator) (scraper.Element, error) {
	return c.first(loc, nil)
}

func (c *Chromedp) ExecuteScript(script string, el scraper.Element) error {
	ce, ok := el.(*chromedpElement)
	if !ok {
		return fmt.Errorf("chromedp: foreign element %T", el)
	}
	return c.callOn(ce.node, script, nil)
}

func (c *Chromedp) Close() error {
	c.cancel()
	c.cancelAlloc()
	return nil
}

// query returns every match of loc, below from when it is set. AtLeast(0)
// keeps chromedp from polling until something appears.
func (c *Chromedp) query(loc scraper.Locator, from *cdp.Node) ([]*cdp.Node, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}

	var nodes []*cdp.Node
	if err := c.run(c.opTimeout, chromedp.Nodes(loc.CSS(), &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("chromedp: query %s: %w", loc, err)
	}
	return nodes, nil
}

func (c *Chromedp) first(loc scraper.Locator, from *cdp.Node) (scraper.Element, error) {
	nodes, err := c.query(loc, from)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", scraper.ErrNotFound, loc)
	}
	return &chromedpElement{c: c, node: nodes[0]}, nil
}

// callOn runs a function declaration with the node bound to this and decodes
// its return value into out.
func (c *Chromedp) callOn(node *cdp.Node, decl string, out any) error {
	return c.run(c.opTimeout, chromedp.ActionFunc(func(ctx context.Context) error {
		obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
		if err != nil {
			return fmt.Errorf("chromedp: resolve node: %w", err)
		}
		res, exc, err := runtime.CallFunctionOn(decl).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("chromedp: call function: %w", err)
		}
		if exc != nil {
			return fmt.Errorf("chromedp: script exception: %s", exc.Text)
		}
		if out == nil || res == nil || len(res.Value) == 0 {
			return nil
		}
		return json.Unmarshal(res.Value, out)
	}))
}

type chromedpElement struct {
	c    *Chromedp
	node *cdp.Node
}

func (e *chromedpElement) FindElement(loc scraper.Locator) (scraper.Element, error) {
	return e.c.first(loc, e.node)
}

func (e *chromedpElement) Text() (string, error) {
	var s *string
	if err := e.c.callOn(e.node, `function() { return this.innerText; }`, &s); err != nil {
		return "", err
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

// Attribute prefers the DOM property (absolute href, innerHTML) and falls back
// to the raw attribute.
func (e *chromedpElement) Attribute(name string) (string, error) {
	decl := fmt.Sprintf(`function() {
		const v = this[%[1]s] !== undefined ? this[%[1]s] : this.getAttribute(%[1]s);
		return v == null ? null : String(v);
	}`, strconv.Quote(name))

	var v *string
	if err := e.c.callOn(e.node, decl, &v); err != nil {
		return "", err
	}
	if v == nil {
		return "", fmt.Errorf("chromedp: no attribute %q", name)
	}
	return *v, nil
}

func (e *chromedpElement) Click() error {
	return e.c.run(e.c.opTimeout, chromedp.Click([]cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID))
}
