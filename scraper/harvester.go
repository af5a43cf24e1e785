package scraper

import (
	"fmt"
	"strings"
	"time"

	"shop-harvester/models"
	"shop-harvester/utils"
)

// StopReason tells why pagination ended. None of them is an error.
type StopReason string

const (
	StopMaxPages   StopReason = "max-pages"
	StopNoNext     StopReason = "no-next-control"
	StopNextFailed StopReason = "next-control-failed"
)

// Skip records one listing element that was dropped for lack of a required field.
type Skip struct {
	Page   int
	Index  int
	Reason string
}

// Outcome is the per-element result: a record, or the reason it was skipped.
type Outcome struct {
	Record     models.ListingRecord
	SkipReason string
}

// Skipped reports whether the element produced no record.
func (o Outcome) Skipped() bool { return o.SkipReason != "" }

// HarvestResult is everything one site harvest produced.
type HarvestResult struct {
	Source       models.Source
	Records      []models.ListingRecord
	Skipped      []Skip
	PagesVisited int
	StopReason   StopReason
}

type harvestState int

const (
	stateFetching harvestState = iota
	stateExtracting
	stateAdvancing
	stateDone
)

// Harvester drives one site's listing flow page by page, strictly in order.
type Harvester struct {
	browser Browser
	settle  SettlePolicy
	retry   *utils.RetryConfig
	logger  *utils.Logger
}

// NewHarvester creates a Harvester. retry governs only the initial navigation;
// nil means a single attempt.
func NewHarvester(b Browser, settle SettlePolicy, retry *utils.RetryConfig, logger *utils.Logger) *Harvester {
	if settle == nil {
		settle = FixedDelay{}
	}
	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1, Logger: logger}
	}
	return &Harvester{browser: b, settle: settle, retry: retry, logger: logger}
}

// Harvest extracts listings for query from at most maxPages pages of the site.
// The only error it returns is a failed initial navigation; everything after
// that degrades to skipped elements or an early end of pagination.
func (h *Harvester) Harvest(a *SiteAdapter, query string, maxPages int) (*HarvestResult, error) {
	res := &HarvestResult{Source: a.Source, Records: []models.ListingRecord{}}
	tag := "[" + strings.ToLower(string(a.Source)) + "]"

	if maxPages < 1 {
		res.StopReason = StopMaxPages
		return res, nil
	}

	start := time.Now()
	page := 0
	for state := stateFetching; state != stateDone; {
		switch state {
		case stateFetching:
			if page == 0 {
				url := a.SearchURL(query)
				h.logger.Info("%s Loading %s", tag, url)
				err := h.retry.Do("navigate "+string(a.Source), func() error {
					return h.browser.Navigate(url)
				})
				if err != nil {
					return nil, fmt.Errorf("harvest %s: %w", a.Source, err)
				}
			}
			h.settle.Settle(h.browser, a.Container)
			state = stateExtracting

		case stateExtracting:
			before := len(res.Records)
			h.extractPage(a, page, res)
			res.PagesVisited++
			h.logger.Debug("%s Page %d: %d records", tag, page+1, len(res.Records)-before)
			state = stateAdvancing

		case stateAdvancing:
			if reason, ok := h.advance(a, page, maxPages); ok {
				page++
				state = stateFetching
			} else {
				res.StopReason = reason
				state = stateDone
			}
		}
	}

	h.logger.Info("%s Harvested %d records from %d pages (skipped %d, stop: %s) in %v",
		tag, len(res.Records), res.PagesVisited, len(res.Skipped), res.StopReason,
		time.Since(start).Round(time.Millisecond))
	return res, nil
}

func (h *Harvester) extractPage(a *SiteAdapter, page int, res *HarvestResult) {
	elements, err := h.browser.FindElements(a.Container)
	if err != nil {
		h.logger.Warn("[%s] Listing lookup failed on page %d: %v", strings.ToLower(string(a.Source)), page+1, err)
		return
	}

	for i, el := range elements {
		out := ExtractRecord(a, el)
		if out.Skipped() {
			res.Skipped = append(res.Skipped, Skip{Page: page, Index: i, Reason: out.SkipReason})
			continue
		}
		res.Records = append(res.Records, out.Record)
	}
}

// advance moves to the next page if the page budget allows and a next control
// exists. A missing or failing control ends pagination normally.
func (h *Harvester) advance(a *SiteAdapter, page, maxPages int) (StopReason, bool) {
	if page >= maxPages-1 {
		return StopMaxPages, false
	}

	next, err := h.browser.FindElement(a.Next)
	if err != nil {
		return StopNoNext, false
	}

	if a.NextClick == ScriptClick {
		err = h.browser.ExecuteScript(ClickScript, next)
	} else {
		err = next.Click()
	}
	if err != nil {
		h.logger.Debug("[%s] Next control failed: %v", strings.ToLower(string(a.Source)), err)
		return StopNextFailed, false
	}
	return "", true
}

// ExtractRecord applies the adapter's field strategies to one listing element.
func ExtractRecord(a *SiteAdapter, el Element) Outcome {
	parts := make([]string, 0, len(a.TitleParts))
	for _, f := range a.TitleParts {
		v, ok := Extract(el, f)
		if !ok {
			return Outcome{SkipReason: "missing title"}
		}
		parts = append(parts, v)
	}
	if len(parts) == 0 {
		return Outcome{SkipReason: "missing title"}
	}

	link, ok := Extract(el, a.Link)
	if !ok {
		return Outcome{SkipReason: "missing link"}
	}

	return Outcome{Record: models.ListingRecord{
		Source:    a.Source,
		Title:     strings.Join(parts, " "),
		RawPrice:  orMissing(Extract(el, a.Price)),
		RawRating: orMissing(Extract(el, a.Rating)),
		Link:      link,
	}}
}

func orMissing(v string, ok bool) string {
	if !ok {
		return models.Missing
	}
	return v
}
