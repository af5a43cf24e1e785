package scraper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-harvester/models"
	"shop-harvester/utils"
)

func newTestHarvester(b Browser) *Harvester {
	return NewHarvester(b, FixedDelay{}, nil, utils.Discard())
}

// pagedBrowser builds a fakeBrowser whose next control advances through pages.
func pagedBrowser(pages ...[]Element) *fakeBrowser {
	b := &fakeBrowser{pages: pages}
	b.next = &fakeElement{onClick: func() error {
		b.current++
		return nil
	}}
	return b
}

func TestHarvestSkipsElementMissingLink(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{
		listing("Shoe A", "₹1,299", "4.3 out of 5 stars", "https://shop.test/a"),
		listing("Shoe B", "₹999", "", ""),
		listing("Shoe C", "", "", "https://shop.test/c"),
	}}}

	res, err := newTestHarvester(b).Harvest(testAdapter(), "shoes", 2)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "Shoe A", res.Records[0].Title)
	assert.Equal(t, "Shoe C", res.Records[1].Title)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, Skip{Page: 0, Index: 1, Reason: "missing link"}, res.Skipped[0])
	assert.Equal(t, StopNoNext, res.StopReason)
}

func TestHarvestFillsMissingSentinel(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{listing("Shoe C", "", "", "https://shop.test/c")}}}

	res, err := newTestHarvester(b).Harvest(testAdapter(), "shoes", 1)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	assert.Equal(t, models.ListingRecord{
		Source:    "Amazon",
		Title:     "Shoe C",
		RawPrice:  models.Missing,
		RawRating: models.Missing,
		Link:      "https://shop.test/c",
	}, res.Records[0])
}

func TestHarvestMissingTitleDropsExactlyOne(t *testing.T) {
	full := []Element{
		listing("A", "1", "", "https://shop.test/a"),
		listing("B", "2", "", "https://shop.test/b"),
	}
	withBroken := append([]Element{listing("", "3", "", "https://shop.test/x")}, full...)

	base, err := newTestHarvester(&fakeBrowser{pages: [][]Element{full}}).Harvest(testAdapter(), "q", 1)
	require.NoError(t, err)
	broken, err := newTestHarvester(&fakeBrowser{pages: [][]Element{withBroken}}).Harvest(testAdapter(), "q", 1)
	require.NoError(t, err)

	assert.Len(t, broken.Records, len(base.Records))
	require.Len(t, broken.Skipped, 1)
	assert.Equal(t, "missing title", broken.Skipped[0].Reason)
}

func TestHarvestStopsAtMaxPagesWithEndlessNext(t *testing.T) {
	page := []Element{listing("A", "1", "", "https://shop.test/a")}
	b := pagedBrowser(page, page, page, page, page, page)

	res, err := newTestHarvester(b).Harvest(testAdapter(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, res.PagesVisited)
	assert.Equal(t, 2, b.next.clicks)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, StopMaxPages, res.StopReason)
	assert.Equal(t, []string{"https://shop.test/s?k=q"}, b.navigated, "only the first page is navigated to")
}

func TestHarvestEmptyPageStillPaginates(t *testing.T) {
	b := pagedBrowser([]Element{}, []Element{listing("A", "1", "", "https://shop.test/a")})

	res, err := newTestHarvester(b).Harvest(testAdapter(), "q", 2)
	require.NoError(t, err)

	assert.Equal(t, 1, b.next.clicks)
	assert.Equal(t, 2, res.PagesVisited)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "A", res.Records[0].Title)
}

func TestHarvestEmptyPageNoNext(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{}}}

	res, err := newTestHarvester(b).Harvest(testAdapter(), "q", 2)
	require.NoError(t, err)

	assert.NotNil(t, res.Records)
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, b.nextLookup, "pagination is attempted even with no listings")
	assert.Equal(t, StopNoNext, res.StopReason)
}

func TestHarvestNextClickFailureEndsNormally(t *testing.T) {
	b := &fakeBrowser{pages: [][]Element{{listing("A", "1", "", "https://shop.test/a")}}}
	b.next = &fakeElement{onClick: func() error { return errors.New("element not interactable") }}

	res, err := newTestHarvester(b).Harvest(testAdapter(), "q", 5)
	require.NoError(t, err)

	assert.Len(t, res.Records, 1)
	assert.Equal(t, StopNextFailed, res.StopReason)
}

func TestHarvestScriptClickStyle(t *testing.T) {
	page := []Element{listing("A", "1", "", "https://shop.test/a")}
	b := pagedBrowser(page, page)
	a := testAdapter()
	a.NextClick = ScriptClick

	_, err := newTestHarvester(b).Harvest(a, "q", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{ClickScript}, b.scripts)
}

func TestHarvestZeroPagesDoesNothing(t *testing.T) {
	b := &fakeBrowser{}

	res, err := newTestHarvester(b).Harvest(testAdapter(), "q", 0)
	require.NoError(t, err)

	assert.Empty(t, b.navigated)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.PagesVisited)
}

func TestHarvestRetriesInitialNavigation(t *testing.T) {
	b := &fakeBrowser{navErr: errors.New("net::ERR_CONNECTION_RESET")}
	retry := &utils.RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Sleep: func(time.Duration) {}}

	res, err := NewHarvester(b, FixedDelay{}, retry, utils.Discard()).Harvest(testAdapter(), "q", 2)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Len(t, b.navigated, 3)
}

func TestHarvestSettlesAfterEveryNavigation(t *testing.T) {
	page := []Element{listing("A", "1", "", "https://shop.test/a")}
	b := pagedBrowser(page, page, page)
	var settles int
	settle := FixedDelay{Delay: time.Second, Sleep: func(time.Duration) { settles++ }}

	_, err := NewHarvester(b, settle, nil, utils.Discard()).Harvest(testAdapter(), "q", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, settles)
}

func TestExtractRecordJoinsTitleParts(t *testing.T) {
	a := testAdapter()
	a.TitleParts = []Field{{TextOf(Class("brand"))}, {TextOf(Class("name"))}}

	el := &fakeElement{children: map[string]*fakeElement{
		".brand": {text: "Puma "},
		".name":  {text: " Men Running Shoes"},
		"a":      {attrs: map[string]string{"href": "https://shop.test/p/1"}},
	}}
	out := ExtractRecord(a, el)
	require.False(t, out.Skipped())
	assert.Equal(t, "Puma Men Running Shoes", out.Record.Title)

	delete(el.children, ".name")
	out = ExtractRecord(a, el)
	assert.True(t, out.Skipped())
	assert.Equal(t, "missing title", out.SkipReason)
}
