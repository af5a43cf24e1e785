package services

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-harvester/models"
	"shop-harvester/scraper"
	"shop-harvester/scraper/driver"
)

var errBoom = errors.New("disk full")

type fakeStore struct {
	rows      []models.ListingRecord
	calls     []string
	appendErr error
}

func (f *fakeStore) Clear() error {
	f.calls = append(f.calls, "clear")
	f.rows = nil
	return nil
}

func (f *fakeStore) Append(records []models.ListingRecord) error {
	f.calls = append(f.calls, "append")
	if f.appendErr != nil {
		return f.appendErr
	}
	f.rows = append(f.rows, records...)
	return nil
}

func (f *fakeStore) ReadAll() ([]models.ListingRecord, error) { return f.rows, nil }
func (f *fakeStore) Close() error                            { return nil }

type recordingProgress struct{ events []string }

func (p *recordingProgress) Start(label string) { p.events = append(p.events, "start") }
func (p *recordingProgress) Stop(final string)  { p.events = append(p.events, "stop:"+final) }

func shopAdapter(src models.Source, host string) *scraper.SiteAdapter {
	return &scraper.SiteAdapter{
		Source: src,
		SearchURL: func(q string) string {
			return "https://" + host + "/search?q=" + url.QueryEscape(q)
		},
		Container:  scraper.Class("item"),
		TitleParts: []scraper.Field{{scraper.TextOf(scraper.Tag("h2"))}},
		Price:      scraper.Field{scraper.TextOf(scraper.Class("price"))},
		Rating:     scraper.Field{scraper.TextOf(scraper.Class("rating"))},
		Link:       scraper.Field{scraper.AttrOf(scraper.Tag("a"), "href")},
		Next:       scraper.Class("next"),
		NextClick:  scraper.DirectClick,
	}
}

func item(title, price, link string) string {
	return `<div class="item"><h2>` + title + `</h2><span class="price">` + price +
		`</span><a href="` + link + `">view</a></div>`
}

func shopPages() driver.Pages {
	return driver.Pages{
		"https://one.test/search?q=shoes": "<html><body>" +
			item("Runner", "₹1,299", "/p/1") + item("Walker", "₹999", "/p/2") +
			`<a class="next" href="/search?q=shoes&amp;page=2">next</a></body></html>`,
		"https://one.test/search?q=shoes&page=2": "<html><body>" +
			item("Trail", "₹2,499", "/p/3") + "</body></html>",
		"https://two.test/search?q=shoes": "<html><body>" +
			item("Sneaker", "Rs. 1,499", "/p/9") + "</body></html>",
	}
}

func newService(t *testing.T, pages driver.Pages, store *fakeStore) *HarvestService {
	t.Helper()
	h := scraper.NewHarvester(driver.NewStatic(pages), scraper.FixedDelay{}, nil, newTestLogger())
	sites := []*scraper.SiteAdapter{
		shopAdapter(models.SourceAmazon, "one.test"),
		shopAdapter(models.SourceMyntra, "two.test"),
	}
	return NewHarvestService(h, store, sites, newTestLogger())
}

func TestHarvestRunResetsThenAppendsInSiteOrder(t *testing.T) {
	store := &fakeStore{rows: []models.ListingRecord{{Title: "stale"}}}
	svc := newService(t, shopPages(), store)

	summary, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 2, Reset: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"clear", "append", "append"}, store.calls)
	require.Len(t, store.rows, 4)
	assert.Equal(t, "Runner", store.rows[0].Title)
	assert.Equal(t, "Trail", store.rows[2].Title)
	assert.Equal(t, models.SourceMyntra, store.rows[3].Source)
	assert.Equal(t, "https://one.test/p/1", store.rows[0].Link)

	assert.Equal(t, 4, summary.Total)
	require.Len(t, summary.Sites, 2)
	assert.Equal(t, 3, summary.Sites[0].Records)
	assert.Equal(t, 2, summary.Sites[0].Pages)
	assert.Equal(t, scraper.StopMaxPages, summary.Sites[0].StopReason)
	assert.Equal(t, scraper.StopNoNext, summary.Sites[1].StopReason)
}

func TestHarvestRunWithoutResetAppends(t *testing.T) {
	store := &fakeStore{rows: []models.ListingRecord{{Title: "earlier"}}}
	svc := newService(t, shopPages(), store)

	_, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 1})
	require.NoError(t, err)

	assert.NotContains(t, store.calls, "clear")
	require.Len(t, store.rows, 4)
	assert.Equal(t, "earlier", store.rows[0].Title)
}

func TestHarvestRunContinuesPastFailedSite(t *testing.T) {
	pages := shopPages()
	delete(pages, "https://two.test/search?q=shoes")
	store := &fakeStore{}
	svc := newService(t, pages, store)

	summary, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 2, Reset: true})
	require.NoError(t, err)

	assert.Len(t, store.rows, 3)
	assert.NotEmpty(t, summary.Sites[1].Error)
	assert.Equal(t, 3, summary.Total)
}

func TestHarvestRunNothingHarvestedLeavesStore(t *testing.T) {
	store := &fakeStore{rows: []models.ListingRecord{{Title: "keep"}}}
	svc := newService(t, driver.Pages{}, store)

	_, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 2, Reset: true})
	assert.ErrorIs(t, err, ErrNothingHarvested)
	assert.Empty(t, store.calls)
	assert.Len(t, store.rows, 1)
}

func TestHarvestRunStoreFaultAborts(t *testing.T) {
	store := &fakeStore{appendErr: errBoom}
	svc := newService(t, shopPages(), store)

	_, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 2, Reset: true})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"clear", "append"}, store.calls)
}

func TestHarvestRunWritesSnapshotAndProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.csv")
	progress := &recordingProgress{}
	svc := newService(t, shopPages(), &fakeStore{}).WithProgress(progress)

	_, err := svc.Run(RunOptions{Query: "shoes", MaxPages: 2, CSVPath: path})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "source,title,price,rating,link", lines[0])

	require.Len(t, progress.events, 4)
	assert.Equal(t, "start", progress.events[0])
	assert.Contains(t, progress.events[1], "3 records")
}
