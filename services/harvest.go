package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shop-harvester/models"
	"shop-harvester/scraper"
	"shop-harvester/storage"
	"shop-harvester/utils"
)

// ErrNothingHarvested is returned when every site failed to load. The store
// is left untouched in that case.
var ErrNothingHarvested = errors.New("no site could be harvested")

// Progress reports per-site progress. utils.Spinner satisfies it.
type Progress interface {
	Start(label string)
	Stop(final string)
}

type noProgress struct{}

func (noProgress) Start(string) {}
func (noProgress) Stop(string)  {}

// RunOptions parameterize one harvest run.
type RunOptions struct {
	Query    string
	MaxPages int
	Reset    bool
	// CSVPath, when set, receives a snapshot of the records harvested by this run.
	CSVPath string
}

// SiteSummary is the aggregate outcome for one site.
type SiteSummary struct {
	Source     models.Source      `json:"source"`
	Records    int                `json:"records"`
	Skipped    int                `json:"skipped"`
	Pages      int                `json:"pages"`
	StopReason scraper.StopReason `json:"stop_reason,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// RunSummary is what a harvest run reports: counts only, per site.
type RunSummary struct {
	Sites    []SiteSummary `json:"sites"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
}

// HarvestService runs the sites one after another and persists the result.
type HarvestService struct {
	mu        sync.Mutex
	harvester *scraper.Harvester
	store     storage.Store
	sites     []*scraper.SiteAdapter
	progress  Progress
	logger    *utils.Logger
}

func NewHarvestService(h *scraper.Harvester, store storage.Store, sites []*scraper.SiteAdapter, logger *utils.Logger) *HarvestService {
	return &HarvestService{
		harvester: h,
		store:     store,
		sites:     sites,
		progress:  noProgress{},
		logger:    logger,
	}
}

// WithProgress attaches a progress display.
func (s *HarvestService) WithProgress(p Progress) *HarvestService {
	s.progress = p
	return s
}

// Run harvests every site, then clears the store once if opts.Reset is set
// and appends each site's records in site order. Runs never overlap.
func (s *HarvestService) Run(opts RunOptions) (*RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	summary := &RunSummary{Sites: make([]SiteSummary, 0, len(s.sites))}
	results := make([]*scraper.HarvestResult, 0, len(s.sites))

	for _, site := range s.sites {
		name := strings.ToLower(string(site.Source))
		s.progress.Start(fmt.Sprintf("Harvesting %s for %q ...", name, opts.Query))

		res, err := s.harvester.Harvest(site, opts.Query, opts.MaxPages)
		if err != nil {
			s.progress.Stop(fmt.Sprintf("✗ %s: %v", name, err))
			s.logger.Error("[harvest] %s failed: %v", site.Source, err)
			summary.Sites = append(summary.Sites, SiteSummary{Source: site.Source, Error: err.Error()})
			continue
		}

		s.progress.Stop(fmt.Sprintf("✓ %s: %d records from %d pages", name, len(res.Records), res.PagesVisited))
		for _, sk := range res.Skipped {
			s.logger.Debug("[harvest] %s page %d element %d skipped: %s", site.Source, sk.Page+1, sk.Index, sk.Reason)
		}
		results = append(results, res)
		summary.Sites = append(summary.Sites, SiteSummary{
			Source:     res.Source,
			Records:    len(res.Records),
			Skipped:    len(res.Skipped),
			Pages:      res.PagesVisited,
			StopReason: res.StopReason,
		})
		summary.Total += len(res.Records)
	}

	if len(results) == 0 {
		summary.Duration = time.Since(start)
		return summary, ErrNothingHarvested
	}

	if err := s.persist(results, opts.Reset); err != nil {
		summary.Duration = time.Since(start)
		return summary, err
	}

	if opts.CSVPath != "" {
		if err := storage.WriteCSV(opts.CSVPath, collect(results)); err != nil {
			s.logger.Warn("[harvest] CSV snapshot failed: %v", err)
		} else {
			s.logger.Info("[harvest] Snapshot written to %s", opts.CSVPath)
		}
	}

	summary.Duration = time.Since(start)
	for _, st := range summary.Sites {
		if st.Error == "" {
			s.logger.Info("[harvest] %s: %d records", st.Source, st.Records)
		}
	}
	s.logger.Info("[harvest] Stored %d records in %v", summary.Total, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

func (s *HarvestService) persist(results []*scraper.HarvestResult, reset bool) error {
	if reset {
		if err := s.store.Clear(); err != nil {
			return fmt.Errorf("harvest: reset store: %w", err)
		}
	}
	for _, res := range results {
		if err := s.store.Append(res.Records); err != nil {
			return fmt.Errorf("harvest: store %s records: %w", res.Source, err)
		}
	}
	return nil
}

func collect(results []*scraper.HarvestResult) []models.ListingRecord {
	var all []models.ListingRecord
	for _, res := range results {
		all = append(all, res.Records...)
	}
	return all
}
