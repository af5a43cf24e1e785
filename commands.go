package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-harvester/config"
	"shop-harvester/scraper"
	"shop-harvester/scraper/driver"
	"shop-harvester/scraper/sites"
	"shop-harvester/scheduler"
	"shop-harvester/server"
	"shop-harvester/services"
	"shop-harvester/storage"
	"shop-harvester/utils"
)

// App is bound into every command's Run.
type App struct {
	cfg    *config.Config
	logger *utils.Logger
}

// harvestService wires browser, store and sites into a run service. The
// returned cleanup closes the browser.
func (a *App) harvestService(store storage.Store) (*services.HarvestService, func(), error) {
	adapters, err := sites.Resolve(a.cfg.Sites)
	if err != nil {
		return nil, nil, err
	}

	browser, err := driver.New(a.cfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("start browser: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: a.cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: a.logger}
	h := scraper.NewHarvester(browser, settlePolicy(a.cfg), retry, a.logger)

	cleanup := func() {
		if err := browser.Close(); err != nil {
			a.logger.Warn("Closing browser: %v", err)
		}
	}
	return services.NewHarvestService(h, store, adapters, a.logger), cleanup, nil
}

func (a *App) runOptions() services.RunOptions {
	return services.RunOptions{
		Query:    a.cfg.SearchQuery,
		MaxPages: a.cfg.MaxPages,
		Reset:    a.cfg.ResetOnHarvest,
		CSVPath:  a.cfg.CSVOutputPath,
	}
}

func settlePolicy(cfg *config.Config) scraper.SettlePolicy {
	if cfg.SettleMode == config.SettleContainer {
		return scraper.WaitForContainer{Timeout: cfg.SettleTimeout}
	}
	return scraper.FixedDelay{Delay: cfg.SettleDelay}
}

func (a *App) openStore() (storage.Store, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return storage.Open(a.cfg, a.logger)
}

type HarvestCmd struct {
	Query   string   `help:"Search query (overrides SEARCH_QUERY)." short:"q"`
	Pages   int      `help:"Maximum pages per site (overrides MAX_PAGES)." short:"p"`
	Sites   []string `help:"Sites to harvest, in order (overrides SITES)."`
	NoReset bool     `help:"Append to the store instead of clearing it first." name:"no-reset"`
	CSV     string   `help:"Also write this run's records to a CSV file." type:"path"`
}

func (c *HarvestCmd) Run(a *App) error {
	if c.Query != "" {
		a.cfg.SearchQuery = c.Query
	}
	if c.Pages != 0 {
		a.cfg.MaxPages = c.Pages
	}
	if len(c.Sites) > 0 {
		a.cfg.Sites = c.Sites
	}
	if c.NoReset {
		a.cfg.ResetOnHarvest = false
	}
	if c.CSV != "" {
		a.cfg.CSVOutputPath = c.CSV
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc, cleanup, err := a.harvestService(store)
	if err != nil {
		return err
	}
	defer cleanup()

	a.logger.Info("=== Harvest starting ===")
	a.logger.Info("Query: %q | pages/site: %d | sites: %v | reset: %v",
		a.cfg.SearchQuery, a.cfg.MaxPages, a.cfg.Sites, a.cfg.ResetOnHarvest)

	summary, err := svc.WithProgress(utils.NewSpinner(os.Stderr)).Run(a.runOptions())
	if err != nil {
		return err
	}

	fmt.Printf("\n  Done. %d records stored", summary.Total)
	for _, st := range summary.Sites {
		fmt.Printf(" | %s: %d", st.Source, st.Records)
	}
	fmt.Printf("\n\n")
	return nil
}

type ReportCmd struct {
	JSON bool `help:"Print the report as JSON instead of text." name:"json"`
}

func (c *ReportCmd) Run(a *App) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.ReadAll()
	if err != nil {
		return err
	}

	insights := services.NewInsightService(a.logger)
	report := insights.Report(rows)
	if c.JSON {
		return printJSON(os.Stdout, report)
	}
	insights.Print(os.Stdout, report)
	return nil
}

type ExportCmd struct {
	Output string `help:"Destination CSV file." short:"o" default:"output/products.csv" type:"path"`
}

func (c *ExportCmd) Run(a *App) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.ReadAll()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(c.Output, rows); err != nil {
		return err
	}
	a.logger.Info("Exported %d rows to %s", len(rows), c.Output)
	return nil
}

type ServeCmd struct {
	Addr     string `help:"Listen address (overrides HTTP_ADDR)."`
	Schedule string `help:"Cron spec for periodic harvests (overrides HARVEST_SCHEDULE)."`
}

func (c *ServeCmd) Run(a *App) error {
	if c.Addr != "" {
		a.cfg.HTTPAddr = c.Addr
	}
	if c.Schedule != "" {
		a.cfg.HarvestSchedule = c.Schedule
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.HarvestSchedule != "" {
		svc, cleanup, err := a.harvestService(store)
		if err != nil {
			return err
		}
		defer cleanup()

		sched := scheduler.New(svc, a.runOptions(), a.logger)
		if err := sched.Schedule(a.cfg.HarvestSchedule); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	return server.New(a.cfg, store, a.logger).Run(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
