// Package driver holds the Browser implementations the harvester can run on.
package driver

import (
	"net/http"
	"time"

	"shop-harvester/config"
	"shop-harvester/scraper"
	"shop-harvester/utils"
)

// Options configures the real-browser drivers.
type Options struct {
	ChromeBin  string
	Headless   bool
	UserAgent  string
	NavTimeout time.Duration
	OpTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.ChromeBin == "" {
		o.ChromeBin = FindChromeBinary()
	}
	if o.NavTimeout <= 0 {
		o.NavTimeout = 60 * time.Second
	}
	if o.OpTimeout <= 0 {
		o.OpTimeout = 10 * time.Second
	}
	return o
}

// New opens the driver selected by cfg.BrowserDriver.
func New(cfg *config.Config, logger *utils.Logger) (scraper.Browser, error) {
	opts := Options{
		ChromeBin:  cfg.ChromeBin,
		Headless:   cfg.Headless,
		UserAgent:  cfg.UserAgent,
		NavTimeout: cfg.NavTimeout,
	}

	switch cfg.BrowserDriver {
	case config.BrowserStatic:
		logger.Info("[driver] Using static HTML driver (no page script)")
		return NewStatic(&HTTPFetcher{
			Client:    &http.Client{Timeout: cfg.NavTimeout},
			UserAgent: cfg.UserAgent,
		}), nil

	case config.BrowserRod:
		b, err := NewRod(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("[driver] Using rod, browser binary: %s", b.bin)
		return b, nil

	default:
		b, err := NewChromedp(opts)
		if err != nil {
			return nil, err
		}
		logger.Info("[driver] Using chromedp, browser binary: %s", b.bin)
		return b, nil
	}
}
