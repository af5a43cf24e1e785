package main

import (
	"os"

	"github.com/alecthomas/kong"

	"shop-harvester/config"
	"shop-harvester/utils"
)

// CLI is the command tree. Harvest runs when no command is given.
type CLI struct {
	LogLevel string `help:"Override LOG_LEVEL (debug, info, warn, error)." name:"log-level"`

	Harvest HarvestCmd `cmd:"" default:"1" help:"Harvest listings from the configured sites into the store."`
	Report  ReportCmd  `cmd:"" help:"Print price and rating insights over the stored listings."`
	Export  ExportCmd  `cmd:"" help:"Write every stored listing to a CSV file."`
	Serve   ServeCmd   `cmd:"" help:"Serve the search page and JSON API over the store."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("shop-harvester"),
		kong.Description("Harvests product listings from Amazon and Myntra and serves them for search."),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	logger := utils.NewLogger(cfg.LogLevel)

	if err := ctx.Run(&App{cfg: cfg, logger: logger}); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
