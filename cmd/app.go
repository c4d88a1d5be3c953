// Package cmd implements the dash command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"maps"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/etnz/equity"
	"github.com/etnz/equity/config"
	"github.com/etnz/equity/date"
	"github.com/etnz/equity/journal"
	"github.com/etnz/equity/market"
	"github.com/etnz/equity/spot"
)

// Commands lists every dash subcommand, in help order.
var Commands = []subcommands.Command{
	&ledgerCmd{},
	&seriesCmd{},
	&valueCmd{},
	&metricsCmd{},
	&cagrCmd{},
	&benchmarkCmd{},
	&axisCmd{},
	&quoteCmd{},
	&exportCmd{},
	&runsCmd{},
	&importPricesCmd{},
	&fetchPricesCmd{},
	&serveCmd{},
	&explainCmd{},
	&topicCmd{},
}

// Register the subcommands.
func Register(c *subcommands.Commander) {
	for _, cmd := range Commands {
		c.Register(cmd, "")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "dash.yaml", "Path to the YAML configuration file")
var envFile = flag.String("env", ".env", "Path to the .env file holding secrets")
var Verbose = flag.Bool("v", false, "Verbose logging")

// app is everything a command needs, built from the configuration.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	period  date.Period
	store   market.PriceStore
	spot    market.SpotProvider
	engine  *equity.Engine
	agg     *equity.Aggregator
	journal *journal.Journal

	closers []func() error
}

// newLogger returns a production logger, or a development one in verbose mode.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// newApp loads the configuration and opens every data source it names.
func newApp() (*app, error) {
	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(*Verbose)
	if err != nil {
		return nil, fmt.Errorf("cannot create logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}
	if a.period, err = date.ParsePeriod(cfg.Period); err != nil {
		return nil, err
	}

	if err := a.openStore(); err != nil {
		a.Close()
		return nil, err
	}
	sp, err := a.spotProvider()
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []equity.Option{
		equity.WithLogger(log),
		equity.WithSpotTimeout(cfg.Spot.Timeout),
		equity.WithSpotParallelism(cfg.Spot.Parallelism),
	}
	if len(cfg.FullHistory) > 0 {
		opts = append(opts, equity.WithFullHistory(cfg.FullHistory...))
	}
	if len(cfg.Aliases) > 0 {
		aliases := maps.Clone(equity.DefaultAliases)
		maps.Copy(aliases, cfg.Aliases)
		opts = append(opts, equity.WithAliases(aliases))
	}
	a.spot = sp
	a.engine = equity.NewEngine(a.store, sp, opts...)
	a.agg = equity.NewAggregator(a.engine,
		equity.WithSectors(cfg.Sectors),
		equity.WithFallbackPrice(cfg.FallbackPrice),
		equity.WithBenchmark(cfg.Benchmark),
		equity.WithLabelPeriod(a.period),
	)

	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.journal = j
		a.closers = append(a.closers, j.Close)
	}
	return a, nil
}

// openStore opens the SQLite store if configured, or loads the market folder.
func (a *app) openStore() error {
	if a.cfg.Market.SQLite != "" {
		s, err := market.OpenSQLite(a.cfg.Market.SQLite)
		if err != nil {
			return err
		}
		a.store = s
		a.closers = append(a.closers, s.Close)
		return nil
	}
	m, err := market.DecodeFolder(a.cfg.Market.Folder)
	if err != nil {
		return err
	}
	if len(m.Tickers()) == 0 {
		a.log.Warn("no market data, every price will come from spot quotes", zap.String("folder", a.cfg.Market.Folder))
	}
	a.store = m
	return nil
}

// spotProvider chains the static quotes of the configuration with the HTTP
// source. It returns nil when neither is configured.
func (a *app) spotProvider() (market.SpotProvider, error) {
	var chain spot.Chain
	if len(a.cfg.Spot.Static) > 0 {
		chain = append(chain, spot.Static{Prices: a.cfg.Spot.Static, AsOf: time.Now()})
	}
	if a.cfg.Spot.URL != "" {
		h, err := spot.NewHTTP(spot.HTTPConfig{
			URL:       a.cfg.Spot.URL,
			PricePath: a.cfg.Spot.PricePath,
			TimePath:  a.cfg.Spot.TimePath,
			APIKey:    a.cfg.Spot.APIKey,
			Timeout:   a.cfg.Spot.Timeout,
			Retries:   a.cfg.Spot.Retries,
			CacheDir:  a.cfg.Spot.CacheDir,
		}, a.log)
		if err != nil {
			return nil, err
		}
		chain = append(chain, spot.NewCached(h, a.cfg.Spot.Staleness, a.log))
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return chain, nil
}

// transactions decodes the configured ledger.
func (a *app) transactions() ([]equity.Transaction, error) {
	return equity.DecodeLedgerFile(a.cfg.Ledger)
}

// liveMetrics computes the dashboard metrics of the ledger.
func (a *app) liveMetrics(ctx context.Context) (*equity.LiveMetrics, error) {
	txs, err := a.transactions()
	if err != nil {
		return nil, err
	}
	return a.agg.Compute(ctx, a.agg.Positions(txs), txs), nil
}

// Close releases the data sources and flushes the logger.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("close failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// openApp is newApp reporting errors the way commands do.
func openApp() (*app, subcommands.ExitStatus) {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return a, subcommands.ExitSuccess
}

// printMarkdown renders md for the terminal, or prints it raw if it cannot.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
