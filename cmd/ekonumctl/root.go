package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/ekonum/internal/app"
	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/internal/platform/cache"
)

// options carries flag values shared by every subcommand.
type options struct {
	configPath  string
	store       string
	dsn         string
	redisAddr   string
	queue       string
	format      string
	startYear   int
	years       int
	initialCash float64
	verbose     bool

	out    io.Writer
	logger *slog.Logger
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           "ekonumctl",
		Short:         "Fiscal projections and budget-vs-actual from the terminal",
		Long:          "Compute monthly P&L and cash projections over fiscal windows starting in October, compare them to recorded actuals and manage the record store.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath(), "TOML config file")
	flags.StringVar(&opts.store, "store", "", "record store driver (sqlite or postgres)")
	flags.StringVar(&opts.dsn, "dsn", "", "postgres DSN or sqlite file path")
	flags.StringVar(&opts.redisAddr, "redis", "", "redis address or URL for the forecast cache")
	flags.StringVarP(&opts.format, "format", "f", formatTable, "output format: table, csv or json")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newProjectCmd(opts),
		newVarianceCmd(opts),
		newScheduleCmd(opts),
		newImportCmd(opts),
		newMigrateCmd(opts),
		newCacheCmd(opts),
		newWarmupCmd(opts),
	)
	return root
}

// resolve layers flags over the config file over defaults.
func (o *options) resolve(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := loadFileConfig(o.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if !flags.Changed("store") {
		o.store = cfg.Store.Driver
	}
	if !flags.Changed("dsn") {
		o.dsn = cfg.Store.DSN
	}
	if !flags.Changed("redis") {
		o.redisAddr = cfg.Cache.RedisAddr
	}
	if o.queue == "" {
		o.queue = cfg.Cache.Queue
	}
	if f := flags.Lookup("years"); f != nil && !f.Changed && cfg.Forecast.Years > 0 {
		o.years = cfg.Forecast.Years
	}
	if f := flags.Lookup("initial-cash"); f != nil && !f.Changed {
		o.initialCash = cfg.Forecast.InitialCash
	}
	if err := checkFormat(o.format); err != nil {
		return err
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

func (o *options) appConfig() *app.Config {
	return &app.Config{
		StoreDriver: o.store,
		PGDSN:       o.dsn,
		PGMaxConns:  4,
		SQLitePath:  o.dsn,
		RedisAddr:   o.redisAddr,
		WorkerQueue: o.queue,
	}
}

func (o *options) openStore(ctx context.Context) (app.Store, func(), error) {
	store, closeStore, err := app.OpenStore(ctx, o.appConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", o.store, err)
	}
	return store, closeStore, nil
}

// connectRedis connects when an address is configured. A nil client means the
// command runs without cache.
func (o *options) connectRedis(ctx context.Context) (*redis.Client, error) {
	if o.redisAddr == "" {
		return nil, nil
	}
	return cache.New(ctx, o.redisAddr)
}

// withService runs fn against a forecast service over the configured store.
func (o *options) withService(ctx context.Context, fn func(*forecast.Service) error) error {
	store, closeStore, err := o.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := o.connectRedis(ctx)
	if err != nil {
		o.logger.Warn("redis unavailable, computing without cache", slog.Any("error", err))
	}
	if client != nil {
		defer client.Close()
	}
	return fn(forecast.NewService(store, forecast.NewCache(client, 0), o.logger))
}

func addWindowFlags(cmd *cobra.Command, o *options) {
	cmd.Flags().IntVar(&o.startYear, "start-year", 0, "fiscal start year (window opens in October of this year)")
	cmd.Flags().IntVar(&o.years, "years", 3, "number of fiscal years (1-10)")
	cmd.Flags().Float64Var(&o.initialCash, "initial-cash", 0, "opening cash balance")
	_ = cmd.MarkFlagRequired("start-year")
}

func (o *options) request() forecast.ProjectionRequest {
	return forecast.ProjectionRequest{StartYear: o.startYear, Years: o.years, InitialCash: o.initialCash}
}
