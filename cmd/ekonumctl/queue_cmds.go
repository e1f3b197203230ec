package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/ekonum/internal/app"
	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/jobs"
)

var errNoRedis = errors.New("no redis configured (use --redis or [cache] redis_addr)")

func newCacheCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Forecast cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "bump",
		Short: "Invalidate every cached forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := o.connectRedis(cmd.Context())
			if err != nil {
				return err
			}
			if client == nil {
				return errNoRedis
			}
			defer client.Close()

			version, err := forecast.NewCache(client, 0).Bump(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(o.out, "forecast cache version %d\n", version)
			return nil
		},
	})
	return cmd
}

func newWarmupCmd(o *options) *cobra.Command {
	var invalidate bool
	cmd := &cobra.Command{
		Use:   "warmup",
		Short: "Enqueue a forecast warmup job for the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if o.redisAddr == "" {
				return errNoRedis
			}
			redisOpt, err := app.QueueRedisOpt(o.appConfig())
			if err != nil {
				return err
			}
			client := jobs.NewClient(redisOpt, o.queue)
			defer client.Close()

			payload := jobs.WarmupPayload{Invalidate: invalidate}
			if o.startYear != 0 {
				payload.Windows = []jobs.WarmupWindow{{StartYear: o.startYear, Years: o.years}}
			}
			if cmd.Flags().Changed("initial-cash") {
				cash := o.initialCash
				payload.InitialCash = &cash
			}
			info, err := client.EnqueueWarmup(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(o.out, "enqueued %s on %s\n", info.ID, info.Queue)
			return nil
		},
	}
	cmd.Flags().IntVar(&o.startYear, "start-year", 0, "fiscal start year; empty uses the worker windows")
	cmd.Flags().IntVar(&o.years, "years", 3, "number of fiscal years (1-10)")
	cmd.Flags().Float64Var(&o.initialCash, "initial-cash", 0, "opening cash balance")
	cmd.Flags().BoolVar(&invalidate, "invalidate", false, "bump the cache version before recomputing")
	return cmd
}
