package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/odyssey-erp/ekonum/internal/app"
	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/internal/records"
	"github.com/odyssey-erp/ekonum/internal/records/postgres"
	"github.com/odyssey-erp/ekonum/internal/records/sqlite"
)

func newImportCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace every record set with a JSON fixture",
		Long:  "Import reads a JSON document keyed by offers, contracts, payments, fixed_costs, assets, loans and actuals, replaces the store contents and invalidates cached forecasts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			snap, err := records.DecodeFixture(f)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			store, closeStore, err := o.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			if err := store.Import(cmd.Context(), snap); err != nil {
				return err
			}

			if client, err := o.connectRedis(cmd.Context()); err != nil {
				o.logger.Warn("cache not invalidated", slog.Any("error", err))
			} else if client != nil {
				defer client.Close()
				if _, err := forecast.NewCache(client, 0).Bump(cmd.Context()); err != nil {
					o.logger.Warn("cache not invalidated", slog.Any("error", err))
				}
			}

			fmt.Fprintf(o.out, "imported %d offers, %d contracts, %d payment events, %d fixed costs, %d assets, %d loans, %d actual entries\n",
				len(snap.Offers), len(snap.Contracts), len(snap.Payments), len(snap.Fixed), len(snap.Assets), len(snap.Loans), len(snap.Actuals))
			return nil
		},
	}
}

func newMigrateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply record store schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			switch o.store {
			case app.StorePostgres:
				err = postgres.Migrate(o.dsn)
			case app.StoreSQLite:
				var store *sqlite.Store
				if store, err = sqlite.Open(o.dsn); err == nil {
					err = store.Close()
				}
			default:
				err = errors.New("unsupported store " + o.store)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(o.out, "%s schema up to date\n", o.store)
			return nil
		},
	}
}
