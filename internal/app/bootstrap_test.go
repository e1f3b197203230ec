package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/ekonum/internal/forecast"
	"github.com/odyssey-erp/ekonum/internal/records"
)

func TestOpenStoreSQLite(t *testing.T) {
	cfg := &Config{StoreDriver: StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "ekonum.db")}
	store, closeStore, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(closeStore)

	snap := records.Snapshot{Fixed: []records.FixedCost{{ID: 1, Name: "rent", MonthlyAmount: 900, StartDate: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC)}}}
	require.NoError(t, store.Import(context.Background(), snap))

	svc := NewForecastService(store, nil, cfg, nil, nil)
	got, err := svc.ComputeProjection(context.Background(), forecast.ProjectionRequest{StartYear: 2024, Years: 1})
	require.NoError(t, err)
	assert.Equal(t, 900.0, got.Periods[0].FixedCosts)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, _, err := OpenStore(context.Background(), &Config{StoreDriver: "mysql"})
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := miniredis.RunT(t)

	client := ConnectRedis(context.Background(), &Config{RedisAddr: srv.Addr()}, logger)
	require.NotNil(t, client)
	_ = client.Close()

	srv.Close()
	assert.Nil(t, ConnectRedis(context.Background(), &Config{RedisAddr: srv.Addr()}, logger))
}

func TestQueueRedisOpt(t *testing.T) {
	opt, err := QueueRedisOpt(&Config{RedisAddr: "redis://:pw@queue:6379/3"})
	require.NoError(t, err)
	assert.Equal(t, "queue:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 3, opt.DB)
}
