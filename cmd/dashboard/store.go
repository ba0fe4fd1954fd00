package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/local"
	cfnats "github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/nats"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/natskv"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/postgres"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/s3"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/adapter/sqlite"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/database"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/port/slot"
	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/resilience"
)

// storeDeps is the opened entity store and what it needs on shutdown.
type storeDeps struct {
	store   database.Store
	breaker *resilience.Breaker // remote mode only
	close   func()
}

// openStore opens the entity store selected by cfg.Store.Mode. queue may be
// nil unless the natskv slot is selected.
func openStore(ctx context.Context, cfg *config.Config, queue *cfnats.Queue, migrate bool) (*storeDeps, error) {
	if cfg.Store.Mode == config.StoreRemote {
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		slog.Info("postgres connected")

		if migrate {
			if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migrations: %w", err)
			}
			slog.Info("migrations applied")
		}

		breaker := resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout).
			OnStateChange(func(from, to resilience.State) {
				slog.Warn("store circuit breaker", "from", from, "to", to)
			})
		return &storeDeps{
			store:   postgres.NewStore(pool, breaker),
			breaker: breaker,
			close:   pool.Close,
		}, nil
	}

	slots, err := openSlots(ctx, cfg, queue)
	if err != nil {
		return nil, err
	}
	st, err := local.Open(ctx, slots)
	if err != nil {
		_ = slots.Close()
		return nil, fmt.Errorf("local store: %w", err)
	}
	slog.Info("local store opened", "slot", cfg.Store.Slot)
	return &storeDeps{
		store: st,
		close: func() {
			if err := st.Close(); err != nil {
				slog.Warn("close local store", "error", err)
			}
		},
	}, nil
}

func openSlots(ctx context.Context, cfg *config.Config, queue *cfnats.Queue) (slot.Store, error) {
	switch cfg.Store.Slot {
	case config.SlotNATSKV:
		if queue == nil {
			return nil, errors.New("natskv slot requires a NATS connection")
		}
		kv, err := queue.KeyValue(ctx, cfg.NATS.SlotBucket, 0)
		if err != nil {
			return nil, err
		}
		return natskv.NewSlots(kv), nil
	case config.SlotS3:
		slots, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("s3 slot: %w", err)
		}
		return slots, nil
	default:
		slots, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite slot: %w", err)
		}
		return slots, nil
	}
}

// connectNATS connects when a URL is configured; nil otherwise.
func connectNATS(ctx context.Context, cfg *config.Config) (*cfnats.Queue, error) {
	if cfg.NATS.URL == "" {
		return nil, nil
	}
	return cfnats.Connect(ctx, cfg.NATS.URL)
}
