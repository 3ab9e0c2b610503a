package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pzaremba/oswatch/collector"
	"github.com/pzaremba/oswatch/config"
	"github.com/pzaremba/oswatch/internal/emitter"
	"github.com/pzaremba/oswatch/providers/openstack"
	"github.com/pzaremba/oswatch/storage"
	"github.com/pzaremba/oswatch/telemetry"
)

// collectionRun holds everything one collection pass needs.
type collectionRun struct {
	cfg       *config.Config
	logger    *telemetry.Logger
	store     *storage.SnapshotStore
	emit      emitter.Emitter
	holder    any
	collector *collector.Collector
	shutdown  func(context.Context) error
}

// kindResult summarizes one kind's collection outcome.
type kindResult struct {
	Kind     string
	Records  int
	Revision int64
	Err      error
}

// newCollectionRun wires config, telemetry, clients, storage and
// emitters for a collection pass.
func newCollectionRun(ctx context.Context, emitStdout bool) (*collectionRun, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := telemetry.NewLogger("oswatch")

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "oswatch",
		ServiceVersion: version,
		OTELEndpoint:   cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}

	holder, err := openstack.NewClientProvider(ctx, cfg.OpenStack, cfg.Region, logger.Logger)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	if err := os.MkdirAll(cfg.Storage.Dir, 0o750); err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	store, err := storage.NewSnapshotStore(cfg.Storage.Dir)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	var emitters []emitter.Emitter
	if emitStdout {
		emitters = append(emitters, emitter.NewWriterEmitter(os.Stdout))
	}
	if cfg.Emitter.Endpoint != "" {
		emitters = append(emitters, emitter.NewHTTPEmitter(cfg.Emitter.Endpoint, cfg.Emitter.Timeout.Std()))
	}

	return &collectionRun{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		emit:      emitter.NewMultiEmitter(emitters...),
		holder:    holder,
		collector: collector.New(logger.Logger),
		shutdown:  shutdown,
	}, nil
}

// runOnce collects every configured kind. A failed kind aborts that
// kind only; remaining kinds still run and the errors are joined.
func (r *collectionRun) runOnce(ctx context.Context) ([]kindResult, error) {
	var results []kindResult
	var errs []error

	collect := func() error {
		for _, kind := range r.cfg.Kinds() {
			records, err := r.collector.Extract(ctx, r.holder, kind)
			if err != nil {
				r.logger.WithContext(ctx).Error().
					Err(err).
					Str("kind", string(kind)).
					Msg("collection failed")
				results = append(results, kindResult{Kind: string(kind), Err: err})
				errs = append(errs, err)
				continue
			}

			rev, err := r.store.Save(kind, records)
			if err != nil {
				results = append(results, kindResult{Kind: string(kind), Err: err})
				errs = append(errs, err)
				continue
			}
			telemetry.SnapshotWrites.Add(ctx, 1)
			telemetry.SnapshotRevision.Record(ctx, rev)

			if err := r.emit.Emit(ctx, emitter.Report{
				Kind:        kind,
				Region:      r.cfg.Region,
				Revision:    rev,
				CollectedAt: time.Now().UTC(),
				Records:     records,
			}); err != nil {
				results = append(results, kindResult{Kind: string(kind), Records: len(records), Revision: rev, Err: err})
				errs = append(errs, err)
				continue
			}

			results = append(results, kindResult{Kind: string(kind), Records: len(records), Revision: rev})
		}
		return nil
	}

	if proxy := r.cfg.Collector.Proxy; proxy != "" {
		_ = openstack.WithProxy(r.logger.Logger, proxy, collect)
	} else {
		_ = collect()
	}

	return results, errors.Join(errs...)
}

// close releases the run's resources.
func (r *collectionRun) close(ctx context.Context) {
	_ = r.emit.Close()
	_ = r.store.Close()
	if r.shutdown != nil {
		_ = r.shutdown(ctx)
	}
}
