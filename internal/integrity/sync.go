package integrity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/pipeline/internal/dag"
	"github.com/aristath/pipeline/internal/events"
)

// DefaultSyncWorkers bounds how many metadata fetches run concurrently.
// Bounding avoids overwhelming remote storage backends when a DAG declares
// many outputs.
const DefaultSyncWorkers = 64

// SyncConfig configures a remote metadata sync run.
type SyncConfig struct {
	Workers int         // Max concurrent fetches (default DefaultSyncWorkers)
	Bus     *events.Bus // Optional progress bus (nil disables publishing)
}

// SyncRemoteMetadata refreshes the remote metadata of every remote-capable
// product in the DAG, in place, using a bounded worker pool.
//
// Products without a remote client are skipped; if none remain, the call
// returns immediately without starting any worker. The first observed fetch
// failure is returned as a *RemoteFetchError naming the product, and the pool
// context is cancelled so in-flight workers can stop cooperatively. Which
// failure is observed first depends on completion order and is therefore
// non-deterministic when several products fail at once.
//
// No product-level locking is needed: CheckDuplicated guarantees distinct
// tasks never share a product instance, so each metadata field is written by
// exactly one worker.
func SyncRemoteMetadata(ctx context.Context, d *dag.DAG, cfg SyncConfig) error {
	products, err := d.Products()
	if err != nil {
		return err
	}

	files := Flatten(products, true)
	if len(files) == 0 {
		return nil
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultSyncWorkers
	}

	run := uuid.NewString()
	started := time.Now()
	if cfg.Bus != nil {
		cfg.Bus.Publish(events.TopicSync, events.SyncStartedEvent{
			Run:       run,
			Products:  len(files),
			Timestamp: started,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, f := range files {
		g.Go(func() error {
			// Workers queued behind the first failure skip their fetch.
			if err := gctx.Err(); err != nil {
				return err
			}

			if err := f.RefreshMetadata(gctx); err != nil {
				if cfg.Bus != nil {
					cfg.Bus.Publish(events.TopicSync, events.FetchFailedEvent{
						Run:       run,
						Product:   f.String(),
						Err:       err,
						Timestamp: time.Now(),
					})
				}
				return &RemoteFetchError{Product: f, Err: err}
			}

			if cfg.Bus != nil {
				cfg.Bus.Publish(events.TopicSync, events.ProductRefreshedEvent{
					Run:       run,
					Product:   f.String(),
					Metadata:  f.Metadata(),
					Timestamp: time.Now(),
				})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if cfg.Bus != nil {
		cfg.Bus.Publish(events.TopicSync, events.SyncCompletedEvent{
			Run:       run,
			Products:  len(files),
			Duration:  time.Since(started),
			Timestamp: time.Now(),
		})
	}
	return nil
}
