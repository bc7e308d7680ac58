// Command pipecheck runs the pre-execution integrity gates against a pipeline
// manifest: duplicate product detection, optional remote metadata sync, and
// optional path-prefix extraction.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/pipeline/internal/config"
	"github.com/aristath/pipeline/internal/dag"
	"github.com/aristath/pipeline/internal/events"
	"github.com/aristath/pipeline/internal/integrity"
	"github.com/aristath/pipeline/internal/metadata"
	"github.com/aristath/pipeline/internal/pipeline"
	"github.com/aristath/pipeline/internal/product"
	"github.com/aristath/pipeline/internal/remote"
)

func main() {
	// Signal-aware context so an interrupted sync cancels in-flight fetches.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pipecheck", flag.ContinueOnError)
	var (
		manifestPath = fs.String("pipeline", "pipeline.yaml", "path to the pipeline manifest")
		configPath   = fs.String("config", "", "project config file (default: merged ~/.pipeline and .pipeline)")
		baseDir      = fs.String("base-dir", "", "base directory for prefix extraction (default: current directory)")
		doSync       = fs.Bool("sync", false, "refresh remote metadata for remote-backed products")
		doPrefixes   = fs.Bool("prefixes", false, "print the directory prefixes the pipeline writes to")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	if *configPath != "" {
		// The loader tolerates missing files at the conventional paths,
		// but a path the user typed must exist.
		if _, statErr := os.Stat(*configPath); statErr != nil {
			return fmt.Errorf("config file %s: %w", *configPath, statErr)
		}
		cfg, err = config.Load("", *configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	var client product.Client
	if *doSync {
		if cfg.Storage.Bucket == "" {
			return fmt.Errorf("sync requested but no storage bucket configured")
		}
		gcs, err := remote.NewGCSClient(ctx, cfg.Storage.Bucket, cfg.Storage.CredentialsFile)
		if err != nil {
			return err
		}
		defer gcs.Close()
		client = remote.NewRetryingClient(cfg.Storage.Bucket, gcs, retryConfig(cfg.Retry))
	}

	var backend product.MetadataBackend
	if *doSync && cfg.Metadata.Path != "" {
		store, err := metadata.Open(ctx, cfg.Metadata.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		backend = store
	}

	m, err := pipeline.Load(*manifestPath)
	if err != nil {
		return err
	}
	d, err := m.Build(pipeline.BuildOptions{Client: client, Backend: backend})
	if err != nil {
		return err
	}

	// The correctness gate always runs; sync relies on its guarantee that
	// no two tasks share a product instance.
	if err := integrity.CheckDuplicated(d); err != nil {
		return err
	}
	fmt.Fprintf(out, "products: unique across %d tasks\n", d.Len())

	if *doSync {
		if err := syncWithProgress(ctx, d, cfg); err != nil {
			return err
		}
		fmt.Fprintln(out, "remote metadata: synced")
	}

	if *doPrefixes {
		prefixes, err := integrity.ExtractPrefixes(d, *baseDir)
		if err != nil {
			return err
		}
		for _, p := range prefixes {
			fmt.Fprintln(out, p)
		}
	}

	return nil
}

// syncWithProgress runs the metadata sync with a bus subscriber logging each
// refresh. The bus is closed after Wait so the drain goroutine terminates.
func syncWithProgress(ctx context.Context, d *dag.DAG, cfg *config.Config) error {
	bus := events.NewBus()
	defer bus.Close()

	ch := bus.Subscribe(events.TopicSync, 0)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			switch e := ev.(type) {
			case events.SyncStartedEvent:
				log.Printf("sync %s: refreshing %d products", e.Run, e.Products)
			case events.ProductRefreshedEvent:
				log.Printf("sync %s: refreshed %s (exists=%v)", e.Run, e.Product, e.Metadata.Exists)
			case events.FetchFailedEvent:
				log.Printf("sync %s: fetch failed for %s: %v", e.Run, e.Product, e.Err)
			case events.SyncCompletedEvent:
				log.Printf("sync %s: done in %s", e.Run, e.Duration)
			}
		}
	}()

	err := integrity.SyncRemoteMetadata(ctx, d, integrity.SyncConfig{
		Workers: cfg.Sync.Workers,
		Bus:     bus,
	})
	bus.Close()
	<-done
	return err
}

func retryConfig(rc config.RetryConfig) remote.RetryConfig {
	return remote.RetryConfig{
		InitialInterval:     time.Duration(rc.InitialIntervalMS) * time.Millisecond,
		MaxInterval:         time.Duration(rc.MaxIntervalMS) * time.Millisecond,
		MaxElapsedTime:      time.Duration(rc.MaxElapsedTimeMS) * time.Millisecond,
		Multiplier:          rc.Multiplier,
		RandomizationFactor: rc.RandomizationFactor,
	}
}
