package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leonardcser/adminkit/internal/cache"
	"github.com/leonardcser/adminkit/internal/config"
	"github.com/leonardcser/adminkit/internal/logger"
)

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(cfg.StoreSocket), 0o755)
	_ = os.MkdirAll(filepath.Dir(cfg.StoreDB), 0o755)
	_ = os.Remove(cfg.StoreSocket)

	l, err := net.Listen("unix", cfg.StoreSocket)
	if err != nil {
		logger.Errorf("listen %s: %v", cfg.StoreSocket, err)
		os.Exit(1)
	}
	_ = os.Chmod(cfg.StoreSocket, 0o600)

	store, err := cache.Open(cfg.StoreDB, cache.Options{Bucket: cfg.StoreBucket})
	if err != nil {
		_ = l.Close()
		logger.Errorf("open %s: %v", cfg.StoreDB, err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Infof("Store daemon serving %s on %s", cfg.StoreDB, cfg.StoreSocket)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return cache.Serve(ctx, l, store) })
	g.Go(func() error {
		sweep(ctx, store, cfg.SweepInterval)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Errorf("store daemon: %v", err)
	}
	_ = os.Remove(cfg.StoreSocket)
}

// sweep drops expired entries every interval so abandoned keys do not
// linger until their next read.
func sweep(ctx context.Context, store *cache.Store, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := store.Sweep()
			if err != nil {
				logger.Warnf("sweep: %v", err)
				continue
			}
			if n > 0 {
				logger.Infof("sweep removed %d expired entries", n)
			}
		}
	}
}
