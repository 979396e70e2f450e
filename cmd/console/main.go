package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/leonardcser/adminkit/internal/api"
	"github.com/leonardcser/adminkit/internal/cache"
	"github.com/leonardcser/adminkit/internal/config"
	"github.com/leonardcser/adminkit/internal/console"
	"github.com/leonardcser/adminkit/internal/logger"
	"github.com/leonardcser/adminkit/internal/session"
	"github.com/leonardcser/adminkit/internal/tools"
	"github.com/leonardcser/adminkit/internal/upload"
)

const storeBinary = "adminkit-store"

func main() {
	if err := logger.InitFromEnv(); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Infof("Starting admin console")

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	kv := connectStore(cfg.StoreSocket)
	sess := session.New(session.NewCache(kv), session.Options{
		Key:           cfg.SessionKey,
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SweepInterval,
	})
	sess.OnChange(func(u session.User, ok bool) {
		if ok {
			logger.Infof("Signed in as %s", u.Name)
			return
		}
		logger.Infof("Signed out")
	})
	if u, ok := sess.Current(); ok {
		logger.Infof("Restored session for %s", u.Name)
	}

	client, err := api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithToken(sess.Token),
	)
	if err != nil {
		logger.Errorf("api client: %v", err)
		os.Exit(1)
	}
	logger.Infof("Using backend at %s", cfg.APIURL)

	s := server.NewMCPServer(
		"Admin Console",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)
	tools.Register(s, tools.Deps{
		Session: sess,
		Auth:    console.NewAuth(client),
		Console: console.New(client, upload.Limits{MaxBytes: cfg.UploadMaxBytes}),
	})
	logger.Infof("Registered console tools")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sess.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer stop()
		logger.Infof("Starting MCP server on stdio")
		return server.ServeStdio(s)
	})
	if err := g.Wait(); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

// connectStore returns a client for the store daemon, starting it when the
// socket is not answering. Without a daemon the session lives in memory and
// is lost on exit.
func connectStore(sock string) cache.KV {
	logger.Infof("Attempting to connect to store daemon at %s", sock)
	c, err := dialStore(sock)
	if err == nil {
		return c
	}
	logger.Warnf("Failed to connect to store daemon: %v, attempting to start daemon", err)
	if err := startStoreDaemon(); err != nil {
		logger.Errorf("Failed to start store daemon: %v", err)
		return fallbackStore()
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c, err := dialStore(sock); err == nil {
			logger.Infof("Store daemon started")
			return c
		}
		time.Sleep(200 * time.Millisecond)
	}
	logger.Errorf("Store daemon did not come up at %s", sock)
	return fallbackStore()
}

func fallbackStore() cache.KV {
	logger.Warnf("Keeping the session in memory only")
	return cache.NewMemory(cache.Options{})
}

func dialStore(sock string) (*cache.Client, error) {
	c := cache.NewClient(sock)
	if err := c.Ping(); err != nil {
		return nil, err
	}
	return c, nil
}

func startStoreDaemon() error {
	for _, path := range storeCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cmd := exec.Command(path)
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}

// storeCandidates lists where the daemon binary may live: next to this
// executable, on PATH, then in the working directory.
func storeCandidates() []string {
	var out []string
	if exe, err := os.Executable(); err == nil {
		out = append(out, filepath.Join(filepath.Dir(exe), storeBinary))
	}
	if p, err := exec.LookPath(storeBinary); err == nil {
		out = append(out, p)
	}
	return append(out, "./"+storeBinary)
}
