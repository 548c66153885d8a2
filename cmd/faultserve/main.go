package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	faultserve "github.com/jvb127/faultserve"
	"github.com/jvb127/faultserve/config"
	"github.com/jvb127/faultserve/engine"
	"github.com/jvb127/faultserve/entity"
	"github.com/jvb127/faultserve/expiration"
	"github.com/jvb127/faultserve/metrics"
	"github.com/jvb127/faultserve/origin"
	"github.com/jvb127/faultserve/server"
	"github.com/jvb127/faultserve/sharedcache"
	"github.com/jvb127/faultserve/writepolicy"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	if err := run(logger); err != nil {
		level.Error(logger).Log("msg", "server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	var originStore origin.Store
	if cfg.OriginURL != "" {
		originStore, err = origin.NewHTTPStore(cfg.OriginURL, cfg.FetchTimeout)
	} else {
		originStore, err = origin.NewFSStore(cfg.OriginDir)
	}
	if err != nil {
		return err
	}

	var shared sharedcache.Store
	if cfg.CacheDB != "" {
		shared, err = sharedcache.OpenBolt(cfg.CacheDB)
		if err != nil {
			return err
		}
	} else {
		level.Warn(logger).Log("msg", "no cache db configured, shared tier is process-local")
		shared = sharedcache.NewMemoryStore()
	}
	defer shared.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	eng := engine.New(&expiration.ExpireAfterWrite{TTL: cfg.CacheTTL})
	writeback := writepolicy.NewAsyncWriteBack(shared, eng, cfg.WriteBackBuffer, logger, m)

	loader, err := faultserve.NewTieredLoader(&faultserve.LoaderConfig{
		Origin:       originStore,
		DatasetPath:  cfg.DatasetPath,
		Shared:       shared,
		Engine:       eng,
		WriteBack:    writeback,
		FetchTimeout: cfg.FetchTimeout,
		MaxResidency: cfg.MaxResidency,
	}, m, logger)
	if err != nil {
		return err
	}
	defer loader.Close()

	entities := entity.NewStore(originStore, cfg.EntityPrefix, m)

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(loader, entities, logger, m).
			Routes(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		level.Info(logger).Log("msg", "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
