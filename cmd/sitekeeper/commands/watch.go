package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	"git.home.luguber.info/inful/sitekeeper/internal/logfields"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
	"git.home.luguber.info/inful/sitekeeper/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce    time.Duration `help:"Quiet period after the last change before regenerating" default:"500ms"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9090)"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if w.MetricsAddr != "" {
		reg := prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		stop := serveMetrics(g, w.MetricsAddr, reg)
		defer stop()
	}

	return RunWatch(ctx, g, cfg, rec, w.Debounce)
}

// RunWatch regenerates once, then on every settled change under the posts
// directory until ctx is done.
func RunWatch(ctx context.Context, g *Global, cfg *config.Config, rec metrics.Recorder, debounce time.Duration) error {
	regenerate := func(ctx context.Context) error {
		return RunAll(ctx, g, cfg, rec)
	}

	watcher, err := watch.New(cfg.Posts.Directory, cfg.Posts.Extension, regenerate,
		watch.WithDebounce(debounce),
		watch.WithIgnore(cfg.Posts.IndexFile, cfg.Sitemap.Output),
		watch.WithLogger(g.Logger),
	)
	if err != nil {
		return err
	}

	if err := regenerate(ctx); err != nil {
		g.Logger.Error("Initial regeneration failed", logfields.Error(err))
	}

	_, _ = fmt.Fprintf(g.Stdout, "Watching %s for changes (Ctrl+C to stop)\n", cfg.Posts.Directory)
	if err := watcher.Run(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(g.Stdout, "Watch stopped")
	return nil
}

// serveMetrics starts the metrics endpoint and returns a function that shuts it down.
func serveMetrics(g *Global, addr string, reg *prom.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		g.Logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.Logger.Error("Metrics server failed", logfields.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			g.Logger.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
}
