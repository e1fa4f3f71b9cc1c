package commands

import (
	"context"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
)

// AllCmd implements the 'all' command: index, then sitemap.
type AllCmd struct{}

func (a *AllCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	return RunAll(ctx, g, cfg, metrics.NoopRecorder{})
}

// RunAll runs the indexer and then the sitemap builder, stopping at the
// first failure.
func RunAll(ctx context.Context, g *Global, cfg *config.Config, rec metrics.Recorder) error {
	if err := RunIndex(ctx, g, cfg, rec); err != nil {
		return err
	}
	return RunSitemap(ctx, g, cfg, rec)
}
