package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
	"git.home.luguber.info/inful/sitekeeper/internal/sitemap"
)

// SearchConsoleURL is where the sitemap gets submitted after deploy.
const SearchConsoleURL = "https://search.google.com/search-console"

// SitemapCmd implements the 'sitemap' command.
type SitemapCmd struct {
	Index  string `name:"index" help:"Index file path (overrides posts.index_file)"`
	Output string `short:"o" name:"output" help:"Sitemap output path (overrides sitemap.output)"`
}

func (s *SitemapCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Index != "" {
		cfg.Posts.IndexFile = s.Index
	}
	if s.Output != "" {
		cfg.Sitemap.Output = s.Output
	}
	return RunSitemap(ctx, g, cfg, metrics.NoopRecorder{})
}

// RunSitemap writes the sitemap and prints a summary with the follow-up steps.
func RunSitemap(ctx context.Context, g *Global, cfg *config.Config, rec metrics.Recorder) error {
	sum, err := sitemap.New(cfg,
		sitemap.WithClock(g.Clock),
		sitemap.WithRecorder(rec),
		sitemap.WithLogger(g.Logger),
	).Run(ctx)
	if err != nil {
		return err
	}

	out := g.Stdout
	_, _ = fmt.Fprintf(out, "Sitemap generated: %s\n", sum.Path)
	_, _ = fmt.Fprintf(out, "Total URLs: %d\n", sum.Total)
	_, _ = fmt.Fprintf(out, "  - Main pages: %d\n", sum.MainPages)
	_, _ = fmt.Fprintf(out, "  - Blog stories: %d\n", sum.Posts)
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Next steps:")
	_, _ = fmt.Fprintf(out, "  1. Commit and push %s\n", sum.Path)
	_, _ = fmt.Fprintln(out, "  2. Wait for the site to redeploy")
	_, _ = fmt.Fprintf(out, "  3. Open Google Search Console: %s\n", SearchConsoleURL)
	_, _ = fmt.Fprintf(out, "  4. Submit sitemap URL: %s/%s\n", cfg.Site.Domain, filepath.Base(sum.Path))
	return nil
}
