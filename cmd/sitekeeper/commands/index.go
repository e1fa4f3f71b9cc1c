package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
	"git.home.luguber.info/inful/sitekeeper/internal/postindex"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Dir   string `name:"dir" help:"Posts directory (overrides posts.directory; the index moves with it unless --index is given)"`
	Index string `name:"index" help:"Index file path (overrides posts.index_file)"`
}

func (i *IndexCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	i.apply(cfg)
	return RunIndex(ctx, g, cfg, metrics.NoopRecorder{})
}

func (i *IndexCmd) apply(cfg *config.Config) {
	if i.Dir != "" {
		cfg.Posts.Directory = i.Dir
		cfg.Posts.IndexFile = filepath.Join(i.Dir, config.DefaultIndexFileName)
	}
	if i.Index != "" {
		cfg.Posts.IndexFile = i.Index
	}
}

// RunIndex rebuilds the index and reports the result on stdout.
func RunIndex(ctx context.Context, g *Global, cfg *config.Config, rec metrics.Recorder) error {
	res, err := postindex.New(cfg,
		postindex.WithRecorder(rec),
		postindex.WithLogger(g.Logger),
	).Run(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "Index %s updated with %d posts\n", res.IndexPath, res.Count)
	return nil
}
