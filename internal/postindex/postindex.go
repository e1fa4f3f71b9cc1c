// Package postindex builds the JSON index of blog posts, newest first.
package postindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/logfields"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
	"git.home.luguber.info/inful/sitekeeper/internal/sortdate"
)

// Post is one discovered post file with its resolved sort date.
type Post struct {
	Name     string
	Path     string
	SortDate time.Time
	Source   sortdate.Source
}

// Result describes a successful index run.
type Result struct {
	IndexPath string
	Count     int
	Posts     []Post
}

// Indexer scans the posts directory and writes the index file.
type Indexer struct {
	cfg      *config.Config
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithRecorder reports run metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(ix *Indexer) { ix.recorder = r }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(ix *Indexer) { ix.logger = l }
}

// New creates an Indexer for cfg.
func New(cfg *config.Config, opts ...Option) *Indexer {
	ix := &Indexer{
		cfg:      cfg,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Run discovers posts, orders them and overwrites the index file.
// On any error no index file is written.
func (ix *Indexer) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res, err := ix.run(ctx)
	ix.recorder.ObserveStageDuration(metrics.StageIndex, time.Since(start))
	switch {
	case err == nil:
		ix.recorder.IncStageResult(metrics.StageIndex, metrics.ResultSuccess)
		ix.recorder.SetPostsIndexed(res.Count)
	case errors.Is(err, context.Canceled):
		ix.recorder.IncStageResult(metrics.StageIndex, metrics.ResultCanceled)
	default:
		ix.recorder.IncStageResult(metrics.StageIndex, metrics.ResultFatal)
	}
	return res, err
}

func (ix *Indexer) run(ctx context.Context) (Result, error) {
	dir := ix.cfg.Posts.Directory
	posts, err := discover(ctx, ix.logger, dir, ix.cfg.Posts.Extension)
	if err != nil {
		return Result{}, err
	}
	if len(posts) == 0 {
		return Result{}, foundation.ValidationError("no " + ix.cfg.Posts.Extension + " files in posts directory " + dir).
			WithContext("path", dir).
			Build()
	}

	Order(posts)
	for _, p := range posts {
		ix.recorder.IncDateSource(p.Source.String())
		ix.logger.Debug("Resolved sort date",
			logfields.File(p.Name),
			logfields.SortDate(p.SortDate.Format(sortdate.DateLayout)),
			logfields.DateSource(p.Source.String()))
	}

	data, err := Encode(Names(posts))
	if err != nil {
		return Result{}, foundation.WrapError(err, foundation.CategoryInternal, "failed to encode index").Build()
	}

	indexPath := ix.cfg.Posts.IndexFile
	if err := writeFile(indexPath, data); err != nil {
		return Result{}, err
	}

	ix.logger.Info("Index written", logfields.Path(indexPath), logfields.Count(len(posts)))
	return Result{IndexPath: indexPath, Count: len(posts), Posts: posts}, nil
}

// Discover lists the regular files in dir whose extension matches ext
// (case-insensitively) and resolves each one's sort date. Posts come back
// in directory listing order, which is sorted by filename. A file named
// just the extension, such as ".md", has no extension and is skipped.
func Discover(ctx context.Context, dir, ext string) ([]Post, error) {
	return discover(ctx, slog.Default(), dir, ext)
}

func discover(ctx context.Context, logger *slog.Logger, dir, ext string) ([]Post, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, foundation.WrapError(err, foundation.CategoryNotFound, "posts directory not found: "+dir).
			WithContext("path", dir).
			Fatal().
			Build()
	}
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryFileSystem, "failed to stat posts directory").
			WithContext("path", dir).
			Fatal().
			Build()
	}
	if !info.IsDir() {
		return nil, foundation.NotFoundError("posts directory is not a directory: " + dir).
			WithContext("path", dir).
			Build()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryFileSystem, "failed to read posts directory").
			WithContext("path", dir).
			Fatal().
			Build()
	}

	var posts []Post
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !hasExtension(entry.Name(), ext) {
			continue
		}
		posts = append(posts, resolvePost(logger, dir, entry))
	}
	return posts, nil
}

func hasExtension(name, ext string) bool {
	return len(name) > len(ext) && strings.EqualFold(filepath.Ext(name), ext)
}

// resolvePost never fails: unreadable files fall through to later attempts.
func resolvePost(logger *slog.Logger, dir string, entry fs.DirEntry) Post {
	path := filepath.Join(dir, entry.Name())
	in := sortdate.Input{Name: entry.Name()}

	// #nosec G304 - path comes from listing the configured posts directory
	in.Content, in.ReadErr = os.ReadFile(path)
	if in.ReadErr != nil {
		logger.Debug("Post unreadable, skipping header date", logfields.File(entry.Name()), logfields.Error(in.ReadErr))
	}
	if info, err := os.Stat(path); err == nil {
		in.ModTime = info.ModTime()
	} else {
		logger.Debug("Post has no modification time", logfields.File(entry.Name()), logfields.Error(err))
	}

	resolved := sortdate.Resolve(in)
	return Post{
		Name:     entry.Name(),
		Path:     path,
		SortDate: resolved.Date,
		Source:   resolved.Source,
	}
}

// Order sorts posts newest first. Posts sharing a sort date keep their
// relative order.
func Order(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].SortDate.After(posts[j].SortDate)
	})
}

// Names returns the filenames of posts in order.
func Names(posts []Post) []string {
	names := make([]string, 0, len(posts))
	for _, p := range posts {
		names = append(names, p.Name)
	}
	return names
}

// Encode renders names as a JSON array indented by two spaces.
func Encode(names []string) ([]byte, error) {
	if names == nil {
		names = []string{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(names); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to create index directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to write index file").
			WithContext("path", path).
			Build()
	}
	return nil
}
