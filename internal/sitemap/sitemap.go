// Package sitemap renders the XML sitemap from the post index.
package sitemap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/logfields"
	"git.home.luguber.info/inful/sitekeeper/internal/metrics"
)

// Namespace is the sitemap protocol namespace written on <urlset>.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// LastModLayout formats <lastmod>.
const LastModLayout = "2006-01-02"

// Entry is one <url> record. Fields render in declaration order.
type Entry struct {
	Loc        string
	LastMod    string
	ChangeFreq string
	Priority   string
}

// Document is an ordered sitemap: main pages, then posts.
type Document struct {
	Namespace string
	MainPages []Entry
	Posts     []Entry
}

// Len is the total number of URLs.
func (d Document) Len() int {
	return len(d.MainPages) + len(d.Posts)
}

// Summary describes a successful sitemap run.
type Summary struct {
	Path      string
	Total     int
	MainPages int
	Posts     int
}

// Builder reads the index file and writes the sitemap.
type Builder struct {
	cfg      *config.Config
	clock    clockwork.Clock
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock sets the clock that supplies the <lastmod> date.
func WithClock(c clockwork.Clock) Option {
	return func(b *Builder) { b.clock = c }
}

// WithRecorder reports run metrics to r.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		clock:    clockwork.NewRealClock(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run loads the index and overwrites the sitemap file.
// On any error no sitemap file is written.
func (b *Builder) Run(ctx context.Context) (Summary, error) {
	start := b.clock.Now()
	sum, err := b.run(ctx)
	b.recorder.ObserveStageDuration(metrics.StageSitemap, b.clock.Since(start))
	switch {
	case err == nil:
		b.recorder.IncStageResult(metrics.StageSitemap, metrics.ResultSuccess)
		b.recorder.SetSitemapURLs(sum.Total)
	case errors.Is(err, context.Canceled):
		b.recorder.IncStageResult(metrics.StageSitemap, metrics.ResultCanceled)
	default:
		b.recorder.IncStageResult(metrics.StageSitemap, metrics.ResultFatal)
	}
	return sum, err
}

func (b *Builder) run(ctx context.Context) (Summary, error) {
	posts, err := LoadIndex(b.cfg.Posts.IndexFile)
	if err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	doc := Build(b.cfg, posts, b.clock.Now())

	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return Summary{}, foundation.WrapError(err, foundation.CategoryInternal, "failed to render sitemap").Build()
	}

	path := b.cfg.Sitemap.Output
	if err := writeFile(path, buf.Bytes()); err != nil {
		return Summary{}, err
	}

	b.logger.Info("Sitemap written", logfields.Path(path), logfields.Count(doc.Len()))
	return Summary{
		Path:      path,
		Total:     doc.Len(),
		MainPages: len(doc.MainPages),
		Posts:     len(doc.Posts),
	}, nil
}

// LoadIndex reads the index file written by the indexer.
func LoadIndex(path string) ([]string, error) {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, foundation.WrapError(err, foundation.CategoryNotFound, "index file "+path+" not found; run the indexer first (sitekeeper index)").
			WithContext("path", path).
			Fatal().
			Build()
	}
	if err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryFileSystem, "failed to read index file "+path).
			WithContext("path", path).
			Fatal().
			Build()
	}

	var posts []string
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryValidation, "failed to parse index file "+path).
			WithContext("path", path).
			Fatal().
			Build()
	}
	return posts, nil
}

// Build assembles the document. Every entry is stamped with today's date;
// posts keep the index order.
func Build(cfg *config.Config, posts []string, today time.Time) Document {
	lastMod := today.Format(LastModLayout)
	domain := cfg.Site.Domain

	doc := Document{
		Namespace: Namespace,
		MainPages: make([]Entry, 0, len(cfg.Sitemap.MainPages)),
		Posts:     make([]Entry, 0, len(posts)),
	}
	for _, page := range cfg.Sitemap.MainPages {
		doc.MainPages = append(doc.MainPages, Entry{
			Loc:        domain + page.Path,
			LastMod:    lastMod,
			ChangeFreq: page.ChangeFreq,
			Priority:   FormatPriority(page.Priority),
		})
	}
	postPriority := FormatPriority(cfg.Sitemap.PostPriority)
	for _, name := range posts {
		doc.Posts = append(doc.Posts, Entry{
			Loc:        PostLocation(domain, cfg.Sitemap.DetailPath, name),
			LastMod:    lastMod,
			ChangeFreq: cfg.Sitemap.PostChangeFreq,
			Priority:   postPriority,
		})
	}
	return doc
}

// PostLocation is the detail page URL for a post filename.
func PostLocation(domain, detailPath, name string) string {
	return domain + detailPath + "?id=" + Quote(name)
}

// FormatPriority renders a priority with at least one decimal place.
func FormatPriority(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes s for use as a query value. Letters, digits,
// "_.-~" and "/" are kept; every other byte becomes %XX.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0x0F])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("_.-~/", c) >= 0
}

var sitemapTemplate = template.Must(template.New("sitemap").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="{{ .Namespace }}">
  <!-- Main Pages -->
{{- range .MainPages }}
{{ template "url" . }}
{{- end }}
  <!-- Blog Stories -->
{{- range .Posts }}
{{ template "url" . }}
{{- end }}
</urlset>
{{- define "url" }}  <url>
    <loc>{{ .Loc }}</loc>
    <lastmod>{{ .LastMod }}</lastmod>
    <changefreq>{{ .ChangeFreq }}</changefreq>
    <priority>{{ .Priority }}</priority>
  </url>
{{- end }}`))

// Render writes doc as sitemap XML. Values are written as-is; post
// locations are already percent-encoded.
func Render(w io.Writer, doc Document) error {
	if doc.Namespace == "" {
		doc.Namespace = Namespace
	}
	return sitemapTemplate.Execute(w, doc)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to create sitemap directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to write sitemap").
			WithContext("path", path).
			Build()
	}
	return nil
}
