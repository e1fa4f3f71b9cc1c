package postindex

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekeeper/internal/config"
	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekeeper/internal/sortdate"
)

// writePost creates a post file with a fixed modification time.
func writePost(t *testing.T, dir, name, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Posts.Directory = dir
	cfg.Posts.IndexFile = filepath.Join(dir, "index.json")
	return cfg
}

func readIndex(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var names []string
	require.NoError(t, json.Unmarshal(data, &names))
	return names
}

var baseMTime = time.Date(2022, 6, 1, 12, 0, 0, 0, time.Local)

func TestRun_OrdersNewestFirstAcrossFallbacks(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a-header.md", "---\ndate: 2024-03-05\n---\nbody", baseMTime)
	writePost(t, dir, "b-2023-01-10-filename.md", "no header", baseMTime)
	writePost(t, dir, "c-mtime.md", "plain", time.Date(2023, 7, 1, 9, 0, 0, 0, time.Local))
	writePost(t, dir, "d-header-beats-filename-2030-01-01.md", "---\ndate: 2021/01/01\n---\n", baseMTime)
	writePost(t, dir, "notes.txt", "---\ndate: 2099-01-01\n---\n", baseMTime)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "drafts.md"), 0o755))

	cfg := testConfig(dir)
	res, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	want := []string{
		"a-header.md",
		"c-mtime.md",
		"b-2023-01-10-filename.md",
		"d-header-beats-filename-2030-01-01.md",
	}
	require.Equal(t, cfg.Posts.IndexFile, res.IndexPath)
	require.Equal(t, 4, res.Count)
	require.Equal(t, want, readIndex(t, cfg.Posts.IndexFile))
	require.Equal(t, sortdate.SourceHeader, res.Posts[0].Source)
	require.Equal(t, sortdate.SourceModTime, res.Posts[1].Source)
	require.Equal(t, sortdate.SourceFilename, res.Posts[2].Source)
	require.Equal(t, sortdate.SourceHeader, res.Posts[3].Source)
}

func TestRun_ExtensionMatchIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "UPPER.MD", "x", baseMTime)
	writePost(t, dir, "lower.md", "x", baseMTime.Add(time.Hour))

	res, err := New(testConfig(dir)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"lower.md", "UPPER.MD"}, Names(res.Posts))
}

func TestRun_EqualDatesKeepDiscoveryOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.md", "a.md", "b.md"} {
		writePost(t, dir, name, "---\ndate: 2024-03-05\n---\n", baseMTime)
	}
	writePost(t, dir, "z-newer.md", "---\ndate: 2024-03-06\n---\n", baseMTime)

	res, err := New(testConfig(dir)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"z-newer.md", "a.md", "b.md", "c.md"}, Names(res.Posts))
}

func TestRun_SlashAndTimestampHeaderDatesTie(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "---\ndate: 2024/03/05\n---\n", baseMTime)
	writePost(t, dir, "b.md", "---\ndate: \"2024-03-05T10:00:00\"\n---\n", baseMTime)

	res, err := New(testConfig(dir)).Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Posts[0].SortDate.Equal(res.Posts[1].SortDate))
	require.Equal(t, []string{"a.md", "b.md"}, Names(res.Posts))
}

func TestRun_IsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "one.md", "---\ndate: 2024-01-01\n---\n", baseMTime)
	writePost(t, dir, "two.md", "plain", baseMTime)
	writePost(t, dir, "tröstlich & <wild>.md", "plain", baseMTime.Add(-time.Hour))
	cfg := testConfig(dir)

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(cfg.Posts.IndexFile)
	require.NoError(t, err)

	_, err = New(cfg).Run(context.Background())
	require.NoError(t, err)
	second, err := os.ReadFile(cfg.Posts.IndexFile)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Contains(t, string(first), `"tröstlich & <wild>.md"`)
}

func TestRun_OverwritesPreviousIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	require.NoError(t, os.WriteFile(cfg.Posts.IndexFile, []byte(`["gone.md", "also-gone.md"]`), 0o644))
	writePost(t, dir, "only.md", "x", baseMTime)

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"only.md"}, readIndex(t, cfg.Posts.IndexFile))
}

func TestRun_MissingDirectoryWritesNothing(t *testing.T) {
	root := t.TempDir()
	cfg := testConfig(filepath.Join(root, "blogs"))
	cfg.Posts.IndexFile = filepath.Join(root, "index.json")

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	require.True(t, foundation.HasCategory(err, foundation.CategoryNotFound))
	require.NoFileExists(t, cfg.Posts.IndexFile)
}

func TestRun_EmptyDirectoryWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "readme.txt", "not a post", baseMTime)
	cfg := testConfig(dir)

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	require.True(t, foundation.HasCategory(err, foundation.CategoryValidation))
	require.Contains(t, err.Error(), "no .md files")
	require.NoFileExists(t, cfg.Posts.IndexFile)
}

func TestRun_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "x", baseMTime)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(dir)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDiscover_CountsEveryMatchingFile(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"x.md", "y.md", "z.md", "index.json", "img.png"} {
		writePost(t, dir, name, "x", baseMTime.Add(time.Duration(i)*time.Minute))
	}

	posts, err := Discover(context.Background(), dir, ".md")
	require.NoError(t, err)
	require.Equal(t, []string{"x.md", "y.md", "z.md"}, Names(posts))
}

func TestDiscover_SkipsFileNamedLikeTheExtension(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, ".md", "---\ndate: 2030-01-01\n---\n", baseMTime)
	writePost(t, dir, ".MD", "x", baseMTime)
	writePost(t, dir, "a.md", "x", baseMTime)

	posts, err := Discover(context.Background(), dir, ".md")
	require.NoError(t, err)
	require.Equal(t, []string{"a.md"}, Names(posts))
}

func TestRun_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "x", baseMTime)
	cfg := testConfig(dir)
	cfg.Posts.IndexFile = filepath.Join(dir, "occupied")
	require.NoError(t, os.Mkdir(cfg.Posts.IndexFile, 0o755))

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	require.True(t, foundation.HasCategory(err, foundation.CategoryFileSystem))
	require.Contains(t, err.Error(), "failed to write index file")

	classified, ok := foundation.AsClassified(err)
	require.True(t, ok)
	require.Error(t, classified.Cause())
	require.DirExists(t, cfg.Posts.IndexFile)
}

func TestRun_LogsThroughInjectedLogger(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "b.md", "---\ndate: 2024-01-01\n---\n", baseMTime)
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, "a-dangling.md")))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	res, err := New(testConfig(dir), WithLogger(logger)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"b.md", "a-dangling.md"}, Names(res.Posts))

	out := logs.String()
	require.Contains(t, out, "Post unreadable")
	require.Contains(t, out, "Post has no modification time")
	require.Contains(t, out, "file=a-dangling.md")
	require.Contains(t, out, "Index written")
}

func TestEncode(t *testing.T) {
	data, err := Encode([]string{"post-a.md", "a&b.md"})
	require.NoError(t, err)
	require.Equal(t, "[\n  \"post-a.md\",\n  \"a&b.md\"\n]\n", string(data))

	empty, err := Encode(nil)
	require.NoError(t, err)
	require.Equal(t, "[]\n", string(empty))
}
