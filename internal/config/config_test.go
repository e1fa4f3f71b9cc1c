package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
)

func TestDefault_MatchesBuiltInSite(t *testing.T) {
	cfg := Default()

	require.Equal(t, "https://phaz.onrender.com", cfg.Site.Domain)
	require.Equal(t, "blogs", cfg.Posts.Directory)
	require.Equal(t, filepath.Join("blogs", "index.json"), cfg.Posts.IndexFile)
	require.Equal(t, "sitemap.xml", cfg.Sitemap.Output)
	require.Equal(t, 0.8, cfg.Sitemap.PostPriority)
	require.Equal(t, "monthly", cfg.Sitemap.PostChangeFreq)
	require.Len(t, cfg.Sitemap.MainPages, 6)
	require.Equal(t, Page{Path: "/legal.html", Priority: 0.3, ChangeFreq: "yearly"}, cfg.Sitemap.MainPages[5])
	require.NoError(t, ValidateConfig(cfg))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("BLOG_HOST", "blog.example.org")

	path := filepath.Join(dir, "sitekeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  domain: https://${BLOG_HOST}/
posts:
  directory: content
  extension: MD
sitemap:
  post_changefreq: Weekly
  main_pages:
    - path: /
      priority: 1.0
      changefreq: daily
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://blog.example.org", cfg.Site.Domain)
	require.Equal(t, "content", cfg.Posts.Directory)
	require.Equal(t, ".md", cfg.Posts.Extension)
	require.Equal(t, filepath.Join("content", "index.json"), cfg.Posts.IndexFile)
	require.Equal(t, "weekly", cfg.Sitemap.PostChangeFreq)
	require.Equal(t, 0.8, cfg.Sitemap.PostPriority)
	require.Len(t, cfg.Sitemap.MainPages, 1)
}

func TestLoad_DomainFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(EnvDomain, "")
	require.NoError(t, os.Unsetenv(EnvDomain))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvDomain+"=https://env.example.com\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv(EnvDomain) })

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "https://env.example.com", cfg.Site.Domain)
}

func TestLoad_InvalidYAMLIsConfigError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, foundation.HasCategory(err, foundation.CategoryConfig))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"empty domain", func(c *Config) { c.Site.Domain = "" }, false},
		{"ftp domain", func(c *Config) { c.Site.Domain = "ftp://example.com" }, false},
		{"bad extension", func(c *Config) { c.Posts.Extension = "md" }, false},
		{"priority above one", func(c *Config) { c.Sitemap.PostPriority = 1.5 }, false},
		{"unknown changefreq", func(c *Config) { c.Sitemap.MainPages[0].ChangeFreq = "sometimes" }, false},
		{"empty page path", func(c *Config) { c.Sitemap.MainPages[2].Path = "" }, false},
		{"no main pages", func(c *Config) { c.Sitemap.MainPages = []Page{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Site.Domain = " https://example.com/ "
	cfg.Posts.Extension = "TXT"
	cfg.Sitemap.DetailPath = "post.html"

	Normalize(cfg)

	require.Equal(t, "https://example.com", cfg.Site.Domain)
	require.Equal(t, ".txt", cfg.Posts.Extension)
	require.Equal(t, "/post.html", cfg.Sitemap.DetailPath)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "sitekeeper.yaml")

	require.NoError(t, Init(path, false))

	err := Init(path, false)
	require.Error(t, err)
	require.True(t, foundation.HasCategory(err, foundation.CategoryValidation))
	require.NoError(t, Init(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}
