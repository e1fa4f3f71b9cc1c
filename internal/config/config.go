package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	foundation "git.home.luguber.info/inful/sitekeeper/internal/foundation/errors"
)

// Config is the explicit configuration handed to the indexer and the sitemap builder.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Posts   PostsConfig   `yaml:"posts"`
	Sitemap SitemapConfig `yaml:"sitemap"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Domain string `yaml:"domain"` // scheme and host, no trailing slash
}

// PostsConfig describes where posts live and where the index is written.
type PostsConfig struct {
	Directory string `yaml:"directory"`
	Extension string `yaml:"extension"`
	IndexFile string `yaml:"index_file"`
}

// SitemapConfig describes the generated sitemap.
type SitemapConfig struct {
	Output         string  `yaml:"output"`
	DetailPath     string  `yaml:"detail_path"`
	PostPriority   float64 `yaml:"post_priority"`
	PostChangeFreq string  `yaml:"post_changefreq"`
	MainPages      []Page  `yaml:"main_pages"`
}

// Page is one fixed, non-post entry of the sitemap.
type Page struct {
	Path       string  `yaml:"path"`
	Priority   float64 `yaml:"priority"`
	ChangeFreq string  `yaml:"changefreq"`
}

// EnvDomain overrides Site.Domain when set.
const EnvDomain = "SITEKEEPER_DOMAIN"

var envFiles = []string{".env", ".env.local"}

// Load builds the configuration for a run.
//
// Defaults reproduce the site's built-in settings. When configPath exists it is
// decoded over the defaults after ${VAR} expansion; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	// Derived from posts.directory unless the file sets it.
	cfg.Posts.IndexFile = ""

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("No configuration file, using defaults", "path", configPath)
	case err != nil:
		return nil, foundation.WrapError(err, foundation.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Fatal().
			Build()
	default:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, foundation.WrapError(err, foundation.CategoryConfig, "failed to unmarshal config").
				WithContext("path", configPath).
				Fatal().
				Build()
		}
	}

	if domain := os.Getenv(EnvDomain); domain != "" {
		cfg.Site.Domain = domain
	}

	if err := ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, foundation.WrapError(err, foundation.CategoryConfig, "invalid configuration").
			WithContext("path", configPath).
			Fatal().
			Build()
	}
	return cfg, nil
}

// loadEnvFiles loads .env and .env.local into the process environment.
// Existing process environment variables are not overwritten.
func loadEnvFiles() {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", "path", envPath, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", envPath)
	}
}

// Init writes the default configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return foundation.NewError(foundation.CategoryValidation, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# sitekeeper configuration. ${VAR} references are expanded from the environment.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return foundation.WrapError(err, foundation.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}
