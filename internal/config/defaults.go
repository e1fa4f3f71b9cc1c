package config

import "path/filepath"

// Built-in site settings.
const (
	DefaultDomain         = "https://phaz.onrender.com"
	DefaultPostsDir       = "blogs"
	DefaultPostExtension  = ".md"
	DefaultIndexFileName  = "index.json"
	DefaultSitemapFile    = "sitemap.xml"
	DefaultDetailPath     = "/detail.html"
	DefaultPostPriority   = 0.8
	DefaultPostChangeFreq = "monthly"
)

// DefaultMainPages returns the fixed pages listed ahead of the posts.
func DefaultMainPages() []Page {
	return []Page{
		{Path: "/", Priority: 1.0, ChangeFreq: "daily"},
		{Path: "/index.html", Priority: 1.0, ChangeFreq: "daily"},
		{Path: "/bloglist.html", Priority: 0.9, ChangeFreq: "daily"},
		{Path: "/about.html", Priority: 0.5, ChangeFreq: "monthly"},
		{Path: "/policy.html", Priority: 0.3, ChangeFreq: "yearly"},
		{Path: "/legal.html", Priority: 0.3, ChangeFreq: "yearly"},
	}
}

// Default returns a configuration carrying every built-in setting.
func Default() *Config {
	return &Config{
		Site: SiteConfig{Domain: DefaultDomain},
		Posts: PostsConfig{
			Directory: DefaultPostsDir,
			Extension: DefaultPostExtension,
			IndexFile: filepath.Join(DefaultPostsDir, DefaultIndexFileName),
		},
		Sitemap: SitemapConfig{
			Output:         DefaultSitemapFile,
			DetailPath:     DefaultDetailPath,
			PostPriority:   DefaultPostPriority,
			PostChangeFreq: DefaultPostChangeFreq,
			MainPages:      DefaultMainPages(),
		},
	}
}

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PostsDefaultApplier fills in post discovery settings.
type PostsDefaultApplier struct{}

func (PostsDefaultApplier) Domain() string { return "posts" }

func (PostsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Posts.Directory == "" {
		cfg.Posts.Directory = DefaultPostsDir
	}
	if cfg.Posts.Extension == "" {
		cfg.Posts.Extension = DefaultPostExtension
	}
	// The index lives next to the posts unless placed elsewhere explicitly.
	if cfg.Posts.IndexFile == "" {
		cfg.Posts.IndexFile = filepath.Join(cfg.Posts.Directory, DefaultIndexFileName)
	}
	return nil
}

// SitemapDefaultApplier fills in sitemap settings.
type SitemapDefaultApplier struct{}

func (SitemapDefaultApplier) Domain() string { return "sitemap" }

func (SitemapDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Sitemap.Output == "" {
		cfg.Sitemap.Output = DefaultSitemapFile
	}
	if cfg.Sitemap.DetailPath == "" {
		cfg.Sitemap.DetailPath = DefaultDetailPath
	}
	if cfg.Sitemap.PostChangeFreq == "" {
		cfg.Sitemap.PostChangeFreq = DefaultPostChangeFreq
	}
	if cfg.Sitemap.MainPages == nil {
		cfg.Sitemap.MainPages = DefaultMainPages()
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{PostsDefaultApplier{}, SitemapDefaultApplier{}}
}

// ApplyDefaults runs every domain applier in order.
func ApplyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
