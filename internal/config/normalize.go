package config

import "strings"

// Normalize canonicalizes values that have several acceptable spellings.
func Normalize(cfg *Config) {
	cfg.Site.Domain = strings.TrimRight(strings.TrimSpace(cfg.Site.Domain), "/")

	ext := strings.TrimSpace(cfg.Posts.Extension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	cfg.Posts.Extension = strings.ToLower(ext)

	if p := cfg.Sitemap.DetailPath; p != "" && !strings.HasPrefix(p, "/") {
		cfg.Sitemap.DetailPath = "/" + p
	}
	cfg.Sitemap.PostChangeFreq = normalizeChangeFreq(cfg.Sitemap.PostChangeFreq)
	for i := range cfg.Sitemap.MainPages {
		cfg.Sitemap.MainPages[i].ChangeFreq = normalizeChangeFreq(cfg.Sitemap.MainPages[i].ChangeFreq)
	}
}

func normalizeChangeFreq(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
