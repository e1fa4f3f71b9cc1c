package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ChangeFreqs lists the values the sitemap protocol allows for <changefreq>.
var ChangeFreqs = map[string]bool{
	"always":  true,
	"hourly":  true,
	"daily":   true,
	"weekly":  true,
	"monthly": true,
	"yearly":  true,
	"never":   true,
}

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateSite(); err != nil {
		return err
	}
	if err := cv.validatePosts(); err != nil {
		return err
	}
	return cv.validateSitemap()
}

func (cv *configurationValidator) validateSite() error {
	domain := cv.config.Site.Domain
	if domain == "" {
		return errors.New("site.domain cannot be empty")
	}
	u, err := url.Parse(domain)
	if err != nil {
		return fmt.Errorf("site.domain is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("site.domain must use http or https: %s", domain)
	}
	if u.Host == "" {
		return fmt.Errorf("site.domain has no host: %s", domain)
	}
	return nil
}

func (cv *configurationValidator) validatePosts() error {
	posts := cv.config.Posts
	if posts.Directory == "" {
		return errors.New("posts.directory cannot be empty")
	}
	if posts.IndexFile == "" {
		return errors.New("posts.index_file cannot be empty")
	}
	if len(posts.Extension) < 2 || !strings.HasPrefix(posts.Extension, ".") {
		return fmt.Errorf("posts.extension must look like .md: %q", posts.Extension)
	}
	return nil
}

func (cv *configurationValidator) validateSitemap() error {
	sm := cv.config.Sitemap
	if sm.Output == "" {
		return errors.New("sitemap.output cannot be empty")
	}
	if err := validateEntry("sitemap.post", sm.PostPriority, sm.PostChangeFreq); err != nil {
		return err
	}
	for i, page := range sm.MainPages {
		if page.Path == "" {
			return fmt.Errorf("sitemap.main_pages[%d].path cannot be empty", i)
		}
		if err := validateEntry(fmt.Sprintf("sitemap.main_pages[%d]", i), page.Priority, page.ChangeFreq); err != nil {
			return err
		}
	}
	return nil
}

func validateEntry(field string, priority float64, changeFreq string) error {
	if priority < 0 || priority > 1 {
		return fmt.Errorf("%s priority must be between 0.0 and 1.0: %v", field, priority)
	}
	if !ChangeFreqs[changeFreq] {
		return fmt.Errorf("%s changefreq is not a sitemap value: %q", field, changeFreq)
	}
	return nil
}
