package config

import (
	"maps"
	"strings"
	"time"
)

// SiteConfig holds request settings for one storefront host.
// Password-protected or preview storefronts usually need a cookie.
type SiteConfig struct {
	// Cookie is sent as the Cookie header. Format: "name=value; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra request headers.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Timeout overrides the global fetch timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .shopaudit configuration file.
type File struct {
	// Thresholds overrides the rule thresholds. Fields left out keep their defaults.
	Thresholds Thresholds `yaml:"thresholds,omitempty"`

	// Defaults apply to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a host name (without scheme) to its overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`
}

// NewFile returns an empty File carrying the default thresholds.
func NewFile() *File {
	return &File{
		Thresholds: DefaultThresholds(),
		Sites:      make(map[string]SiteConfig),
	}
}

// GetSiteConfig returns the configuration for a host merged over the defaults.
// The lookup ignores case and a leading "www.".
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	siteConfig, ok := cf.lookup(host)
	if !ok {
		return result
	}

	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.Timeout > 0 {
		result.Timeout = siteConfig.Timeout
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	return result
}

func (cf *File) lookup(host string) (SiteConfig, bool) {
	host = strings.ToLower(host)
	if sc, ok := cf.Sites[host]; ok {
		return sc, true
	}
	bare := strings.TrimPrefix(host, "www.")
	for key, sc := range cf.Sites {
		if strings.TrimPrefix(strings.ToLower(key), "www.") == bare {
			return sc, true
		}
	}
	return SiteConfig{}, false
}
