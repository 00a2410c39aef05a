// Package config manages application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// youtubeHosts are claimed by the API-backed fetch service and must never
// appear in the generic accepted-domain list; exactly one service may
// claim a domain.
var youtubeHosts = []string{"youtube.com", "youtu.be"}

// Config holds one immutable run configuration. It is constructed once
// per run and passed to components; nothing mutates it afterwards.
type Config struct {
	// APIKey is the YouTube Data API key.
	APIKey string `json:"api_key"`

	// AcceptedDomains are the hosts served by the generic yt-dlp
	// extraction path. Disjoint from the YouTube hosts.
	AcceptedDomains []string `json:"accepted_domains"`

	// yt-dlp settings
	YtdlpPath    string        `json:"ytdlp_path"`
	YtdlpTimeout time.Duration `json:"ytdlp_timeout"`

	// MaxRetries and SleepInterval are handed to the transport; the core
	// never retries or throttles on its own.
	MaxRetries    int           `json:"max_retries"`
	SleepInterval time.Duration `json:"sleep_interval"`

	// CookieFile is an optional Netscape-format cookie store. Some
	// requests yield no data without one; its absence is informational,
	// not an error.
	CookieFile string `json:"cookie_file"`

	// AllowedExtractors is the per-site extractor allow-list passed to
	// yt-dlp.
	AllowedExtractors []string `json:"allowed_extractors"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		YtdlpPath:     "yt-dlp",
		YtdlpTimeout:  5 * time.Minute,
		MaxRetries:    3,
		SleepInterval: 2 * time.Second,
		AcceptedDomains: []string{
			"twitter.com",
			"x.com",
			"newgrounds.com",
			"odysee.com",
			"tiktok.com",
			"pony.tube",
			"pt.thishorsie.rocks",
			"vimeo.com",
			"bilibili.com",
			"dailymotion.com",
			"bsky.app",
		},
		AllowedExtractors: []string{
			"twitter",
			"Newgrounds",
			"lbry", // Odysee
			"TikTok",
			"PeerTube", // pony.tube & pt.thishorsie.rocks
			"vimeo",
			"BiliBili",
			"dailymotion",
			"Bluesky",
			"generic", // yt-dlp may fall back to the generic extractor if another fails
		},
	}
}

// Load loads configuration from environment variables, config file, and
// applies defaults. Priority: env vars > config file > defaults.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Config file is optional.
	if err := cfg.loadFromFile(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile attempts to load config from topten.json in the current
// directory or the user config directory.
func (c *Config) loadFromFile() error {
	paths := []string{
		"topten.json",
		filepath.Join(os.Getenv("HOME"), ".config", "topten", "topten.json"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() {
	if v := os.Getenv("TOPTEN_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("TOPTEN_ACCEPTED_DOMAINS"); v != "" {
		c.AcceptedDomains = splitList(v)
	}
	if v := os.Getenv("TOPTEN_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := os.Getenv("TOPTEN_YTDLP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.YtdlpTimeout = d
		}
	}
	if v := os.Getenv("TOPTEN_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxRetries = n
		}
	}
	if v := os.Getenv("TOPTEN_SLEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SleepInterval = d
		}
	}
	if v := os.Getenv("TOPTEN_COOKIE_FILE"); v != "" {
		c.CookieFile = v
	}
	if v := os.Getenv("TOPTEN_ALLOWED_EXTRACTORS"); v != "" {
		c.AllowedExtractors = splitList(v)
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.YtdlpPath == "" {
		return fmt.Errorf("ytdlp_path must not be empty")
	}
	if c.YtdlpTimeout <= 0 {
		return fmt.Errorf("ytdlp_timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}
	if c.SleepInterval < 0 {
		return fmt.Errorf("sleep_interval must be non-negative")
	}
	for _, domain := range c.AcceptedDomains {
		for _, host := range youtubeHosts {
			if d := strings.ToLower(domain); d == host || strings.HasSuffix(d, "."+host) {
				return fmt.Errorf("accepted_domains must not include %q; YouTube URLs are served by the API-backed service", domain)
			}
		}
	}
	return nil
}
