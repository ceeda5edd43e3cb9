package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output     string `yaml:"output"`
	MaxPages   int    `yaml:"max_pages"`
	MaxRetries int    `yaml:"max_retries"`
	Debug      bool   `yaml:"debug"`

	DefaultURL string `yaml:"default_url"`
	FullSeries bool   `yaml:"full_series"`

	BlockedHosts []string `yaml:"blocked_hosts"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

type Options struct {
	IgnoreConfig bool
	Debug        bool
	Output       string
	MaxPages     int
	MaxRetries   int
	DefaultURL   string
	FullSeries   bool
	Cookie       string
	CookieFile   string
	UserAgent    string
}

func DefaultConfig() *Config {
	return &Config{
		Output:       "downloads",
		MaxPages:     10,
		MaxRetries:   3,
		Debug:        false,
		DefaultURL:   "",
		FullSeries:   true,
		BlockedHosts: []string{"reddit", "twitter", "facebook", "twitch"},
		Cookie:       "",
		CookieFile:   "",
		UserAgent:    "",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `storyd config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.MaxPages != 0 {
		c.MaxPages = o.MaxPages
	}
	if o.MaxRetries != 0 {
		c.MaxRetries = o.MaxRetries
	}
	if o.Debug {
		c.Debug = true
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.FullSeries {
		c.FullSeries = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "downloads"
	}
	if c.MaxPages == 0 {
		c.MaxPages = 10
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if len(c.BlockedHosts) == 0 {
		c.BlockedHosts = []string{"reddit", "twitter", "facebook", "twitch"}
	}
}

func (c *Config) Print() {
	if c.Output != "" {
		fmt.Printf(" -output: %s\n", c.Output)
	}
	fmt.Printf(" -max_pages: %d\n", c.MaxPages)
	fmt.Printf(" -max_retries: %d\n", c.MaxRetries)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	fmt.Printf(" -full_series: %t\n", c.FullSeries)
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
	if len(c.BlockedHosts) > 0 {
		fmt.Printf(" -blocked_hosts: %s\n", strings.Join(c.BlockedHosts, ", "))
	}
}
