package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProxyConfig holds outbound proxy settings, all optional.
type ProxyConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

// Enabled reports whether a proxy host was configured.
func (p ProxyConfig) Enabled() bool {
	return p.Host != ""
}

// DomainProfile is the rate-limit tuning for one base domain (spec.md §6).
type DomainProfile struct {
	Capacity   float64
	RefillRate float64 // tokens/s
	MinDelay   time.Duration
	MaxDelay   time.Duration
}

// Config is the fully-resolved runtime configuration for the scraper.
type Config struct {
	Port           string
	MongoURI       string
	AllowedOrigins []string

	SearchKeywords      []string
	MaxItemsPerCategory int

	RequestTimeout       time.Duration
	MaxRetries           int
	MaxConcurrentFetches int
	ScrapeDelayMin       time.Duration
	ScrapeDelayMax       time.Duration

	UseHeadlessBrowser bool
	RobotsUserAgent    string

	ContentMaxAgeDays int

	AutoScrapeEnabled bool
	ScrapeCronSchedule string

	Proxy ProxyConfig

	LogLevel string
	LogDir   string

	DomainProfiles map[string]DomainProfile
}

// Interface is the read surface the rest of the application depends on, so
// call sites can be exercised against a fake in tests.
type Interface interface {
	Validate() error
}

var _ Interface = (*Config)(nil)

// defaultDomainProfiles mirrors the per-host rate-limit defaults in spec.md §6.
func defaultDomainProfiles() map[string]DomainProfile {
	return map[string]DomainProfile{
		"default": {Capacity: 5, RefillRate: 0.5, MinDelay: 2 * time.Second, MaxDelay: 5 * time.Second},
		"google.com": {
			Capacity: 3, RefillRate: 0.3, MinDelay: 3 * time.Second, MaxDelay: 8 * time.Second,
		},
		"linkedin.com": {
			Capacity: 2, RefillRate: 0.2, MinDelay: 5 * time.Second, MaxDelay: 10 * time.Second,
		},
		"indeed.com": {
			Capacity: 3, RefillRate: 0.3, MinDelay: 3 * time.Second, MaxDelay: 7 * time.Second,
		},
		"twitter.com": {
			Capacity: 2, RefillRate: 0.2, MinDelay: 4 * time.Second, MaxDelay: 8 * time.Second,
		},
		"github.com": {
			Capacity: 5, RefillRate: 0.5, MinDelay: 2 * time.Second, MaxDelay: 4 * time.Second,
		},
	}
}

// Load reads configuration from environment variables (optionally seeded by
// a .env file at envPath), applying the defaults named in spec.md §6.
func Load(envPath string) (*Config, error) {
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/scraper")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("SEARCH_KEYWORDS", "webmethods")
	v.SetDefault("MAX_ITEMS_PER_CATEGORY", 500)
	v.SetDefault("REQUEST_TIMEOUT", 30000)
	v.SetDefault("MAX_RETRIES", 3)
	v.SetDefault("MAX_CONCURRENT_REQUESTS", 3)
	v.SetDefault("SCRAPE_DELAY_MIN", 2000)
	v.SetDefault("SCRAPE_DELAY_MAX", 5000)
	v.SetDefault("USE_PUPPETEER", false)
	v.SetDefault("ROBOTS_USER_AGENT", "ContentRadarBot/1.0")
	v.SetDefault("CONTENT_MAX_AGE_DAYS", 90)
	v.SetDefault("AUTO_SCRAPE_ENABLED", true)
	v.SetDefault("SCRAPE_CRON_SCHEDULE", "0 */6 * * *")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "./logs")

	cfg := &Config{
		Port:                 v.GetString("PORT"),
		MongoURI:             v.GetString("MONGODB_URI"),
		AllowedOrigins:       splitCSV(v.GetString("ALLOWED_ORIGINS")),
		SearchKeywords:       splitCSV(v.GetString("SEARCH_KEYWORDS")),
		MaxItemsPerCategory:  v.GetInt("MAX_ITEMS_PER_CATEGORY"),
		RequestTimeout:       time.Duration(v.GetInt("REQUEST_TIMEOUT")) * time.Millisecond,
		MaxRetries:           v.GetInt("MAX_RETRIES"),
		MaxConcurrentFetches: v.GetInt("MAX_CONCURRENT_REQUESTS"),
		ScrapeDelayMin:       time.Duration(v.GetInt("SCRAPE_DELAY_MIN")) * time.Millisecond,
		ScrapeDelayMax:       time.Duration(v.GetInt("SCRAPE_DELAY_MAX")) * time.Millisecond,
		UseHeadlessBrowser:   v.GetBool("USE_PUPPETEER"),
		RobotsUserAgent:      v.GetString("ROBOTS_USER_AGENT"),
		ContentMaxAgeDays:    v.GetInt("CONTENT_MAX_AGE_DAYS"),
		AutoScrapeEnabled:    v.GetBool("AUTO_SCRAPE_ENABLED"),
		ScrapeCronSchedule:   v.GetString("SCRAPE_CRON_SCHEDULE"),
		Proxy: ProxyConfig{
			Host:     v.GetString("PROXY_HOST"),
			Port:     v.GetString("PROXY_PORT"),
			Username: v.GetString("PROXY_USERNAME"),
			Password: v.GetString("PROXY_PASSWORD"),
		},
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogDir:         v.GetString("LOG_DIR"),
		DomainProfiles: defaultDomainProfiles(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures deep in the fetch path.
func (c *Config) Validate() error {
	if c.MongoURI == "" {
		return &ValidationError{Field: "MONGODB_URI", Value: c.MongoURI, Reason: "must not be empty"}
	}
	if c.MaxConcurrentFetches < 1 {
		return &ValidationError{Field: "MAX_CONCURRENT_REQUESTS", Value: c.MaxConcurrentFetches, Reason: "must be >= 1"}
	}
	if c.ScrapeDelayMin > c.ScrapeDelayMax {
		return &ValidationError{
			Field: "SCRAPE_DELAY_MIN", Value: c.ScrapeDelayMin,
			Reason: fmt.Sprintf("must be <= SCRAPE_DELAY_MAX (%s)", c.ScrapeDelayMax),
		}
	}
	if c.MaxRetries < 0 {
		return &ValidationError{Field: "MAX_RETRIES", Value: c.MaxRetries, Reason: "must be >= 0"}
	}
	return nil
}
