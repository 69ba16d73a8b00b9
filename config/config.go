package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "BLOG_CONFIG"

	ViewsBackendMemory   = "memory"
	ViewsBackendMongo    = "mongo"
	ViewsBackendPostgres = "postgres"
)

// Config holds everything the service needs at startup.
type Config struct {
	Server ServerConfig `yaml:"server"`
	CMS    CMSConfig    `yaml:"cms"`
	Views  ViewsConfig  `yaml:"views"`
}

type ServerConfig struct {
	Port     string `yaml:"port"`
	GinMode  string `yaml:"ginMode"`
	LogLevel string `yaml:"logLevel"`
	SiteURL  string `yaml:"siteUrl"`
}

// CMSConfig describes the headless CMS (Strapi) the blog reads from.
type CMSConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// ViewsConfig selects and configures the page view store.
type ViewsConfig struct {
	Backend         string        `yaml:"backend"`
	Timeout         time.Duration `yaml:"timeout"`
	MongoURI        string        `yaml:"mongoUri"`
	MongoDatabase   string        `yaml:"mongoDatabase"`
	MongoCollection string        `yaml:"mongoCollection"`
	PostgresURL     string        `yaml:"postgresUrl"`
	PostgresTable   string        `yaml:"postgresTable"`
}

// Load reads .env, an optional YAML file named by BLOG_CONFIG, and then
// applies environment overrides on top of the defaults. Problems that were
// recovered from by falling back to a default are returned as warnings for
// the caller to log once its logger exists.
func Load() (Config, []string) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	var warnings []string

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v (falling back to defaults)", path, err))
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				warnings = append(warnings, fmt.Sprintf("cannot parse %s: %v (falling back to defaults)", path, err))
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	warnings = append(warnings, cfg.applyEnvOverrides()...)
	warnings = append(warnings, cfg.normalize()...)

	return cfg, warnings
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}

func (c *Config) applyEnvOverrides() []string {
	var warnings []string

	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		c.Server.GinMode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("SITE_URL"); v != "" {
		c.Server.SiteURL = v
	}

	if v := os.Getenv("STRAPI_URL"); v != "" {
		c.CMS.URL = v
	}
	if v := os.Getenv("STRAPI_API_KEY"); v != "" {
		c.CMS.APIKey = v
	}
	if d, warn := durationEnv("CMS_TIMEOUT"); warn != "" {
		warnings = append(warnings, warn)
	} else if d > 0 {
		c.CMS.Timeout = d
	}

	if v := os.Getenv("VIEWS_BACKEND"); v != "" {
		c.Views.Backend = v
	}
	if d, warn := durationEnv("VIEWS_TIMEOUT"); warn != "" {
		warnings = append(warnings, warn)
	} else if d > 0 {
		c.Views.Timeout = d
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Views.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DATABASE"); v != "" {
		c.Views.MongoDatabase = v
	}
	if v := os.Getenv("MONGODB_COLLECTION"); v != "" {
		c.Views.MongoCollection = v
	}
	if v := os.Getenv("POSTGRES_URL"); v != "" {
		c.Views.PostgresURL = v
	}
	return warnings
}

func (c *Config) normalize() []string {
	var warnings []string

	c.CMS.URL = strings.TrimRight(c.CMS.URL, "/")
	c.Server.SiteURL = strings.TrimRight(c.Server.SiteURL, "/")
	c.Views.Backend = strings.ToLower(strings.TrimSpace(c.Views.Backend))

	switch c.Views.Backend {
	case ViewsBackendMemory, ViewsBackendMongo, ViewsBackendPostgres:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown views backend %q, reverting to %s", c.Views.Backend, ViewsBackendMemory))
		c.Views.Backend = ViewsBackendMemory
	}

	def := defaultConfig()
	if c.CMS.Timeout <= 0 {
		c.CMS.Timeout = def.CMS.Timeout
	}
	if c.Views.Timeout <= 0 {
		c.Views.Timeout = def.Views.Timeout
	}
	return warnings
}

// durationEnv returns 0 when key is unset and a warning when it does not
// parse.
func durationEnv(key string) (time.Duration, string) {
	v := os.Getenv(key)
	if v == "" {
		return 0, ""
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Sprintf("invalid duration %s=%q: %v", key, v, err)
	}
	return d, ""
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.GinMode != "" {
		base.Server.GinMode = override.Server.GinMode
	}
	if override.Server.LogLevel != "" {
		base.Server.LogLevel = override.Server.LogLevel
	}
	if override.Server.SiteURL != "" {
		base.Server.SiteURL = override.Server.SiteURL
	}

	if override.CMS.URL != "" {
		base.CMS.URL = override.CMS.URL
	}
	if override.CMS.APIKey != "" {
		base.CMS.APIKey = override.CMS.APIKey
	}
	if override.CMS.Timeout > 0 {
		base.CMS.Timeout = override.CMS.Timeout
	}

	if override.Views.Backend != "" {
		base.Views.Backend = override.Views.Backend
	}
	if override.Views.Timeout > 0 {
		base.Views.Timeout = override.Views.Timeout
	}
	if override.Views.MongoURI != "" {
		base.Views.MongoURI = override.Views.MongoURI
	}
	if override.Views.MongoDatabase != "" {
		base.Views.MongoDatabase = override.Views.MongoDatabase
	}
	if override.Views.MongoCollection != "" {
		base.Views.MongoCollection = override.Views.MongoCollection
	}
	if override.Views.PostgresURL != "" {
		base.Views.PostgresURL = override.Views.PostgresURL
	}
	if override.Views.PostgresTable != "" {
		base.Views.PostgresTable = override.Views.PostgresTable
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     "8080",
			GinMode:  "debug",
			LogLevel: "info",
			SiteURL:  "https://danielsaisani.com",
		},
		CMS: CMSConfig{
			URL:     "http://localhost:1337/api",
			Timeout: 10 * time.Second,
		},
		Views: ViewsConfig{
			Backend:         ViewsBackendMemory,
			Timeout:         5 * time.Second,
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "blog",
			MongoCollection: "views",
			PostgresTable:   "views",
		},
	}
}
