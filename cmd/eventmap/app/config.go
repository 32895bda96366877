package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/eventmap/pkg/catalog"
	"github.com/agentstation/eventmap/pkg/constants"
	"github.com/agentstation/eventmap/pkg/errors"
)

// EnvPrefix prefixes the environment variables eventmap reads, such as
// EVENTMAP_SOURCE_URL.
const EnvPrefix = "EVENTMAP"

// Config holds the application configuration loaded from flags, the
// environment, .env files and the config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Event source
	SourceURL     string
	SourceToken   string
	CatalogFile   string
	RefreshPolicy string
	AutoRefresh   time.Duration

	// Server
	Listen      string
	PathPrefix  string
	CacheTTL    time.Duration
	CORSOrigins []string
	APIKey      string
	RateLimit   int
	Watch       bool

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration in order of precedence:
//  1. Command-line flags (applied later by UpdateFromFlags)
//  2. Environment variables (EVENTMAP_*)
//  3. .env and .env.local
//  4. Config file (./.eventmap.yaml or $HOME/.eventmap.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".eventmap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; the search locations are optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	cfg := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		SourceURL:     v.GetString("source_url"),
		SourceToken:   v.GetString("source_token"),
		CatalogFile:   v.GetString("catalog_file"),
		RefreshPolicy: v.GetString("refresh_policy"),
		AutoRefresh:   v.GetDuration("auto_refresh"),

		Listen:      v.GetString("listen"),
		PathPrefix:  v.GetString("path_prefix"),
		CacheTTL:    v.GetDuration("cache_ttl"),
		CORSOrigins: v.GetStringSlice("cors_origins"),
		APIKey:      v.GetString("api_key"),
		RateLimit:   v.GetInt("rate_limit"),
		Watch:       v.GetBool("watch"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", constants.DefaultListenAddr)
	v.SetDefault("path_prefix", constants.DefaultPathPrefix)
	v.SetDefault("cache_ttl", constants.DefaultCacheTTL)
	v.SetDefault("refresh_policy", catalog.LatestIssued.String())
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if _, err := catalog.ParsePolicy(c.RefreshPolicy); err != nil {
		return errors.NewConfigError("config", "refresh_policy", err)
	}
	if c.AutoRefresh < 0 {
		return errors.NewConfigError("config", "auto_refresh must not be negative", nil)
	}
	if c.RateLimit < 0 {
		return errors.NewConfigError("config", "rate_limit must not be negative", nil)
	}
	return nil
}

// Source returns the configured event source: the remote URL when set,
// otherwise the catalog file.
func (c *Config) Source() string {
	if c.SourceURL != "" {
		return c.SourceURL
	}
	return c.CatalogFile
}

// UpdateFromFlags applies flags the user set explicitly. Unset flags leave
// the env and config file values in place.
func (c *Config) UpdateFromFlags(f Flags) {
	c.Verbose = f.Verbose
	c.Quiet = f.Quiet
	c.NoColor = f.NoColor
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.Source != "" {
		c.SourceURL, c.CatalogFile = f.Source, ""
	}
	if f.File != "" {
		c.SourceURL = ""
		c.CatalogFile = f.File
	}
}

// Flags are the persistent root flags.
type Flags struct {
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string
	Source   string
	File     string
}

// loadEnvFiles loads .env.local then .env. godotenv never overrides a
// variable that is already set, so the real environment wins and
// .env.local wins over .env.
func loadEnvFiles() {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}
}
