package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "ISOMATCH"

type ServerConfig struct {
	ListenAddr   string  `mapstructure:"listen_addr"`
	UseRateLimit bool    `mapstructure:"rate_limit"`
	RateLimit    float64 `mapstructure:"rate_limit_rps"`
	RateBurst    int     `mapstructure:"rate_limit_burst"`
	SwaggerURL   string  `mapstructure:"swagger_url"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
	// UseH3Index makes nearest edge lookups go through the H3 cell index stored in the db.
	UseH3Index bool `mapstructure:"use_h3_index"`
}

type MatchingConfig struct {
	SearchRadius float64 `mapstructure:"search_radius"` // meters
	NumWorkers   int     `mapstructure:"num_workers"` // 0 = runtime.NumCPU()
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Matching MatchingConfig `mapstructure:"matching"`
}

func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":5000",
			RateLimit:  10,
			RateBurst:  20,
			SwaggerURL: "http://localhost:5000/swagger/doc.json",
		},
		Storage: StorageConfig{
			DBPath: "./isomatch_db",
		},
		Matching: MatchingConfig{
			SearchRadius: 20,
		},
	}
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.listen_addr", cfg.Server.ListenAddr)
	v.SetDefault("server.rate_limit", cfg.Server.UseRateLimit)
	v.SetDefault("server.rate_limit_rps", cfg.Server.RateLimit)
	v.SetDefault("server.rate_limit_burst", cfg.Server.RateBurst)
	v.SetDefault("server.swagger_url", cfg.Server.SwaggerURL)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("storage.use_h3_index", cfg.Storage.UseH3Index)
	v.SetDefault("matching.search_radius", cfg.Matching.SearchRadius)
	v.SetDefault("matching.num_workers", cfg.Matching.NumWorkers)
}

// Load reads the yaml file at path on top of DefaultConfig. ISOMATCH_* environment variables
// (e.g. ISOMATCH_SERVER_LISTEN_ADDR) override both. An empty path skips the file.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var ErrInvalidConfig = errors.New("invalid config")

func (c Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is empty: %w", ErrInvalidConfig)
	}
	if c.Matching.SearchRadius <= 0 {
		return fmt.Errorf("matching.search_radius must be positive: %w", ErrInvalidConfig)
	}
	if c.Matching.NumWorkers < 0 {
		return fmt.Errorf("matching.num_workers cannot be negative: %w", ErrInvalidConfig)
	}
	if c.Server.UseRateLimit && (c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0) {
		return fmt.Errorf("rate limit needs a positive rate and burst: %w", ErrInvalidConfig)
	}
	return nil
}
