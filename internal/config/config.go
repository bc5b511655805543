// Package config loads runtime settings from flags, an optional file and PETSUPPLIES_* env vars.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PETSUPPLIES"

type Config struct {
	HTTP struct {
		Addr string
	}
	Store struct {
		Driver string // memory or postgres
	}
	Database struct {
		URL string
	}
	Cart struct {
		Store      string // memory, file, redis or sqlite
		Dir        string
		SQLitePath string
		TTL        time.Duration
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Broker struct {
		Driver string // channel or kafka
	}
	Kafka struct {
		Brokers []string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
	Log struct {
		Level  string
		Format string
		File   string
	}
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Seed struct {
		Enabled  bool
		Password string
	}
}

// SetDefaults registers every key with its default so env overrides resolve.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("store.driver", "memory")
	v.SetDefault("database.url", "")
	v.SetDefault("cart.store", "memory")
	v.SetDefault("cart.dir", "data/carts")
	v.SetDefault("cart.sqlite_path", "data/carts.db")
	v.SetDefault("cart.ttl", 7*24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("broker.driver", "channel")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("ratelimit.rps", 20.0)
	v.SetDefault("ratelimit.burst", 40)
	v.SetDefault("seed.enabled", true)
	v.SetDefault("seed.password", "password123")
}

// NewViper returns a viper instance with defaults and env binding (http.addr -> PETSUPPLIES_HTTP_ADDR).
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads an optional config file and decodes every key.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var c Config
	c.HTTP.Addr = v.GetString("http.addr")
	c.Store.Driver = strings.ToLower(v.GetString("store.driver"))
	c.Database.URL = v.GetString("database.url")
	c.Cart.Store = strings.ToLower(v.GetString("cart.store"))
	c.Cart.Dir = v.GetString("cart.dir")
	c.Cart.SQLitePath = v.GetString("cart.sqlite_path")
	c.Cart.TTL = v.GetDuration("cart.ttl")
	c.Redis.Addr = v.GetString("redis.addr")
	c.Redis.Password = v.GetString("redis.password")
	c.Redis.DB = v.GetInt("redis.db")
	c.Broker.Driver = strings.ToLower(v.GetString("broker.driver"))
	c.Kafka.Brokers = splitList(v.GetStringSlice("kafka.brokers"))
	c.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	c.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	c.Log.Level = strings.ToLower(v.GetString("log.level"))
	c.Log.Format = strings.ToLower(v.GetString("log.format"))
	c.Log.File = v.GetString("log.file")
	c.RateLimit.RPS = v.GetFloat64("ratelimit.rps")
	c.RateLimit.Burst = v.GetInt("ratelimit.burst")
	c.Seed.Enabled = v.GetBool("seed.enabled")
	c.Seed.Password = v.GetString("seed.password")
	return c, c.Validate()
}

// splitList accepts both YAML lists and a comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	switch c.Cart.Store {
	case "memory", "file", "redis", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unknown cart.store %q", c.Cart.Store))
	}
	switch c.Broker.Driver {
	case "channel":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka.brokers is required for the kafka broker"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown broker.driver %q", c.Broker.Driver))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log.level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	if c.RateLimit.RPS < 0 || c.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("ratelimit values must not be negative"))
	}
	return errors.Join(errs...)
}
