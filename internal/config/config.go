// Package config loads service configuration from defaults, an optional
// .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	Log       LogConfig       `koanf:"log"`
}

type ServerConfig struct {
	Port               int      `koanf:"port" validate:"min=1,max=65535"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type StoreConfig struct {
	Driver        string `koanf:"driver" validate:"oneof=mongo sqlite"`
	MongoURI      string `koanf:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase string `koanf:"mongo_database" validate:"required_if=Driver mongo"`
	SQLitePath    string `koanf:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type AuthConfig struct {
	JWTSecret  string        `koanf:"jwt_secret" validate:"required,min=32"`
	BcryptCost int           `koanf:"bcrypt_cost" validate:"min=4,max=14"`
	TokenTTL   time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

// RateLimitConfig controls the per-client limit on the credential endpoints.
// A zero RPS disables limiting. When RedisAddr is set the limit is shared
// across instances through Redis.
type RateLimitConfig struct {
	RPS           float64 `koanf:"rps" validate:"min=0"`
	Burst         int     `koanf:"burst" validate:"min=0"`
	RedisAddr     string  `koanf:"redis_addr"`
	RedisPassword string  `koanf:"redis_password"`
	RedisDB       int     `koanf:"redis_db" validate:"min=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               3001,
			CORSAllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Driver:        DriverMongo,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "todo",
			SQLitePath:    "todo.db",
		},
		Auth: AuthConfig{
			BcryptCost: 10,
			TokenTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RPS:   1,
			Burst: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// envKeys maps environment variables to configuration keys.
var envKeys = map[string]string{
	"PORT":                      "server.port",
	"CORS_ALLOWED_ORIGINS":      "server.cors_allowed_origins",
	"STORE_DRIVER":              "store.driver",
	"MONGO_URI":                 "store.mongo_uri",
	"MONGO_DATABASE":            "store.mongo_database",
	"SQLITE_PATH":               "store.sqlite_path",
	"JWT_SECRET":                "auth.jwt_secret",
	"BCRYPT_COST":               "auth.bcrypt_cost",
	"TOKEN_TTL":                 "auth.token_ttl",
	"RATE_LIMIT_RPS":            "ratelimit.rps",
	"RATE_LIMIT_BURST":          "ratelimit.burst",
	"RATE_LIMIT_REDIS_ADDR":     "ratelimit.redis_addr",
	"RATE_LIMIT_REDIS_PASSWORD": "ratelimit.redis_password",
	"RATE_LIMIT_REDIS_DB":       "ratelimit.redis_db",
	"LOG_LEVEL":                 "log.level",
	"LOG_FORMAT":                "log.format",
}

// Load builds the configuration. Variables from envFiles are exported into
// the process environment first without overriding variables that are
// already set; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok || strings.TrimSpace(value) == "" {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
