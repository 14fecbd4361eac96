package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/laropanostra/shopapp"
	"github.com/laropanostra/shopapp/database"
	shophttp "github.com/laropanostra/shopapp/http"
	"github.com/laropanostra/shopapp/logging"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration of both services.
type Config struct {
	Env        string              `mapstructure:"env" validate:"required"`
	Log        LogConfig           `mapstructure:"log"`
	Server     ServerConfig        `mapstructure:"server"`
	Database   database.Config     `mapstructure:"database"`
	Shop       ShopConfig          `mapstructure:"shop"`
	FileServer FileServerConfig    `mapstructure:"fileserver"`
	CORS       shophttp.CORSConfig `mapstructure:"cors"`
}

// ServerConfig holds the HTTP server timeouts shared by both services.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// ShopConfig holds the shop API settings.
type ShopConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// FileServerConfig holds the file server settings.
type FileServerConfig struct {
	Port              int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	UploadDir         string   `mapstructure:"upload_dir" validate:"required"`
	MaxFileSize       int64    `mapstructure:"max_file_size" validate:"min=1"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" validate:"min=1,dive,required,alphanum"`
	MaxFiles          int      `mapstructure:"max_files" validate:"min=1"`
	// PublicPrefix is the URL path the upload root is served under.
	PublicPrefix string `mapstructure:"public_prefix" validate:"required,startswith=/"`
	// ExposeErrors returns raw failure messages to clients instead of the
	// generic per-operation message.
	ExposeErrors bool `mapstructure:"expose_errors"`
}

// Policy returns the upload rules of the file server.
func (c FileServerConfig) Policy() shopapp.StoragePolicy {
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, ext := range c.AllowedExtensions {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	return shopapp.StoragePolicy{
		AllowedExtensions: exts,
		MaxFileSize:       c.MaxFileSize,
		MaxFiles:          c.MaxFiles,
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProd reports whether env names a production deployment.
func (c *Config) IsProd() bool {
	return logging.IsProd(c.Env)
}

// defaultFlagKeys maps CLI flag names to viper configuration keys.
var defaultFlagKeys = map[string]string{
	"env":           "env",
	"log-level":     "log.level",
	"db-driver":     "database.driver",
	"db-host":       "database.host",
	"db-port":       "database.port",
	"db-user":       "database.user",
	"db-password":   "database.password",
	"db-name":       "database.name",
	"db-dsn":        "database.dsn",
	"upload-dir":    "fileserver.upload_dir",
	"max-file-size": "fileserver.max_file_size",
	"max-files":     "fileserver.max_files",
}

// Option adjusts how Load binds its inputs.
type Option func(*loader)

type loader struct {
	flagKeys map[string]string
}

// WithFlagKey maps the flag named flag to the configuration key. It lets
// each binary bind a generic flag such as "port" to its own section.
func WithFlagKey(flag, key string) Option {
	return func(l *loader) {
		l.flagKeys[flag] = key
	}
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := keys[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")

	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("database.driver", "sqlserver")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 1433)
	v.SetDefault("database.user", "sa")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "LAROPANOSTRAA")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.params", map[string]any{"encrypt": "disable"})
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.ping_timeout", 5*time.Second)
	v.SetDefault("database.query_timeout", 0) // 0 means no limit

	v.SetDefault("shop.port", 4112)

	v.SetDefault("fileserver.port", 5113)
	v.SetDefault("fileserver.upload_dir", "./uploads")
	v.SetDefault("fileserver.max_file_size", 5*1024*1024)
	v.SetDefault("fileserver.allowed_extensions", []string{"jpg", "jpeg", "png", "gif", "webp"})
	v.SetDefault("fileserver.max_files", 10)
	v.SetDefault("fileserver.public_prefix", "/uploads")
	v.SetDefault("fileserver.expose_errors", true)

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.exposed_headers", []string{"X-Request-ID"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	l := &loader{flagKeys: make(map[string]string, len(defaultFlagKeys))}
	for k, v := range defaultFlagKeys {
		l.flagKeys[k] = v
	}
	for _, opt := range opts {
		opt(l)
	}

	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("SHOPAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags, l.flagKeys)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
