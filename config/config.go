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

	"github.com/sagarc03/docsgate"
	"github.com/sagarc03/docsgate/catalog"
	docsgatehttp "github.com/sagarc03/docsgate/http"
	"github.com/sagarc03/docsgate/s3"
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

// Backends accepted by store.backend.
const (
	BackendFilesystem = "filesystem"
	BackendS3         = "s3"
	BackendCatalog    = "catalog"
)

// Config is the root configuration struct for docsgate.
type Config struct {
	Server  ServerConfig            `mapstructure:"server"`
	Store   StoreConfig             `mapstructure:"store"`
	CORS    docsgatehttp.CORSConfig `mapstructure:"cors"`
	Metrics MetricsConfig           `mapstructure:"metrics"`
	Log     LogConfig               `mapstructure:"log"`
	Env     string                  `mapstructure:"env"`
}

// ServerConfig holds HTTP server configuration.
// Timeouts are in seconds; zero disables the timeout.
type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Scheme       string `mapstructure:"scheme" validate:"required,oneof=https http"`
	ReadTimeout  int    `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout int    `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  int    `mapstructure:"idle_timeout" validate:"min=0"`
}

// Timeouts returns the read, write, and idle timeouts as durations.
func (s ServerConfig) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(s.ReadTimeout) * time.Second,
		time.Duration(s.WriteTimeout) * time.Second,
		time.Duration(s.IdleTimeout) * time.Second
}

// StoreConfig selects and configures the object store backend.
type StoreConfig struct {
	Backend string         `mapstructure:"backend" validate:"required,oneof=filesystem s3 catalog"`
	Path    string         `mapstructure:"path"`
	S3      s3.Config      `mapstructure:"s3"`
	Catalog catalog.Config `mapstructure:"catalog"`
}

// Validate checks the settings the selected backend depends on.
func (s StoreConfig) Validate() error {
	switch s.Backend {
	case BackendS3:
		if s.S3.Bucket == "" {
			return fmt.Errorf("%w: store.s3.bucket is required for the s3 backend", docsgate.ErrInvalidInput)
		}
	case BackendCatalog:
		if s.Path == "" {
			return fmt.Errorf("%w: store.path is required for the catalog backend", docsgate.ErrInvalidInput)
		}
		if s.Catalog.Type == "" || s.Catalog.DSN == "" {
			return fmt.Errorf("%w: store.catalog.type and store.catalog.dsn are required for the catalog backend", docsgate.ErrInvalidInput)
		}
		if err := s.Catalog.Tables.Validate(); err != nil {
			return err
		}
	default:
		if s.Path == "" {
			return fmt.Errorf("%w: store.path is required for the filesystem backend", docsgate.ErrInvalidInput)
		}
	}
	return nil
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// Format is text or json. Empty picks json in production.
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"backend":    "store.backend",
	"store-path": "store.path",
	"log-level":  "log.level",
	"port":       "server.port",
	"scheme":     "server.scheme",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
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
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.scheme", "https")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 120)

	v.SetDefault("store.backend", BackendFilesystem)
	v.SetDefault("store.path", "./site")
	v.SetDefault("store.s3.bucket", "")
	v.SetDefault("store.s3.region", "auto")
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.access_key", "")
	v.SetDefault("store.s3.secret_key", "")
	v.SetDefault("store.s3.use_path_style", false)
	v.SetDefault("store.s3.prefix", "")
	v.SetDefault("store.catalog.type", "sqlite")
	v.SetDefault("store.catalog.dsn", "docsgate.db")
	v.SetDefault("store.catalog.tables.objects", "docsgate_objects")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", docsgatehttp.DefaultMetricsPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")
	v.SetDefault("env", "dev")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
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
		v.SetConfigName("docsgate")
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
	v.SetEnvPrefix("DOCSGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator, then backend requirements
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
