package config

import (
	"errors"
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultExportURL is the Kobo CSV export the job reads when none is configured.
const DefaultExportURL = "https://kf.kobotoolbox.org/api/v2/assets/aCEjw8JUqyzrEZW4Vhhv85/export-settings/esE9u8dmcv6QSHFSRkeajGH/data.csv"

// Config holds the full application configuration.
type Config struct {
	Kobo     KoboConfig     `yaml:"kobo" mapstructure:"kobo"`
	Postgres PostgresConfig `yaml:"postgres" mapstructure:"postgres"`
	Load     LoadConfig     `yaml:"load" mapstructure:"load"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// KoboConfig configures the export download.
type KoboConfig struct {
	URL         string `yaml:"url" mapstructure:"url" validate:"required,url"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gt=0"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// PostgresConfig holds the connection parameters and target table.
type PostgresConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     string `yaml:"port" mapstructure:"port"`
	Database string `yaml:"database" mapstructure:"database"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Schema   string `yaml:"schema" mapstructure:"schema" validate:"required"`
	Table    string `yaml:"table" mapstructure:"table" validate:"required"`
}

// LoadConfig configures how rows are written.
type LoadConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=insert copy"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=console json"`
}

// MetricsConfig configures the node-exporter textfile. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// legacyEnv maps config keys to the bare variable names deployments already set.
var legacyEnv = map[string]string{
	"kobo.username":     "KUBO_USERNAME",
	"kobo.password":     "KUBO_PASSWORD",
	"postgres.host":     "PG_HOST",
	"postgres.port":     "PG_PORT",
	"postgres.database": "PG_DATABASE",
	"postgres.user":     "PG_USER",
	"postgres.password": "PG_PASSWORD",
}

// Load reads configuration from .env, config.yaml, and the environment.
func Load() (*Config, error) {
	// .env never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KOBOSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, "KOBOSYNC_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", env)
		}
	}

	// Defaults
	v.SetDefault("kobo.url", DefaultExportURL)
	v.SetDefault("kobo.username", "")
	v.SetDefault("kobo.password", "")
	v.SetDefault("kobo.timeout_secs", 60)
	v.SetDefault("kobo.user_agent", "kobo-sync/1.0")
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "")
	v.SetDefault("postgres.database", "")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.schema", "product_collection")
	v.SetDefault("postgres.table", "product_data")
	v.SetDefault("load.mode", "insert")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.textfile", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings the job cannot run without. Credentials are
// not checked: missing ones surface as auth or connection failures.
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return eris.Wrap(err, "config: validate")
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		switch fe.Tag() {
		case "required":
			problems = append(problems, key+" is required")
		case "gt":
			problems = append(problems, key+" must be positive")
		case "oneof":
			problems = append(problems, key+" must be "+strings.ReplaceAll(fe.Param(), " ", " or "))
		case "url":
			problems = append(problems, key+" must be a valid URL")
		default:
			problems = append(problems, key+" is invalid")
		}
	}
	return eris.Errorf("config: %s", strings.Join(problems, "; "))
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
