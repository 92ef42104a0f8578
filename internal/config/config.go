package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the four input datasets.
type DataConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"` // csv or xlsx
}

// DashboardConfig configures view computation.
type DashboardConfig struct {
	// KPIScope is "ward" (KPIs follow the ward selector) or "city"
	// (KPIs always cover the full datasets).
	KPIScope string  `yaml:"kpi_scope" mapstructure:"kpi_scope"`
	MapLat   float64 `yaml:"map_lat" mapstructure:"map_lat"`
	MapLon   float64 `yaml:"map_lon" mapstructure:"map_lon"`
	MapZoom  int     `yaml:"map_zoom" mapstructure:"map_zoom"`
}

// ReportConfig configures the PDF report.
type ReportConfig struct {
	Title        string `yaml:"title" mapstructure:"title"`
	Filename     string `yaml:"filename" mapstructure:"filename"`
	InsightsFile string `yaml:"insights_file" mapstructure:"insights_file"`
	Locale       string `yaml:"locale" mapstructure:"locale"`
}

// StoreConfig configures the report history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite, postgres or none
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit   float64  `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 disables
	RateBurst   int      `yaml:"rate_burst" mapstructure:"rate_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.format", "csv")
	v.SetDefault("dashboard.kpi_scope", "ward")
	v.SetDefault("dashboard.map_lat", 17.274)
	v.SetDefault("dashboard.map_lon", 74.182)
	v.SetDefault("dashboard.map_zoom", 11)
	v.SetDefault("report.title", "Karad Smart City Analytics Report")
	v.SetDefault("report.filename", "Karad_Smart_City_Report.pdf")
	v.SetDefault("report.locale", "en-IN")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "cityanalytics.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks the fields a command mode depends on. Modes: "data"
// (anything that loads datasets), "report", "store" and "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	checkData := func() {
		if c.Data.Dir == "" {
			errs = append(errs, "data.dir is required")
		}
		switch c.Data.Format {
		case "csv", "xlsx":
		default:
			errs = append(errs, fmt.Sprintf("data.format must be csv or xlsx, got %q", c.Data.Format))
		}
		switch c.Dashboard.KPIScope {
		case "ward", "city":
		default:
			errs = append(errs, fmt.Sprintf("dashboard.kpi_scope must be ward or city, got %q", c.Dashboard.KPIScope))
		}
	}
	checkStore := func() {
		switch c.Store.Driver {
		case "none":
		case "sqlite", "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required")
			}
		default:
			errs = append(errs, fmt.Sprintf("store.driver must be sqlite, postgres or none, got %q", c.Store.Driver))
		}
	}
	checkReport := func() {
		if c.Report.Filename == "" {
			errs = append(errs, "report.filename is required")
		}
	}

	switch mode {
	case "data":
		checkData()
	case "report":
		checkData()
		checkReport()
	case "store":
		checkStore()
	case "serve":
		checkData()
		checkReport()
		checkStore()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server.port must be between 1 and 65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server.rate_limit must not be negative")
		}
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
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
