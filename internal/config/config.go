package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Ingest   IngestConfig   `yaml:"ingest" mapstructure:"ingest"`
	OCR      OCRConfig      `yaml:"ocr" mapstructure:"ocr"`
	Monitor  MonitorConfig  `yaml:"monitor" mapstructure:"monitor"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StorageConfig locates per-organization data on disk.
type StorageConfig struct {
	Dir       string `yaml:"dir" mapstructure:"dir"`
	StateFile string `yaml:"state_file" mapstructure:"state_file"`
}

// RegistryConfig selects the tender registry backend.
type RegistryConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// IngestConfig bounds document ingestion.
type IngestConfig struct {
	TempDir       string `yaml:"temp_dir" mapstructure:"temp_dir"`
	MaxDepth      int    `yaml:"max_depth" mapstructure:"max_depth"`
	MaxTotalBytes int64  `yaml:"max_total_bytes" mapstructure:"max_total_bytes"`
	MaxEntries    int    `yaml:"max_entries" mapstructure:"max_entries"`
	TextCharset   string `yaml:"text_charset" mapstructure:"text_charset"`
	Strict        bool   `yaml:"strict" mapstructure:"strict"`
}

// OCRConfig configures PDF text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// MonitorConfig configures monitoring runs across organizations.
type MonitorConfig struct {
	MaxConcurrentOrgs int `yaml:"max_concurrent_orgs" mapstructure:"max_concurrent_orgs"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	// UploadDir confines POST /orgs/{inn}/ingest to files under it.
	// Empty disables HTTP ingestion.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`
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
	v.SetEnvPrefix("TENDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("storage.dir", "organizations")
	v.SetDefault("storage.state_file", "launcher_state.json")
	v.SetDefault("registry.driver", "json")
	v.SetDefault("registry.database_url", "")
	v.SetDefault("registry.max_conns", 10)
	v.SetDefault("registry.min_conns", 2)
	v.SetDefault("ingest.temp_dir", "")
	v.SetDefault("ingest.max_depth", 8)
	v.SetDefault("ingest.max_total_bytes", int64(512<<20))
	v.SetDefault("ingest.max_entries", 10000)
	v.SetDefault("ingest.text_charset", "")
	v.SetDefault("ingest.strict", false)
	v.SetDefault("ocr.provider", "local")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("monitor.max_concurrent_orgs", 4)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.upload_dir", "")
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

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations no component can run with.
func (c *Config) Validate() error {
	switch c.Registry.Driver {
	case "json", "sqlite":
	case "postgres":
		if c.Registry.DatabaseURL == "" {
			return eris.New("config: registry.database_url is required for the postgres driver")
		}
	default:
		return eris.Errorf("config: unknown registry driver %q", c.Registry.Driver)
	}
	if c.Storage.Dir == "" {
		return eris.New("config: storage.dir is required")
	}
	if c.Ingest.MaxDepth < 0 {
		return eris.Errorf("config: ingest.max_depth must be >= 0, got %d", c.Ingest.MaxDepth)
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
