package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverMinio = "minio"
	DriverS3    = "s3"

	defaultDriver       = DriverMinio
	defaultEndpoint     = "localhost:9000"
	defaultBucket       = "project-bucket"
	defaultURLTemplate  = "https://d37ci6vzurychx.cloudfront.net/trip-data/%s"
	defaultFileTemplate = "yellow_tripdata_2025-%02d.parquet"
	defaultLocalDir     = "./yellow_tripdata_2025/"
	defaultStart        = 1
	defaultStop         = 2
	defaultPartSize     = 10 * 1024 * 1024
	defaultTimeout      = 60 * time.Second
	defaultLogLevel     = "info"
	defaultLoggerName   = "tripload"

	// minPartSize is the smallest multipart chunk S3-compatible stores accept.
	minPartSize = 5 * 1024 * 1024
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver:   defaultDriver,
			Endpoint: defaultEndpoint,
			Bucket:   defaultBucket,
		},
		Source: SourceConfig{
			URLTemplate:  defaultURLTemplate,
			FileTemplate: defaultFileTemplate,
			LocalDir:     defaultLocalDir,
			Start:        defaultStart,
			Stop:         defaultStop,
		},
		Settings: Settings{
			PartSize: defaultPartSize,
			Timeout:  defaultTimeout,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
			Name:  defaultLoggerName,
		},
	}
}

// Load reads a YAML config file and overlays it on the built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	expandStorageEnvVars(&cfg.Storage)

	applyDefaults(cfg)

	err = validate(cfg)
	if err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOptional behaves like Load but falls back to the defaults when the
// file does not exist. The boolean reports whether a file was read.
func LoadOptional(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return cfg, true, nil
}

// Dir returns the conf directory next to the running executable, or ./conf
// when the executable has none (go run, tests).
func Dir() string {
	exe, err := os.Executable()
	if err == nil {
		dir := filepath.Join(filepath.Dir(exe), "conf")

		info, statErr := os.Stat(dir)
		if statErr == nil && info.IsDir() {
			return dir
		}
	}

	return "conf"
}

func applyDefaults(cfg *Config) {
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = defaultDriver
	}

	if cfg.Settings.PartSize == 0 {
		cfg.Settings.PartSize = defaultPartSize
	}

	if cfg.Settings.Timeout <= 0 {
		cfg.Settings.Timeout = defaultTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}

	if cfg.Logging.Name == "" {
		cfg.Logging.Name = defaultLoggerName
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case DriverMinio, DriverS3:
	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Storage.Endpoint == "" {
		return fmt.Errorf("storage endpoint is required")
	}

	if cfg.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}

	if !strings.Contains(cfg.Source.URLTemplate, "%s") {
		return fmt.Errorf("source url_template must contain %%s")
	}

	if !strings.Contains(cfg.Source.FileTemplate, "%") {
		return fmt.Errorf("source file_template must contain an index verb")
	}

	if cfg.Source.Stop < cfg.Source.Start {
		return fmt.Errorf("source stop %d is before start %d", cfg.Source.Stop, cfg.Source.Start)
	}

	if cfg.Settings.PartSize < minPartSize {
		return fmt.Errorf("part_size %d is below the %d byte minimum", cfg.Settings.PartSize, minPartSize)
	}

	if cfg.Logging.MaxSize < 0 || cfg.Logging.MaxBackups < 0 || cfg.Logging.MaxAge < 0 {
		return fmt.Errorf("logging rotation limits must be >= 0")
	}

	return nil
}

// FileName returns the object name for the given index.
func (source SourceConfig) FileName(index int) string {
	return fmt.Sprintf(source.FileTemplate, index)
}

// URL returns the download URL for the given file name.
func (source SourceConfig) URL(fileName string) string {
	return fmt.Sprintf(source.URLTemplate, fileName)
}
