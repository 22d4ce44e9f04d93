package config

import "time"

// Config represents the root configuration structure.
type Config struct {
	Storage  StorageConfig `yaml:"storage"`
	Source   SourceConfig  `yaml:"source"`
	Settings Settings      `yaml:"settings"`
	Logging  LoggingConfig `yaml:"logging"`
}

// StorageConfig represents the destination object store.
type StorageConfig struct {
	Driver   string `yaml:"driver"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	Secure   bool   `yaml:"secure"`
}

// SourceConfig describes which files are fetched and from where.
// Indexes run over the half-open range [Start, Stop).
type SourceConfig struct {
	URLTemplate  string `yaml:"url_template"`
	FileTemplate string `yaml:"file_template"`
	LocalDir     string `yaml:"local_dir"`
	Start        int    `yaml:"start"`
	Stop         int    `yaml:"stop"`
}

// Settings represents transfer settings.
type Settings struct {
	PartSize uint64        `yaml:"part_size"`
	Timeout  time.Duration `yaml:"timeout"`
	Progress bool          `yaml:"progress"`
}

// LoggingConfig represents logger settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Name       string `yaml:"name"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}
