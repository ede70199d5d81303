package structures

import (
	"net/http"
	"time"
)

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type ProfilesConfig struct {
	RootDir     string `yaml:"rootDir" validate:"required|unixPath"`
	DefaultName string `yaml:"defaultName"`
}

type BackupConfig struct {
	AutoBackupEnabled bool          `yaml:"autoBackupEnabled"`
	BackupInterval    time.Duration `yaml:"backupInterval" validate:"required|min:1"`
	MaxBackupCount    int           `yaml:"maxBackupCount" validate:"required|min:1"`
	MaxBackupAge      time.Duration `yaml:"maxBackupAge"`
}

type CatalogConfig struct {
	FileName string `yaml:"fileName" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	Profiles  ProfilesConfig `yaml:"profiles"`
	Backup    BackupConfig   `yaml:"backup"`
	Catalog   CatalogConfig  `yaml:"catalog"`
	WebServer Server         `yaml:"webServer"`
	Logger    LoggerConfig   `yaml:"logger"`
	Cache     CacheConfig    `yaml:"cache"`
	Metrics   MetricsConfig  `yaml:"metrics"`
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Method  string
	Url     string
	Handler http.Handler
}
