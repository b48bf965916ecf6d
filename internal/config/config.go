// Package config builds the process-wide configuration once at startup.
// Components receive the values they need through their constructors.
package config

import "time"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Compose ComposeConfig `mapstructure:"compose"`
	Logging LoggingConfig `mapstructure:"logging"`
	QR      QRConfig      `mapstructure:"qr"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode            string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type PathsConfig struct {
	Captured  string `mapstructure:"captured" validate:"required"`
	Templates string `mapstructure:"templates" validate:"required"`
}

type ComposeConfig struct {
	DecodeTimeout   time.Duration `mapstructure:"decode_timeout" validate:"gte=0"`
	JPEGQuality     int           `mapstructure:"jpeg_quality" validate:"min=1,max=100"`
	DefaultTemplate string        `mapstructure:"default_template" validate:"required"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type QRConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	Size    int    `mapstructure:"size" validate:"min=64,max=1024"`
}
