package config

import (
	"os"
	"sync"
)

type LoggerConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

var (
	loggerConfig *LoggerConfig
	loggerOnce   sync.Once
)

func LoadLoggerConfig() *LoggerConfig {
	loggerOnce.Do(func() {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "info"
		}
		loggerConfig = &LoggerConfig{
			Level:  level,
			Format: os.Getenv("LOG_FORMAT"),
		}
	})
	return loggerConfig
}
