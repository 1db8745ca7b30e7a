package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Debug(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Debugf(template string, args ...any)

	Info(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Infof(template string, args ...any)

	Warn(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Warnf(template string, args ...any)

	Error(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Errorf(template string, args ...any)

	Fatal(cat Category, sub SubCategory, msg string, extra map[ExtraKey]any)
	Fatalf(template string, args ...any)

	Sync() error
}

type LoggerConfig struct {
	// FilePath is a directory; empty disables the rotating file sink.
	FilePath string
	Encoding string
	Level    string
	Logger   string
	AppName  string
}

func NewDefaultConfig(appName string) *LoggerConfig {
	return &LoggerConfig{
		Encoding: "json",
		Level:    "info",
		Logger:   "zap",
		AppName:  appName,
	}
}

func NewLogger(cfg *LoggerConfig) (Logger, error) {
	switch cfg.Logger {
	case "", "zap":
		return newZapLogger(cfg)
	case "zerolog":
		return newZeroLogger(cfg)
	}

	return nil, fmt.Errorf("logger not supported: %q (supported loggers: [zap, zerolog])", cfg.Logger)
}

// output returns stdout, teed into a rotating file when a path is configured.
func output(cfg *LoggerConfig) io.Writer {
	if cfg.FilePath == "" {
		return os.Stdout
	}

	name := cfg.AppName
	if name == "" {
		name = "melody"
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.FilePath, name+".log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}

	return io.MultiWriter(os.Stdout, file)
}
