package config

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a logger writing to out and configured from cfg.
func NewLogger(cfg Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)
	if err := ApplyLogger(logger, cfg); err != nil {
		return nil, err
	}
	return logger, nil
}

// ApplyLogger sets the level and formatter of logger from cfg. Empty
// fields leave the logger unchanged.
func ApplyLogger(logger *logrus.Logger, cfg Config) error {
	if cfg.LogLevel.String != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel.String)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	switch cfg.LogFormat.String {
	case LogFormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case LogFormatText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
