// Package logging builds the zap logger from configuration.
package logging

import (
	"errors"
	"fmt"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/timeboard/internal/config"
)

// New creates a zap logger from the logging configuration. The
// development profile uses the console encoder; production emits JSON.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level

	return zcfg.Build()
}

// Sync flushes buffered entries. Syncing stdout/stderr returns EINVAL
// or ENOTTY on Linux; those are harmless and dropped.
func Sync(logger *zap.Logger) error {
	err := logger.Sync()
	if err == nil {
		return nil
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && (errno == syscall.EINVAL || errno == syscall.ENOTTY) {
		return nil
	}
	return err
}
