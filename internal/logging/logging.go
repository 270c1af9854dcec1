// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the pipeline logger: human-readable output on stderr
// plus a persistent JSON log file recording timestamped call-usage lines.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger that tees every entry to stderr (console encoding) and
// to logFile (JSON encoding, appended across runs). The caller owns Sync.
func New(logFile string) (*zap.Logger, error) {
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", logFile, err)
	}

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(f), zapcore.InfoLevel),
	)

	return zap.New(core), nil
}
