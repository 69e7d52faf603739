// Copyright 2025 The vecexpr Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap"
)

const (
	// DefaultLogLevel is the log level used when the config leaves it empty.
	DefaultLogLevel = "info"
	// DefaultLogFormat is the log format used when the config leaves it
	// empty.
	DefaultLogFormat = "text"
)

// LogConfig is the logging section of the runtime configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string `toml:"level" json:"level"`
	// Format is one of text, json.
	Format string `toml:"format" json:"format"`
	// File configures optional file output with rotation.
	File log.FileLogConfig `toml:"file" json:"file"`
}

// NewLogConfig returns a LogConfig with defaults filled in.
func NewLogConfig() *LogConfig {
	return &LogConfig{
		Level:  DefaultLogLevel,
		Format: DefaultLogFormat,
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg *LogConfig) error {
	level := cfg.Level
	if level == "" {
		level = DefaultLogLevel
	}
	format := cfg.Format
	if format == "" {
		format = DefaultLogFormat
	}
	l, props, err := log.InitLogger(&log.Config{
		Level:  level,
		Format: format,
		File:   cfg.File,
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(l, props)
	return nil
}

// BgLogger returns the global logger for background and library paths.
func BgLogger() *zap.Logger {
	return log.L()
}
