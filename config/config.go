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

package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	atomicutil "go.uber.org/atomic"

	"github.com/vecexpr/vecexpr/util/logutil"
)

// Config contains configuration options.
type Config struct {
	// MaxBatchSize is the default row capacity of one evaluation batch.
	MaxBatchSize int `toml:"max-batch-size" json:"max-batch-size"`
	// CaptureErrorDetails is the default for recording failure causes per
	// row. When false only the error flag is stored.
	CaptureErrorDetails bool `toml:"capture-error-details" json:"capture-error-details"`

	Log         logutil.LogConfig `toml:"log" json:"log"`
	Performance Performance       `toml:"performance" json:"performance"`
}

// Performance is the performance section of the config.
type Performance struct {
	// PoolShards is the shard count of the shared column pool.
	PoolShards int `toml:"pool-shards" json:"pool-shards"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxBatchSize:        1024,
		CaptureErrorDetails: true,
		Log:                 *logutil.NewLogConfig(),
		Performance: Performance{
			PoolShards: 8,
		},
	}
}

// Load loads config options from a toml file.
func (c *Config) Load(confFile string) error {
	_, err := toml.DecodeFile(confFile, c)
	return errors.Trace(err)
}

var globalConf = atomicutil.NewPointer(NewConfig())

// GetGlobalConfig returns the global configuration for this server.
// It should store configuration from command line and configuration file.
// Other parts of the system can read the global configuration use this function.
func GetGlobalConfig() *Config {
	return globalConf.Load()
}

// StoreGlobalConfig stores a new config to the globalConf.
func StoreGlobalConfig(conf *Config) {
	globalConf.Store(conf)
}
