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

// vecbench runs a synthetic decimal workload through the vectorized
// evaluation runtime and reports per-row error statistics.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vecexpr/vecexpr/config"
	"github.com/vecexpr/vecexpr/expression"
	"github.com/vecexpr/vecexpr/metrics"
	"github.com/vecexpr/vecexpr/types"
	"github.com/vecexpr/vecexpr/util/chunk"
	"github.com/vecexpr/vecexpr/util/logutil"
)

var (
	configPath     = flag.String("config", "", "config file path")
	rows           = flag.Int("rows", 0, "rows per batch, defaults to max-batch-size")
	batches        = flag.Int("batches", 100, "number of batches to evaluate")
	nullOnOverflow = flag.Bool("null-on-overflow", true, "null overflowing rows instead of recording errors")
)

func main() {
	flag.Parse()

	cfg := config.NewConfig()
	if *configPath != "" {
		if err := cfg.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}
	config.StoreGlobalConfig(cfg)
	if err := logutil.InitLogger(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	metrics.RegisterMetrics()

	n := *rows
	if n <= 0 {
		n = cfg.MaxBatchSize
	}

	fromType, err := types.DecimalColumnType(12, 2)
	if err != nil {
		logutil.BgLogger().Fatal("bad source type", zap.Error(err))
	}
	toType, err := types.DecimalColumnType(7, 2)
	if err != nil {
		logutil.BgLogger().Fatal("bad target type", zap.Error(err))
	}

	ec := expression.NewExecCtx()
	fn, err := expression.CheckOverflowFunctionClass.GetFunction(sampleArgs(fromType, n))
	if err != nil {
		logutil.BgLogger().Fatal("build function", zap.Error(err))
	}

	totalErrors := 0
	start := time.Now()
	for b := 0; b < *batches; b++ {
		args := sampleArgs(fromType, n)
		sel := chunk.NewSelection(n, true)
		ctx := expression.NewEvalCtx(ec, args)
		ctx.SetThrowOnError(false)

		batchStart := time.Now()
		result, err := fn.Apply(ctx, sel, args, toType, nil)
		metrics.BatchEvalDurationHistogram.Observe(time.Since(batchStart).Seconds())
		if err != nil {
			logutil.BgLogger().Fatal("batch aborted", zap.Int("batch", b), zap.Error(err))
		}
		if errs := ctx.Errors(); errs != nil {
			totalErrors += errs.CountErrors()
		}
		ec.PutColumn(result)
	}
	elapsed := time.Since(start)

	logutil.BgLogger().Info("vecbench done",
		zap.Int("batches", *batches),
		zap.Int("rows-per-batch", n),
		zap.Bool("null-on-overflow", *nullOnOverflow),
		zap.Int("row-errors", totalErrors),
		zap.Duration("elapsed", elapsed))
	fmt.Printf("evaluated %d rows in %v, %d row errors\n", *batches*n, elapsed, totalErrors)
}

// sampleArgs builds one batch: a decimal column where roughly one row in
// eight overflows a (7, 2) target, plus the constant null-on-overflow flag.
func sampleArgs(fromType types.ColumnType, n int) []*chunk.Vector {
	col := chunk.NewColumn(fromType, n)
	for i := 0; i < n; i++ {
		v := rand.Int63n(types.Pow10Narrow(7))
		if rand.Intn(8) == 0 {
			v += types.Pow10Narrow(9)
		}
		col.AppendInt64(v)
	}

	flagCol := chunk.NewColumn(types.Int64Type(), 1)
	if *nullOnOverflow {
		flagCol.AppendInt64(1)
	} else {
		flagCol.AppendInt64(0)
	}
	return []*chunk.Vector{
		chunk.NewFlatVector(col),
		chunk.NewConstantVector(flagCol, n),
	}
}
