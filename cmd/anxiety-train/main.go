// Command anxiety-train fits the anxiety prediction pipeline on a CSV
// dataset and writes the artifact anxietyd serves.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/vi31/anxiety-predictor/internal/infrastructure/dataset"
	"github.com/vi31/anxiety-predictor/internal/infrastructure/ml"
	"github.com/vi31/anxiety-predictor/pkg/observability"
)

type args struct {
	Input          string  `arg:"positional,required" help:"training CSV with the manifest columns and the target"`
	Output         string  `arg:"-o,--output" help:"artifact path"`
	Trees          int     `arg:"--trees" help:"number of trees"`
	MaxDepth       int     `arg:"--max-depth" help:"maximum tree depth, 0 grows fully"`
	MinSamplesLeaf int     `arg:"--min-samples-leaf" help:"minimum rows per leaf"`
	MaxFeatures    float64 `arg:"--max-features" help:"fraction of features tried per split"`
	TestFraction   float64 `arg:"--test-fraction" help:"share of rows held out for scoring"`
	Seed           int64   `arg:"--seed" help:"seed for the split and the forest"`
	Background     int     `arg:"--background" help:"transformed training rows stored for attribution"`
	Version        string  `arg:"--version-tag" help:"model version recorded in the artifact, defaults to a timestamp"`
	Workers        int     `arg:"--workers" help:"concurrent tree fits, 0 uses all CPUs"`
	LogLevel       string  `arg:"--log-level,env:LOG_LEVEL" help:"debug, info, warn or error"`
}

func (args) Description() string {
	return "anxiety-train fits the preprocessing and random forest pipeline and writes a JSON artifact."
}

func main() {
	defaults := ml.DefaultTrainConfig()
	a := args{
		Output:         "model.json",
		Trees:          defaults.Forest.NumTrees,
		MaxDepth:       defaults.Forest.MaxDepth,
		MinSamplesLeaf: defaults.Forest.MinSamplesLeaf,
		MaxFeatures:    defaults.Forest.MaxFeatures,
		TestFraction:   defaults.TestFraction,
		Seed:           defaults.SplitSeed,
		Background:     defaults.BackgroundSize,
		LogLevel:       "info",
	}
	arg.MustParse(&a)

	logger := observability.InitLogger(observability.LogConfig{
		Output:  os.Stderr,
		Level:   a.LogLevel,
		Format:  "text",
		Service: "anxiety-train",
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, a, logger); err != nil {
		logger.Error("training failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a args, logger *slog.Logger) error {
	start := time.Now()

	ds, err := dataset.LoadFile(a.Input)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", "path", a.Input, "rows", ds.Len())

	cfg := ml.DefaultTrainConfig()
	cfg.Forest.NumTrees = a.Trees
	cfg.Forest.MaxDepth = a.MaxDepth
	cfg.Forest.MinSamplesLeaf = a.MinSamplesLeaf
	cfg.Forest.MaxFeatures = a.MaxFeatures
	cfg.Forest.Seed = a.Seed
	cfg.Forest.Workers = a.Workers
	cfg.TestFraction = a.TestFraction
	cfg.SplitSeed = a.Seed
	cfg.BackgroundSize = a.Background
	cfg.Version = a.Version
	cfg.Source = a.Input

	pipeline, err := ml.Train(ctx, ds.Rows, ds.Target, cfg)
	if err != nil {
		return err
	}

	meta := pipeline.Metadata()
	logger.Info("pipeline fitted",
		"version", meta.Version,
		"train_rows", meta.TrainRows,
		"test_rows", meta.TestRows,
		"trees", meta.NumTrees,
		"features_out", len(pipeline.Preprocessor().FeatureNamesOut()),
		"mae", meta.Metrics.MAE,
		"rmse", meta.Metrics.RMSE,
		"r2", meta.Metrics.R2,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)

	if err := ml.SaveFile(a.Output, pipeline); err != nil {
		return err
	}
	logger.Info("artifact written", "path", a.Output)
	return nil
}
