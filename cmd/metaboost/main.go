// Command metaboost runs the survival classification pipeline described
// by a YAML run file: load, explore, split, baseline fit, grid search,
// and importance-driven feature reduction. Reports go to stdout, log
// records to stderr and a dated training log.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/oncodata/metaboost/pipeline"
	"github.com/oncodata/metaboost/pkg/log"
)

const logRetention = 28 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "metaboost.yaml", "path to the YAML run description")
	logLevel := flag.String("log-level", "info", "minimum log level: debug, info, warn or error")
	flag.Parse()

	if err := run(*configPath, *logLevel); err != nil {
		fmt.Fprintln(os.Stderr, "metaboost:", err)
		os.Exit(1)
	}
}

func run(configPath, logLevel string) error {
	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output.LogDir, 0o755); err != nil {
		return err
	}
	fileSink, err := log.NewRotatingWriter(cfg.Output.LogDir, "training", logRetention)
	if err != nil {
		return err
	}
	defer fileSink.Close()

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	provider := log.NewZerologProviderWithWriter(parseLevel(logLevel),
		zerolog.MultiLevelWriter(console, fileSink))
	log.SetDefaultProvider(provider)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return pipeline.Run(ctx, cfg, provider.GetLoggerWithName("metaboost"))
}

func parseLevel(s string) log.Level {
	switch strings.ToLower(s) {
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
