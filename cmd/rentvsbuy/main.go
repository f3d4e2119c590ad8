package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cbrunner/rentvsbuy/internal/calculator"
	"github.com/cbrunner/rentvsbuy/internal/config"
	"github.com/cbrunner/rentvsbuy/internal/params"
	"github.com/cbrunner/rentvsbuy/internal/recorder"
	"github.com/cbrunner/rentvsbuy/internal/server"
	"github.com/cbrunner/rentvsbuy/internal/solver"
	"github.com/cbrunner/rentvsbuy/internal/sweep"
	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"github.com/cbrunner/rentvsbuy/pkg/format"
	"github.com/cbrunner/rentvsbuy/pkg/output"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	logFormat := loggingConfig.Format
	if logFormat == "" {
		logFormat = "json"
	}

	var zapConfig zap.Config
	switch logFormat {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", logFormat)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func openRecorder(conf *config.Configuration, logger *zap.Logger) recorder.Recorder {
	if !conf.Recorder.Enabled || conf.Recorder.Path == "" {
		return recorder.Noop{}
	}
	rec, err := recorder.NewSQLiteRecorder(conf.Recorder.Path, logger)
	if err != nil {
		logger.Warn("failed to open run recorder, continuing without persistence",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return recorder.Noop{}
	}
	return rec
}

func validateOutputFormat(outputFormat string) error {
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, outputFormat)
	}
	return nil
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	mode := flag.String("mode", "single", "run mode: single, breakeven, sweep, serve")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	snapshotPath := flag.String("save-snapshot", "", "optional path to write a settings snapshot")
	flag.Parse()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if *snapshotPath != "" {
		if err := config.SaveSnapshot(*snapshotPath, config.NewSnapshot(conf, time.Now())); err != nil {
			logger.Warn("failed to save settings snapshot",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	rec := openRecorder(conf, logger)
	defer func() {
		_ = rec.Close()
	}()

	switch *mode {
	case "single":
		runSingle(conf, logger, rec, outputFormat)
	case "breakeven":
		runBreakeven(conf, logger, rec)
	case "sweep":
		runSweep(conf, logger, rec, outputFormat)
	case "serve":
		runServer(conf, logger)
	default:
		logger.Fatal(fmt.Sprintf("unknown mode %s", *mode),
			zap.String("op", "main"),
		)
	}
}

func runSingle(conf *config.Configuration, logger *zap.Logger, rec recorder.Recorder, outputFormat string) {
	raw, flags := conf.Scenario.RawParameters()
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		logger.Fatal("invalid scenario parameters",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	result, err := calculator.NewEngine(logger).Calculate(canonical)
	if err != nil {
		logger.Fatal("failed to evaluate scenario",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, result)
	}

	if err := rec.RecordEvaluation(&recorder.EvaluationRecord{
		RanAt:             time.Now(),
		PurchasePrice:     canonical.PurchasePrice,
		MonthlyRent:       canonical.MonthlyRent,
		TermYears:         canonical.TermYears,
		Decision:          string(result.Decision),
		ResultValue:       result.ResultValue,
		TotalPurchaseCost: result.TotalPurchaseCost,
		TotalRentalCost:   result.TotalRentalCost,
	}); err != nil {
		logger.Warn("failed to record evaluation",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func runBreakeven(conf *config.Configuration, logger *zap.Logger, rec recorder.Recorder) {
	raw, flags := conf.Scenario.RawParameters()
	opts := conf.Breakeven.SolverOptions()
	if raw.PurchasePrice == 0 {
		raw.PurchasePrice = opts.MinPrice
	}
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		logger.Fatal("invalid scenario parameters",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	result, err := solver.New(logger).FindMaxBid(context.Background(), canonical, flags, opts)
	if err != nil && !errors.Is(err, solver.ErrNoBreakEven) {
		logger.Fatal("break-even search failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if errors.Is(err, solver.ErrNoBreakEven) {
		fmt.Printf("No break-even price in range; best effort %s (advantage %s)\n",
			format.CondensePrice(result.Price), format.Currency(result.Bundle.ResultValue))
	} else {
		fmt.Printf("Maximum bid: %s (advantage %s after %d iterations)\n",
			format.CondensePrice(result.Price), format.Currency(result.Bundle.ResultValue), result.Iterations)
	}

	if err := rec.RecordBreakeven(&recorder.BreakevenRecord{
		RanAt:       time.Now(),
		Price:       result.Price,
		ResultValue: result.Bundle.ResultValue,
		Status:      string(result.Status),
		Iterations:  result.Iterations,
	}); err != nil {
		logger.Warn("failed to record break-even search",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func runSweep(conf *config.Configuration, logger *zap.Logger, rec recorder.Recorder, outputFormat string) {
	raw, flags := conf.Scenario.RawParameters()
	canonical, err := params.Normalize(raw, flags)
	if err != nil {
		logger.Fatal("invalid scenario parameters",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	spec, err := conf.Sweep.SweepSpec(conf.Breakeven.SolverOptions())
	if err != nil {
		logger.Fatal("invalid sweep specification",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	cube, err := sweep.NewEngine(logger).Run(context.Background(), canonical, flags, spec,
		func(completed, total int) {
			logger.Info("sweep progress",
				zap.String("op", "main"),
				zap.Int("completed", completed),
				zap.Int("total", total),
			)
		})
	if err != nil {
		logger.Fatal("sweep failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.SweepPrettyFormat(os.Stdout, cube)
	case constants.OutputFormatCSV:
		output.SweepCsvFormat(os.Stdout, cube)
	}

	if err := rec.RecordSweep(&recorder.SweepRecord{
		RanAt:     time.Now(),
		Mode:      string(cube.Mode),
		Cells:     len(cube.Cells),
		Undefined: cube.Stats.Undefined,
		Min:       cube.Stats.Min,
		Max:       cube.Stats.Max,
		Mean:      cube.Stats.Mean,
		Cancelled: cube.Cancelled,
	}); err != nil {
		logger.Warn("failed to record sweep",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

func runServer(conf *config.Configuration, logger *zap.Logger) {
	address := conf.Server.Address
	if address == "" {
		address = constants.DefaultServerAddress
	}

	handler := server.NewHandler(logger, conf.Server.MaxRequestBytes, version)
	logger.Info("starting API server",
		zap.String("op", "main"),
		zap.String("address", address),
	)
	if err := http.ListenAndServe(address, handler); err != nil {
		logger.Fatal("server exited",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
