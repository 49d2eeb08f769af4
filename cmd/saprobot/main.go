package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lcouto/saprobot/internal/config"
	"github.com/lcouto/saprobot/internal/events"
	"github.com/lcouto/saprobot/internal/input"
	"github.com/lcouto/saprobot/internal/logging"
	"github.com/lcouto/saprobot/internal/runner"
	"github.com/lcouto/saprobot/internal/sapgui"
	"github.com/lcouto/saprobot/internal/storage"
	"github.com/lcouto/saprobot/internal/watch"
	"github.com/lcouto/saprobot/pkg/types"
)

var (
	// Version is set at build time
	version = "dev"
	// BuildTime is set at build time
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "saprobot",
	Short: "SAP ME22N delivery date automation",
	Long: `saprobot updates purchase order delivery dates in SAP ME22N through
SAP GUI Scripting, driven by a tabular input file, and writes a
per-record result CSV for each run.`,
	Version: version,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the input file against the running SAP session",
	Long:  "Process every record of the input file against the already-running, already-authenticated SAP GUI session",
	RunE:  runRun,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and input file",
	Long:  "Validate configuration, check the input file shape, and optionally test the SAP GUI attach and S3 connectivity",
	RunE:  runValidate,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input file and run on every change",
	Long:  "Keep running; whenever the input file is replaced or rewritten, process it as a new batch",
	RunE:  runWatch,
}

func init() {
	// Common flags
	rootCmd.PersistentFlags().String("input-file", config.DefaultInputFile, "Input file with Pedido;Linha;NovaData columns")
	rootCmd.PersistentFlags().String("report-dir", config.DefaultReportDir, "Directory for result CSV files")
	rootCmd.PersistentFlags().String("log-dir", config.DefaultLogDir, "Directory for run log files")
	rootCmd.PersistentFlags().Int("max-attempts", config.DefaultMaxAttempts, "Full restarts per record on failure")
	rootCmd.PersistentFlags().Int("locate-attempts", config.DefaultLocateAttempts, "Polling attempts per UI object lookup")
	rootCmd.PersistentFlags().Duration("locate-interval", config.DefaultLocateIntervalMS*time.Millisecond, "Pause between UI object polls")
	rootCmd.PersistentFlags().Duration("retry-delay", config.DefaultRetryDelaySecs*time.Second, "Pause before restarting a failed record")
	rootCmd.PersistentFlags().StringSlice("blocking-phrases", config.DefaultBlockingPhrases, "SAP informational phrases treated as failures")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	// Watch-specific flags
	watchCmd.Flags().Duration("watch-debounce", config.DefaultWatchDebounceSecs*time.Second, "Debounce window for file change events")

	// Validate-specific flags
	validateCmd.Flags().Bool("test-connection", false, "Test SAP GUI attach and S3 connectivity")
}

func main() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newRunner assembles the runner with its logger-backed sink and
// optional S3 archiver. The returned logger owns the run log file.
func newRunner(cfg *config.Config) (*runner.Runner, *logging.Logger, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewWithFile(logging.RunLogPath(cfg.LogDir, time.Now()), cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}

	var archiver runner.Archiver
	if cfg.S3.Enabled() {
		s3c, err := storage.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Close()
			return nil, nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		archiver = s3c
	}

	sink := events.NewLoggerSink(logger)
	return runner.New(cfg, sapgui.NewComTransport(), sink, archiver), logger, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := config.FromCommand(cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	r, logger, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Starting saprobot v%s (built: %s)", version, buildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// First interrupt requests a cooperative stop at the next record
	// boundary; a second one cancels the context outright.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Interrupção recebida, parando após o registro atual...")
		r.Cancel()
		<-sigCh
		cancel()
	}()

	result, err := r.Run(ctx)
	if err != nil {
		logger.Error("Run failed: %v", err)
		return err
	}

	printSummary(result, logger)

	if result.Status() != types.RunSuccess {
		os.Exit(2)
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.FromCommand(cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	r, logger, err := newRunner(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Starting saprobot v%s in watch mode", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Interrupção recebida, encerrando o modo watch...")
		r.Cancel()
		cancel()
	}()

	sink := events.NewLoggerSink(logger)
	w := watch.New(cfg.InputFile, cfg.WatchDebounce, sink, func(ctx context.Context) error {
		result, err := r.Run(ctx)
		if err != nil {
			return err
		}
		printSummary(result, logger)
		return nil
	})

	return w.Start(ctx)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := config.FromCommand(cmd)

	logger := logging.New(cfg.Verbose)
	defer logger.Close()

	logger.Info("Validating saprobot configuration")

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed: %v", err)
		return err
	}
	if err := cfg.ValidatePaths(); err != nil {
		logger.Error("Path validation failed: %v", err)
		return err
	}

	records, err := input.Load(cfg.InputFile)
	if err != nil {
		logger.Error("Input file validation failed: %v", err)
		return err
	}

	logger.Info("Configuration: OK")
	logger.Info("Input file: OK (%d records)", len(records))

	testConn, _ := cmd.Flags().GetBool("test-connection")
	if testConn {
		sink := events.NewLoggerSink(logger)
		if _, err := sapgui.Connect(sapgui.NewComTransport(), sink); err != nil {
			logger.Error("SAP GUI attach failed: %v", err)
			return err
		}
		logger.Info("SAP GUI attach: OK")

		if cfg.S3.Enabled() {
			s3c, err := storage.NewS3Client(&cfg.S3)
			if err != nil {
				logger.Error("S3 client creation failed: %v", err)
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s3c.CheckConnection(ctx); err != nil {
				logger.Error("S3 connectivity check failed: %v", err)
				return err
			}
			logger.Info("S3 connectivity: OK")
		}
	}

	return nil
}

func printSummary(result *types.RunResult, logger *logging.Logger) {
	minutes := int(result.Duration.Minutes())
	seconds := int(result.Duration.Seconds()) % 60

	logger.Info("%s", strings.Repeat("=", 50))
	logger.Info("Execução %s finalizada (%s)", result.RunID, result.Status())
	logger.Info("Tempo total: %dm %ds", minutes, seconds)
	logger.Info("Registros: %d", result.TotalRecords)
	logger.Info("Sucessos: %d", result.SuccessCount)
	logger.Info("Pulados: %d", result.SkippedCount)
	if result.ErrorCount > 0 {
		logger.Error("Erros: %d", result.ErrorCount)
	}
	if result.Cancelled {
		logger.Info("Execução cancelada antes do fim")
	}
	if result.ReportPath != "" {
		logger.Info("Relatório: %s", result.ReportPath)
	}
	logger.Info("%s", strings.Repeat("=", 50))
}
