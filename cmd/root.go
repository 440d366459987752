package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"github.com/timvw/plotpipe/internal/codec"
	"github.com/timvw/plotpipe/internal/config"
	"github.com/timvw/plotpipe/internal/logs"
	telem "github.com/timvw/plotpipe/internal/otel"
	"github.com/timvw/plotpipe/internal/session"
)

var (
	// Global flags.
	flagProgram  string
	flagPersist  bool
	flagEndian   string
	flagTerminal string
	flagLogLevel string
)

// Resolved in PersistentPreRunE.
var (
	appCfg   *config.Config
	logger   *slog.Logger
	tel      *telem.Telemetry
	closeLog func() error
	errOut   io.Writer // shared by the logger and the child's stderr
)

var rootCmd = &cobra.Command{
	Use:   "plotpipe",
	Short: "Pipe commands and numeric data into gnuplot",
	Long: `plotpipe drives a gnuplot process over its standard input.

Numbers are sent either as inline binary streams following a plot
directive, or as named here-documents that later commands reference.
gnuplot itself interprets every command; plotpipe only frames the data.

Configuration is loaded from .plotpipe.yaml, ~/.config/plotpipe/config.yaml
or PLOTPIPE_* environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnFinalize(teardown)
	rootCmd.PersistentFlags().StringVar(&flagProgram, "program", "", "gnuplot executable (default: gnuplot)")
	rootCmd.PersistentFlags().BoolVar(&flagPersist, "persist", true, "keep plot windows open after plotpipe exits (gnuplot -p)")
	rootCmd.PersistentFlags().StringVar(&flagEndian, "endian", "", "byte order of binary data: native, little, big")
	rootCmd.PersistentFlags().StringVar(&flagTerminal, "terminal", "", "gnuplot terminal to select before plotting")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// setup loads configuration, applies flag overrides, and starts logging
// and telemetry.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flagProgram != "" {
		cfg.Program = flagProgram
	}
	if flags.Changed("persist") {
		cfg.Persist = &flagPersist
	}
	if flagEndian != "" {
		cfg.ByteOrder, err = codec.ParseEndian(flagEndian)
		if err != nil {
			return err
		}
	}
	if flagTerminal != "" {
		cfg.Terminal = flagTerminal
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	appCfg = cfg

	errOut = newSyncWriter(cmd.ErrOrStderr())
	logger, closeLog, err = logs.New(logs.Options{
		Level: cfg.LogLevel,
		Out:   errOut,
		File:  cfg.LogFile,
	})
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		logger.Debug("loaded config", "path", cfg.ConfigFile)
	}

	telem.Version = Version
	tel, err = telem.Init(cmd.Context(), telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
		Interval: cfg.OTELIntervalDuration,
		Program:  cfg.Program,
	})
	if err != nil {
		logger.Warn("otel init failed", "error", err)
	}
	return nil
}

// teardown flushes telemetry and closes the log file after every command,
// including failed ones.
func teardown() {
	tel.Shutdown(context.Background())
	tel = nil
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
}

// sessionOptions maps the resolved configuration onto session options.
func sessionOptions(cmd *cobra.Command) session.Options {
	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
	}
	return session.Options{
		Program:      appCfg.Program,
		Persist:      appCfg.PersistEnabled(),
		Stdout:       cmd.OutOrStdout(),
		Stderr:       errOut,
		Endian:       appCfg.ByteOrder,
		FlushLines:   appCfg.FlushLines,
		StartupDelay: appCfg.StartupDelayDuration,
		Logger:       logger,
		Metrics:      metrics,
	}
}

// openSession spawns gnuplot and selects the configured terminal.
func openSession(cmd *cobra.Command) (*session.Session, error) {
	s, err := session.Open(cmd.Context(), sessionOptions(cmd))
	if err != nil {
		return nil, err
	}
	if appCfg.Terminal != "" {
		if err := s.Command("set terminal " + appCfg.Terminal); err != nil {
			abortSession(cmd.Context(), s)
			return nil, err
		}
	}
	return s, nil
}

// finishSession closes the input and waits for gnuplot, bounded by the
// configured wait timeout. A timeout leaves gnuplot running.
func finishSession(ctx context.Context, s *session.Session) error {
	if err := s.Close(); err != nil {
		return err
	}
	if appCfg.WaitTimeoutDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, appCfg.WaitTimeoutDuration)
		defer cancel()
	}
	st, err := s.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for gnuplot: %w", err)
	}
	if !st.Exited {
		logger.Warn("gnuplot still running, not waiting any longer", "pid", s.Pid())
		return nil
	}
	if st.ExitCode != 0 {
		return fmt.Errorf("gnuplot exited with status %d", st.ExitCode)
	}
	return nil
}

// abortSession ends a session after a failed write. It waits like
// finishSession so nothing is logged once the command has returned.
func abortSession(ctx context.Context, s *session.Session) {
	if err := finishSession(ctx, s); err != nil {
		logger.Debug("gnuplot ended after error", "error", err)
	}
}

// syncWriter serializes writes from slog and from the goroutine os/exec
// uses to copy the child's stderr when the target is not a file.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newSyncWriter(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return &syncWriter{w: w}
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}
