package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/headquarters-dev/privatebank/internal/config"
	"github.com/headquarters-dev/privatebank/internal/ledger"
	"github.com/headquarters-dev/privatebank/internal/storage"
)

// Session is the state a command works on: the opened ledger and the
// config it came from. Commands receive it explicitly.
type Session struct {
	Config *config.Config
	Ledger *ledger.Ledger
	Logger *zap.Logger
	Out    io.Writer
}

// openSession loads the config named by the global flags and opens the
// ledger it describes.
func openSession(cmd *cobra.Command, flags *globalFlags) (*Session, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no ledger at %s, run 'privatebank init' first: %w", flags.configPath, err)
		}
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, flags.verbose)
	if err != nil {
		return nil, err
	}

	dir := cfg.StoragePath(flags.configPath)
	if flags.dir != "" {
		dir = flags.dir
	}
	incoming, outgoing, err := cfg.Rates()
	if err != nil {
		return nil, err
	}

	l, err := ledger.Open(cfg.Bank.Name, incoming, outgoing,
		ledger.WithBackend(storage.NewDir(dir, cfg.Storage.Ext)),
		ledger.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	return &Session{
		Config: cfg,
		Ledger: l,
		Logger: logger,
		Out:    cmd.OutOrStdout(),
	}, nil
}

// Close flushes the logger.
func (s *Session) Close() {
	_ = s.Logger.Sync()
}

// Printf writes to the command output.
func (s *Session) Printf(format string, args ...any) {
	fmt.Fprintf(s.Out, format, args...)
}

// newLogger builds a console logger on w. verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("invalid log_level %q: %w", level, err)
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
