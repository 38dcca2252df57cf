package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var defaultConfigPaths = []string{
	"/etc/lpframe/config.yaml",
	"~/.config/lpframe/config.yaml",
}

// CLI is the lpframe command tree.
type CLI struct {
	Config  kong.ConfigFlag `help:"Config file (YAML, JSON or CUE)" short:"c" env:"LPFRAME_CONFIG"`
	Verbose int             `help:"Increase log verbosity (-v info, -vv debug)" short:"v" type:"counter"`
	LogFile string          `help:"Write logs to this file instead of stderr" env:"LPFRAME_LOG_FILE"`
	NoColor bool            `help:"Disable coloured log output" env:"NO_COLOR"`

	Serve   ServeCLI   `cmd:"serve" help:"Answer block sequences on a socket"`
	Send    SendCLI    `cmd:"send" help:"Send one block sequence and print the replies"`
	Demo    DemoCLI    `cmd:"demo" help:"Encode and decode a sample sequence in memory"`
	Encode  EncodeCLI  `cmd:"encode" help:"Write messages as a block sequence"`
	Inspect InspectCLI `cmd:"inspect" help:"Decode a captured stream frame by frame"`
}

func main() {
	var cli CLI
	ktx := kong.Parse(&cli,
		kong.Name("lpframe"),
		kong.Description("Length-prefixed block sequences over stream sockets."),
		kong.UsageOnError(),
		kong.Configuration(configLoader, defaultConfigPaths...),
	)

	logger, closeLog, err := newLogger(cli.Verbose, cli.LogFile, cli.NoColor)
	ktx.FatalIfErrorf(err)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ktx.BindTo(ctx, (*context.Context)(nil))
	ktx.BindTo(os.Stdout, (*io.Writer)(nil))
	err = ktx.Run(logger)
	if err != nil {
		logger.Error("command failed", "error", err)
		stop()
		closeLog()
		os.Exit(1)
	}
}

// newLogger builds the tint handler. Colour is used only on a terminal.
func newLogger(verbose int, logFile string, noColor bool) (*slog.Logger, func(), error) {
	var level slog.Level
	switch verbose {
	case 0:
		level = slog.LevelWarn
	case 1:
		level = slog.LevelInfo
	default: // 2+
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closer := func() {}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = func() { _ = f.Close() }
		noColor = true
	} else if !term.IsTerminal(int(os.Stderr.Fd())) {
		noColor = true
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	return slog.New(handler), closer, nil
}
