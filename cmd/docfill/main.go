package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/goliatone/go-docfill/internal/cli"
	"github.com/goliatone/go-docfill/internal/ctxlog"
	"github.com/goliatone/go-docfill/pkg/prompt"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		if errors.Is(err, prompt.ErrAborted) {
			stop()
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// run parses args and executes them; documents go to outW and logs to logW.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := cli.NewLogger(opts.LogLevel, opts.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)

	var driver prompt.Driver
	if opts.Interactive {
		driver = prompt.NewSurveyDriver(logW)
	}
	return cli.Run(ctx, opts, outW, driver)
}
