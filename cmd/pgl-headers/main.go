package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/paulschiretz/pgl-headers/cmd"
	"github.com/paulschiretz/pgl-headers/pkg/buildinfo"
	"github.com/paulschiretz/pgl-headers/pkg/flagparse"
	"github.com/paulschiretz/pgl-headers/pkg/plog"
)

// run encapsulates the main application logic and returns an error if something
// goes wrong, allowing the main function to handle exit codes.
func run(ctx context.Context, args []string, out io.Writer) error {
	command, flagMap, err := flagparse.Parse(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	switch command {
	case flagparse.None:
		return nil // Help was printed.
	case flagparse.Stage:
		return cmd.RunStage(ctx, flagMap, out)
	case flagparse.Check:
		return cmd.RunCheck(ctx, flagMap, out)
	case flagparse.Bundle:
		return cmd.RunBundle(ctx, flagMap, out)
	case flagparse.Init:
		return cmd.RunInit(ctx, flagMap)
	case flagparse.Version:
		return cmd.RunVersion(out, buildinfo.Name, buildinfo.Version)
	default:
		return fmt.Errorf("internal error: unknown command %s", command)
	}
}

func main() {
	// Cancel the run context on Ctrl+C so staging stops before the next file.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		plog.Error(buildinfo.Name+" exited with error", "error", err)
		os.Exit(1)
	}
}
