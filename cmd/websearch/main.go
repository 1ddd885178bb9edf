package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/roowe/websearch/pkg/cli"
	"github.com/roowe/websearch/pkg/search"
)

// Information to find out exactly which commit the binary was built from.
// These are filled at build time with the -X linker flag.
var (
	Tag       = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	version := fmt.Sprintf("%s (commit %s, built %s)", Tag, Commit, BuildTime)
	err := cli.NewRootCmd(version).ExecuteContext(ctx)
	if err != nil {
		red := color.New(color.FgRed)
		fmt.Fprintln(os.Stderr, red.Sprint("Error: ")+err.Error())
		if hint := search.Hint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
