package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	os.Exit(realMain(ctx, os.Args[1:], newLibraryPool, DefaultEnv()))
}

// realMain dispatches commands and returns the process exit code.
// Kept separate from main for testability.
func realMain(ctx context.Context, args []string, newPool PoolFactory, env *Environment) int {
	if len(args) > 0 {
		switch args[0] {
		case "version", "--version":
			fmt.Fprintf(env.Stdout, "svg2pdf %s\n", Version)
			return ExitSuccess
		case "help", "-h", "--help":
			if len(args) > 1 && args[1] == "convert" {
				printConvertUsage(env.Stdout)
			} else {
				printUsage(env.Stdout)
			}
			return ExitSuccess
		case "convert":
			args = args[1:]
		}
	}

	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	if err := runConvert(ctx, positional, flags, newPool, env); err != nil {
		fmt.Fprintf(env.Stderr, "%v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}
	return ExitSuccess
}
