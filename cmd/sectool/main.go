package main

import (
	"os"

	"sectool/internal/cli"
	"sectool/internal/command"
	"sectool/internal/config"
	"sectool/internal/dispatch"
	"sectool/internal/logger"
	"sectool/internal/notify"
)

const tool = "sectool"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		// cfg still carries the defaults and environment overrides
		notify.Warningf(os.Stderr, "failed to load config, using defaults: %v", err)
	}
	lg := logger.New(cfg.Log.Level, os.Stderr)

	registry := command.NewRegistry()
	cli.Register(registry, cli.Env{
		Config: cfg,
		Log:    lg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})

	return dispatch.New(tool, registry, dispatch.WithLogger(lg)).Run(args)
}
