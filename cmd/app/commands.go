package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credguard/internal/app"
	"github.com/allisson/credguard/internal/config"
)

func getCommands(version string) []*cli.Command {
	return append(getSystemCommands(version), getKeyCommands()...)
}

// withContainer builds a container from the environment for one command and
// shuts it down afterwards, which flushes any buffered audit events.
func withContainer(run func(ctx context.Context, cmd *cli.Command, c *app.Container) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container := app.NewContainer(config.Load())
		defer func() { _ = container.Shutdown(context.WithoutCancel(ctx)) }()
		return run(ctx, cmd, container)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: text or json",
	}
}
