// Package commands wires the CLI surface of tasker.
package commands

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/pmorel/tasker/internal/archive"
	"github.com/pmorel/tasker/internal/config"
	"github.com/pmorel/tasker/internal/queue"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "tasker",
		Usage: "Queue tasks for unattended execution by an LLM",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewAddCommand(),
			NewListCommand(),
			NewShowCommand(),
			NewDeleteCommand(),
			NewRunCommand(),
			NewAutonomousCommand(),
			NewStatusCommand(),
			NewGatewayCommand(),
			NewSchedulesCommand(),
		},
	}
}

// loadConfig applies the debug flag and loads the configuration.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if cmd.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	return config.Load(cmd.String("config"))
}

// openQueue opens the task store and attaches the completed-task archive.
// An unopenable archive degrades to a queue without history rather than
// blocking queue operations.
func openQueue() (*queue.FileStore, *archive.Archive) {
	store := queue.NewFileStore(config.QueuePath())

	arch, err := archive.Open(config.ArchivePath())
	if err != nil {
		slog.Warn("archive unavailable", "error", err)
		return store, nil
	}
	store.SetArchiver(arch)
	return store, arch
}

func closeArchive(arch *archive.Archive) {
	if arch != nil {
		arch.Close()
	}
}
