package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/pmorel/tasker/internal/config"
	"github.com/pmorel/tasker/internal/events"
	"github.com/pmorel/tasker/internal/executor"
	"github.com/pmorel/tasker/internal/heartbeat"
	"github.com/pmorel/tasker/internal/runner"
	"github.com/pmorel/tasker/internal/schedules"
	"github.com/pmorel/tasker/internal/storage"
)

// NewRunCommand returns the run subcommand: one synchronous dispatch.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:   "run",
		Usage:  "Execute the single best pending task and exit",
		Action: runOnce,
	}
}

func runOnce(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, arch := openQueue()
	defer closeArchive(arch)

	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()
	execLog := storage.NewExecLogger(config.ExecLogPath(), bus)
	defer execLog.Close()

	loop := runner.NewPollLoop(store, runner.NewCoordinator(store, exec, bus), bus, cfg.Queue.Interval.Duration())

	outcome, err := loop.RunOnce(ctx)
	if err != nil {
		return err
	}
	if outcome == nil {
		fmt.Println("No pending tasks.")
		return nil
	}
	if outcome.Success {
		fmt.Printf("Completed %s (%d actions).\n", outcome.Task.ID, outcome.Task.Result.ActionsExecuted)
	} else {
		fmt.Printf("Failed %s: %s\n", outcome.Task.ID, outcome.Task.LastError)
	}
	return nil
}

// NewAutonomousCommand returns the autonomous subcommand: the poll loop.
func NewAutonomousCommand() *cli.Command {
	return &cli.Command{
		Name:  "autonomous",
		Usage: "Poll the queue and execute tasks until interrupted",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Time between poll cycles (e.g. 30s, 2m)",
			},
		},
		Action: runAutonomous,
	}
}

func runAutonomous(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	interval := cfg.Queue.Interval.Duration()
	if cmd.IsSet("interval") {
		interval = cmd.Duration("interval")
	}

	store, arch := openQueue()
	defer closeArchive(arch)

	exec, err := newExecutor(cfg)
	if err != nil {
		return err
	}

	bus := events.NewBus(cfg.Events.BufferSize)
	defer bus.Close()
	execLog := storage.NewExecLogger(config.ExecLogPath(), bus)
	defer execLog.Close()

	// Recurring schedules feed the same queue the loop drains.
	sched := schedules.NewScheduler(schedules.NewFileStore(config.SchedulesPath()), store, bus)
	go sched.Run(ctx)

	hb := heartbeat.NewWriter(config.HeartbeatPath(), interval)
	defer hb.Stop()

	loop := runner.NewPollLoop(store, runner.NewCoordinator(store, exec, bus), bus, interval)
	loop.SetHeartbeat(hb)

	fmt.Printf("Autonomous mode: polling every %s. Ctrl-C to stop.\n", interval)
	if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func newExecutor(cfg *config.Config) (*executor.Anthropic, error) {
	return executor.NewAnthropic(executor.Options{
		APIKey:    cfg.Executor.APIKey,
		BaseURL:   cfg.Executor.BaseURL,
		Model:     cfg.Executor.Model,
		MaxTokens: cfg.Executor.MaxTokens,
		Timeout:   cfg.Executor.Timeout.Duration(),
		WorkDir:   cfg.Executor.WorkDir,
	})
}
