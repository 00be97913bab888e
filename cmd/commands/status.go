package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pmorel/tasker/internal/config"
	"github.com/pmorel/tasker/internal/heartbeat"
)

// NewStatusCommand returns the status subcommand.
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show queue counts and loop liveness",
		Action: runStatus,
	}
}

func runStatus(_ context.Context, _ *cli.Command) error {
	store, arch := openQueue()
	defer closeArchive(arch)

	stats, err := store.Counts()
	if err != nil {
		return fmt.Errorf("count tasks: %w", err)
	}

	fmt.Printf("Pending:     %d\n", stats.Pending)
	fmt.Printf("In progress: %d\n", stats.InProgress)
	fmt.Printf("Failed:      %d\n", stats.Failed)
	fmt.Printf("Total:       %d\n", stats.Total)

	if arch != nil {
		if n, err := arch.CompletedToday(time.Now()); err == nil {
			fmt.Printf("Completed today: %d\n", n)
		}
	}

	status, hb, err := heartbeat.Check(config.HeartbeatPath(), 2*time.Minute)
	if err != nil {
		return fmt.Errorf("check heartbeat: %w", err)
	}
	switch status {
	case heartbeat.StatusAlive:
		fmt.Printf("Loop: ALIVE (PID %d, uptime %s)\n", hb.PID, hb.Uptime)
	case heartbeat.StatusStale:
		fmt.Printf("Loop: STALE (PID %d, last heartbeat %s ago)\n",
			hb.PID, time.Since(hb.Timestamp).Truncate(time.Second))
	case heartbeat.StatusDead:
		fmt.Println("Loop: NOT RUNNING")
	}

	return nil
}
