package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/pmorel/tasker/internal/config"
	"github.com/pmorel/tasker/internal/queue"
	"github.com/pmorel/tasker/internal/schedules"
)

// NewSchedulesCommand returns the schedules subcommand.
func NewSchedulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "schedules",
		Usage: "Manage recurring task schedules",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a recurring schedule",
				ArgsUsage: "<cron> <description>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "priority",
						Aliases: []string{"p"},
						Usage:   "Priority of created tasks",
						Value:   queue.DefaultPriority,
					},
					&cli.StringSliceFlag{
						Name:    "tags",
						Aliases: []string{"t"},
						Usage:   "Tags for created tasks",
					},
					&cli.IntFlag{
						Name:  "max-runs",
						Usage: "Disable the schedule after this many runs (0 = unlimited)",
					},
				},
				Action: runSchedulesAdd,
			},
			{
				Name:   "list",
				Usage:  "List schedules",
				Action: runSchedulesList,
			},
			{
				Name:      "rm",
				Usage:     "Remove a schedule",
				ArgsUsage: "<schedule_id>",
				Action:    runSchedulesRemove,
			},
		},
		DefaultCommand: "list",
	}
}

func newScheduleStore() *schedules.FileStore {
	return schedules.NewFileStore(config.SchedulesPath())
}

func runSchedulesAdd(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 6 {
		return fmt.Errorf("usage: tasker schedules add <m> <h> <dom> <mon> <dow> <description>")
	}

	cronSpec := strings.Join(args[:5], " ")
	description := strings.Join(args[5:], " ")

	entry := &schedules.Entry{
		CronSpec: cronSpec,
		Template: schedules.Template{
			Description: description,
			Priority:    cmd.Int("priority"),
			Tags:        cmd.StringSlice("tags"),
		},
		Enabled: true,
		MaxRuns: cmd.Int("max-runs"),
	}
	if err := newScheduleStore().Create(entry); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s): %s\n", entry.ID, entry.CronSpec, description)
	return nil
}

func runSchedulesList(_ context.Context, _ *cli.Command) error {
	entries, err := newScheduleStore().List()
	if err != nil {
		return fmt.Errorf("list schedules: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No schedules.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCRON\tENABLED\tRUNS\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n",
			e.ID,
			e.CronSpec,
			e.Enabled,
			e.RunCount,
			e.Template.Description,
		)
	}
	return w.Flush()
}

func runSchedulesRemove(_ context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("usage: tasker schedules rm <schedule_id>")
	}

	if err := newScheduleStore().Delete(id); err != nil {
		return err
	}
	fmt.Printf("Removed %s.\n", id)
	return nil
}
