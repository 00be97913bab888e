package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/pmorel/tasker/internal/queue"
)

// NewAddCommand returns the add subcommand.
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task to the queue",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "priority",
				Aliases: []string{"p"},
				Usage:   "Priority 1 (low) to 5 (urgent)",
				Value:   queue.DefaultPriority,
			},
			&cli.StringSliceFlag{
				Name:    "tags",
				Aliases: []string{"t"},
				Usage:   "Tags for grouping",
			},
			&cli.StringFlag{
				Name:    "notes",
				Aliases: []string{"n"},
				Usage:   "Extra context handed to the executor",
			},
		},
		Action: runAdd,
	}
}

func runAdd(_ context.Context, cmd *cli.Command) error {
	description := strings.Join(cmd.Args().Slice(), " ")

	store, arch := openQueue()
	defer closeArchive(arch)

	t, err := store.Add(description, cmd.Int("priority"), cmd.StringSlice("tags"), cmd.String("notes"))
	if err != nil {
		return err
	}

	fmt.Printf("Added %s (priority %d): %s\n", t.ID, t.Priority, t.Description)
	return nil
}

// NewListCommand returns the list subcommand.
func NewListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List queued tasks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "Filter by status (pending, in_progress, completed, failed)",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of tasks to show",
			},
		},
		Action: runList,
	}
}

func runList(_ context.Context, cmd *cli.Command) error {
	store, arch := openQueue()
	defer closeArchive(arch)

	list, err := store.List(queue.ListFilter{
		Status: queue.Status(cmd.String("status")),
		Limit:  cmd.Int("limit"),
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRI\tATTEMPTS\tDESCRIPTION")
	for _, t := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
			t.ID,
			t.Status,
			t.Priority,
			t.Attempts,
			t.Description,
		)
	}
	return w.Flush()
}

// NewShowCommand returns the show subcommand.
func NewShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show task details",
		ArgsUsage: "<task_id>",
		Action:    runShow,
	}
}

func runShow(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: tasker show <task_id>")
	}

	store, arch := openQueue()
	defer closeArchive(arch)

	t, err := store.Get(taskID)
	if err != nil {
		return fmt.Errorf("get task: %w", err)
	}

	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Priority:    %d\n", t.Priority)
	fmt.Printf("Attempts:    %d\n", t.Attempts)
	if len(t.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Printf("Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	if t.StartedAt != nil {
		fmt.Printf("Started:     %s\n", t.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if t.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", t.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if t.FailedAt != nil {
		fmt.Printf("Failed:      %s\n", t.FailedAt.Format("2006-01-02 15:04:05"))
	}
	if t.LastError != "" {
		fmt.Printf("Last error:  %s\n", t.LastError)
	}
	if t.Notes != "" {
		fmt.Printf("\nNotes:\n%s\n", t.Notes)
	}
	if t.Result != nil {
		fmt.Printf("\nActions executed: %d\n", t.Result.ActionsExecuted)
		for _, r := range t.Result.Results {
			status := "ok"
			if r.Error != "" {
				status = "error: " + r.Error
			}
			fmt.Printf("  [%s] %s: %s\n", r.Kind, r.Detail, status)
		}
	}
	return nil
}

// NewDeleteCommand returns the delete subcommand.
func NewDeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Remove a task from the queue",
		ArgsUsage: "<task_id>",
		Action:    runDelete,
	}
}

func runDelete(_ context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("usage: tasker delete <task_id>")
	}

	store, arch := openQueue()
	defer closeArchive(arch)

	deleted, err := store.Delete(taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !deleted {
		fmt.Printf("No task %s in the queue.\n", taskID)
		return nil
	}
	fmt.Printf("Deleted %s.\n", taskID)
	return nil
}
