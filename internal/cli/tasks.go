package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/storage"
	"github.com/sandeepkv93/taskwise/internal/views"
)

func (c *CLI) taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, list and complete tasks",
	}
	cmd.AddCommand(c.taskAddCmd(), c.taskListCmd(), c.taskDoneCmd(true), c.taskDoneCmd(false), c.taskRemoveCmd())
	return cmd
}

func (c *CLI) taskAddCmd() *cobra.Command {
	var (
		category, priority, energy, description, deadline string
		duration                                          int
		asJSON                                            bool
	)
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a pending task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			in := app.NewTask{
				Title:       strings.Join(args, " "),
				Description: description,
				Category:    category,
				Priority:    model.Priority(titleCase(priority)),
				EnergyLevel: model.EnergyLevel(titleCase(energy)),
				Duration:    duration,
			}
			if deadline != "" {
				d, err := model.ParseDate(deadline)
				if err != nil {
					return err
				}
				in.Deadline = &d
			}
			task, err := svc.AddTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), task)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s: %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", string(model.CategoryWork), "task category")
	cmd.Flags().StringVar(&priority, "priority", "medium", "high, medium or low")
	cmd.Flags().StringVar(&energy, "energy", "medium", "energy the task needs: high, medium or low")
	cmd.Flags().IntVar(&duration, "duration", 30, "duration in minutes")
	cmd.Flags().StringVar(&description, "description", "", "free text")
	cmd.Flags().StringVar(&deadline, "deadline", "", "deadline date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored task as JSON")
	return cmd
}

func (c *CLI) taskListCmd() *cobra.Command {
	var (
		category, priority, on string
		pending, asJSON        bool
		limit                  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			filter := storage.TaskListFilter{
				Category: model.NormalizeCategory(category),
				Priority: model.Priority(titleCase(priority)),
				Limit:    limit,
			}
			if pending {
				done := false
				filter.Completed = &done
			}
			if on != "" {
				d, err := model.ParseDate(on)
				if err != nil {
					return err
				}
				filter.ScheduledOn = &d
			}
			tasks, err := svc.Tasks(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				if tasks == nil {
					tasks = []model.Task{}
				}
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderTaskList(tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&priority, "priority", "", "only this priority")
	cmd.Flags().StringVar(&on, "on", "", "only tasks scheduled on this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&pending, "pending", false, "hide completed tasks")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of tasks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) taskDoneCmd(complete bool) *cobra.Command {
	use, short, verb := "done ID", "Mark a task completed", "completed"
	if !complete {
		use, short, verb = "undo ID", "Mark a task pending again", "reopened"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			update := svc.UncompleteTask
			if complete {
				update = svc.CompleteTask
			}
			task, err := update(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", verb, task.ID, task.Title)
			return nil
		},
	}
}

func (c *CLI) taskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			if err := svc.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

// titleCase maps "high" to "High"; empty stays empty so defaults apply.
func titleCase(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
