package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/storage"
	"github.com/sandeepkv93/taskwise/internal/views"
)

func (c *CLI) scheduleCmd() *cobra.Command {
	var (
		start          string
		breaks, asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Preview a week schedule for pending tasks without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			opts := app.ScheduleOptions{Breaks: breaks}
			if start != "" {
				d, err := model.ParseDate(start)
				if err != nil {
					return err
				}
				opts.Start = &d
			}
			preview, err := svc.Schedule(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), preview)
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderSchedule(preview.Result, preview.Timeline))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first day of the week (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&breaks, "breaks", false, "insert breaks between tasks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) optimizeCmd() *cobra.Command {
	var apply, asJSON bool
	cmd := &cobra.Command{
		Use:       "optimize [productivity|balance|frontload]",
		Short:     "Optimize the pending tasks for a mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(scheduler.OptimizeProductivity), string(scheduler.OptimizeBalance), string(scheduler.OptimizeFrontload)},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := string(scheduler.OptimizeProductivity)
			if len(args) == 1 {
				raw = args[0]
			}
			mode, err := scheduler.ParseOptimizationMode(raw)
			if err != nil {
				return err
			}
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			opts := app.OptimizeOptions{Apply: apply}
			if isTerminal(cmd.ErrOrStderr()) {
				opts.Progress = func(p float64) {
					fmt.Fprintf(cmd.ErrOrStderr(), "\roptimizing %3.0f%%", p*100)
					if p >= 1 {
						fmt.Fprintln(cmd.ErrOrStderr())
					}
				}
			}
			out, err := svc.Optimize(cmd.Context(), mode, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, views.RenderSchedule(out.Result, out.Result.ScheduledTasks))
			if out.Record != nil {
				fmt.Fprintf(w, "saved %s: %d task(s), efficiency %d%%\n", out.Record.ID, out.Record.TasksOptimized, out.Record.Efficiency)
			} else {
				fmt.Fprintln(w, "preview only; pass --apply to save")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "save the placements and record the run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) dayCmd() *cobra.Command {
	var (
		date   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the half-hour plan for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			d := model.DateOf(svc.Now())
			if date != "" {
				if d, err = model.ParseDate(date); err != nil {
					return err
				}
			}
			plan, err := svc.DayPlan(cmd.Context(), d)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, views.RenderDayPanel(plan, ""))
			if alerts := views.RenderAlerts(plan.Alerts); alerts != "" {
				fmt.Fprintln(w, alerts)
			}
			if md := views.SuggestionsMarkdown("Suggestions", plan.Suggestions); md != "" {
				fmt.Fprintln(w, views.RenderMarkdown(md, markdownStyle(w)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show (YYYY-MM-DD, default today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) remindersCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "List upcoming reminders for the saved plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			events, err := svc.Reminders(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderReminders(events))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *CLI) historyCmd() *cobra.Command {
	var (
		mode   string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show optimization history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			records, err := svc.History(cmd.Context(), storage.OptimizationListFilter{Mode: mode, Limit: limit})
			if err != nil {
				return err
			}
			stats, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				if records == nil {
					records = []storage.OptimizationRecord{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{"records": records, "stats": stats})
			}
			fmt.Fprintln(cmd.OutOrStdout(), views.RenderHistory(views.HistoryData{
				Records:           records,
				Total:             stats.TotalOptimizations,
				AverageEfficiency: stats.AverageEfficiency,
				AverageRating:     stats.AverageRating,
			}))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "only runs of this mode")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.AddCommand(c.rateCmd())
	return cmd
}

func (c *CLI) rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate ID RATING",
		Short: "Rate an optimization run from 1 to 5",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: rating %q is not a number", errUsage, args[1])
			}
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			if err := svc.RateOptimization(cmd.Context(), args[0], rating); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rated %s %d/5\n", args[0], rating)
			return nil
		},
	}
}
