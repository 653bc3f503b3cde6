package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/update"
	"github.com/sandeepkv93/taskwise/internal/watch"
)

// startReminders runs a dispatcher loaded with the saved plan's reminders.
func (c *CLI) startReminders(ctx context.Context, svc *app.Service) (*reminder.Dispatcher, error) {
	d := reminder.NewDispatcher(c.cfg.ReminderBuffer, reminder.WithLogger(c.logger.Named("reminder")), reminder.WithClock(svc.Now))
	d.Start(ctx)
	events, err := svc.Reminders(ctx)
	if err != nil {
		d.Stop()
		return nil, err
	}
	if err := d.Replace(events); err != nil {
		d.Stop()
		return nil, err
	}
	return d, nil
}

func (c *CLI) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow the database and print reminders as they fall due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			out := &lockedWriter{w: cmd.OutOrStdout()}

			disp, err := c.startReminders(ctx, svc)
			if err != nil {
				return err
			}
			defer disp.Stop()

			var notifier update.DesktopNotifier = update.NoopDesktopNotifier{}
			if c.cfg.DesktopNotifications {
				notifier = update.ExecDesktopNotifier{}
			}

			summarize := func(ctx context.Context) {
				snap, err := svc.Snapshot(ctx)
				if err != nil {
					c.logger.Warn("reload snapshot", zap.Error(err))
					return
				}
				if err := disp.Replace(snap.Reminders); err != nil {
					c.logger.Warn("reschedule reminders", zap.Error(err))
				}
				out.printf("%s | %d slot(s) | workload %s | efficiency %d%% | %d reminder(s) pending\n",
					snap.Today.Date.Format("Mon Jan 2"), len(snap.Today.Slots), snap.Today.Workload, snap.Today.Efficiency, disp.Pending())
			}

			w, err := watch.New(c.cfg.DBPath, func(ctx context.Context, changes []watch.Change) {
				c.logger.Debug("database changed", zap.Int("events", len(changes)))
				summarize(ctx)
			}, watch.WithDebounce(c.cfg.WatchDebounce), watch.WithLogger(c.logger.Named("watch")))
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			summarize(ctx)
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-disp.C():
					if !ok {
						return nil
					}
					out.printf("[%s] %s: %s\n", ev.TriggerAt.Format("15:04"), ev.Kind, ev.Title)
					if err := notifier.Send(update.Notification{Title: "TaskWise", Body: ev.Title, Level: "info", At: ev.TriggerAt}); err != nil {
						c.logger.Warn("desktop notification", zap.Error(err))
					}
				}
			}
		},
	}
}

func (c *CLI) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive planner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(cmd.OutOrStdout()) {
				return errors.New("tui needs an interactive terminal")
			}
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			disp, err := c.startReminders(ctx, svc)
			if err != nil {
				return err
			}
			defer disp.Stop()

			model := update.NewModel(svc,
				update.WithContext(ctx),
				update.WithReminders(disp),
				update.WithDesktopNotifier(c.cfg.DesktopNotifications, update.ExecDesktopNotifier{}),
				update.WithMarkdownStyle(markdownStyle(cmd.OutOrStdout())),
			)
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

			w, err := watch.New(c.cfg.DBPath, func(context.Context, []watch.Change) {
				program.Send(update.RefreshMsg{})
			}, watch.WithDebounce(c.cfg.WatchDebounce), watch.WithLogger(c.logger.Named("watch")))
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			_, err = program.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

// lockedWriter serializes output from the watcher goroutine and the main
// loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) printf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format, args...)
}
