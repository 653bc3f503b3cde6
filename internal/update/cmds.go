package update

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

const progressBuffer = 16

func (m Model) refreshCmd() tea.Cmd {
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		if backend == nil {
			return nil
		}
		snap, err := backend.Snapshot(ctx)
		if err != nil {
			return AppErrorMsg{Err: err}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// startOptimize runs the optimizer off the update loop. Progress values are
// forwarded through a buffered channel; values that do not fit are dropped.
func (m Model) startOptimize(mode scheduler.OptimizationMode) (Model, tea.Cmd) {
	if m.Optimizing || m.backend == nil {
		return m, nil
	}
	m.Optimizing = true
	m.OptimizeProgress = 0
	progress := make(chan float64, progressBuffer)
	m.progress = progress

	backend, ctx := m.backend, m.ctx
	run := func() tea.Msg {
		defer close(progress)
		out, err := backend.Optimize(ctx, mode, app.OptimizeOptions{
			Apply: true,
			Progress: func(p float64) {
				select {
				case progress <- p:
				default:
				}
			},
		})
		return OptimizeDoneMsg{Outcome: out, Err: err}
	}
	m.Status = StatusBar{Text: "optimizing (" + string(mode) + ")"}
	return m, tea.Batch(run, waitForProgressCmd(progress), m.spinner.Tick)
}

func waitForProgressCmd(ch <-chan float64) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return OptimizeProgressMsg{Progress: p}
	}
}

func waitForReminderCmd(ch <-chan reminder.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}
