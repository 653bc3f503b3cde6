package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/commands"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m *Model) closePalette() {
	m.Palette = CommandPaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}

	var follow tea.Cmd
	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.backend.AddTask(m.ctx, app.NewTask{
				Title:       a.Title,
				Category:    orDefault(a.Category, string(model.CategoryWork)),
				Priority:    model.Priority(titleWord(a.Priority)),
				Duration:    a.Duration,
				EnergyLevel: model.EnergyLevel(titleWord(a.Energy)),
			})
			if err != nil {
				return commands.Result{}, err
			}
			follow = m.refreshCmd()
			return commands.Result{Message: fmt.Sprintf("added %s: %s", task.ID, task.Title)}, nil
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			id := m.resolveTarget(a.Target)
			if _, err := m.backend.CompleteTask(m.ctx, id); err != nil {
				return commands.Result{}, err
			}
			follow = m.refreshCmd()
			return commands.Result{Message: "completed " + id}, nil
		},
		Undo: func(a commands.TargetArgs) (commands.Result, error) {
			id := m.resolveTarget(a.Target)
			if _, err := m.backend.UncompleteTask(m.ctx, id); err != nil {
				return commands.Result{}, err
			}
			follow = m.refreshCmd()
			return commands.Result{Message: "reopened " + id}, nil
		},
		Schedule: func(a commands.ScheduleArgs) (commands.Result, error) {
			preview, err := m.backend.Schedule(m.ctx, app.ScheduleOptions{Breaks: a.Breaks})
			if err != nil {
				return commands.Result{}, err
			}
			m.Preview = &preview
			m.CurrentView = ViewPlanning
			return commands.Result{Message: previewText(preview)}, nil
		},
		Optimize: func(a commands.OptimizeArgs) (commands.Result, error) {
			mode, err := scheduler.ParseOptimizationMode(a.Mode)
			if err != nil {
				return commands.Result{}, err
			}
			var next Model
			next, follow = m.startOptimize(mode)
			m = next
			return commands.Result{Message: m.Status.Text}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			switch a.Subject {
			case "today", "reminders":
				m.CurrentView = ViewToday
			case "week", "history":
				m.CurrentView = ViewPlanning
			case "analytics":
				m.CurrentView = ViewAnalytics
			}
			return commands.Result{Message: "showing " + a.Subject}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.notify("Command Failed", err.Error(), "error")
		return m, nil
	}
	m.Status = StatusBar{Text: res.Message}
	m.notify("Command", res.Message, "info")
	return m, follow
}

func (m Model) runPreview(breaks bool) (tea.Model, tea.Cmd) {
	preview, err := m.backend.Schedule(m.ctx, app.ScheduleOptions{Breaks: breaks})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.Preview = &preview
	m.Status = StatusBar{Text: previewText(preview)}
	return m, nil
}

func previewText(p app.Preview) string {
	return fmt.Sprintf("preview: %d placed, %d unscheduled", len(p.Result.ScheduledTasks), len(p.Result.UnscheduledTasks))
}

// resolveTarget maps "selected" or a task title on today's plan to an id.
// Anything else is taken as an id.
func (m Model) resolveTarget(target string) string {
	if strings.EqualFold(target, "selected") && m.SelectedTaskID != "" {
		return m.SelectedTaskID
	}
	for _, t := range m.todayTasks() {
		if strings.EqualFold(t.Title, target) {
			return t.ID
		}
	}
	return target
}

func titleWord(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
