package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
	"github.com/sandeepkv93/taskwise/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd()}
	if m.reminders != nil {
		cmds = append(cmds, waitForReminderCmd(m.reminders.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.body.Width = max(20, typed.Width-4)
		m.body.Height = max(5, typed.Height-10)
		return m, nil
	case spinner.TickMsg:
		if m.Optimizing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case RefreshMsg:
		return m, m.refreshCmd()
	case SnapshotMsg:
		m.Snapshot = typed.Snapshot
		m.syncSelection()
		m.body.SetContent(m.analyticsBody())
		if m.reminders != nil {
			if err := m.reminders.Replace(typed.Snapshot.Reminders); err != nil {
				m.Status = StatusBar{Text: fmt.Sprintf("reminders: %v", err), IsError: true}
			}
		}
		return m, nil
	case OptimizeProgressMsg:
		m.OptimizeProgress = typed.Progress
		if m.Optimizing && m.progress != nil {
			return m, waitForProgressCmd(m.progress)
		}
		return m, nil
	case OptimizeDoneMsg:
		m.Optimizing = false
		m.progress = nil
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: "optimize failed: " + typed.Err.Error(), IsError: true}
			m.notify("Optimize", m.Status.Text, "error")
			return m, nil
		}
		res := typed.Outcome.Result
		text := fmt.Sprintf("optimized %d task(s) in %s mode, %d unscheduled", len(res.ScheduledTasks), typed.Outcome.Mode, len(res.UnscheduledTasks))
		if rec := typed.Outcome.Record; rec != nil {
			text += fmt.Sprintf(", efficiency %d%%", rec.Efficiency)
		}
		m.Status = StatusBar{Text: text}
		m.notify("Optimize", text, "info")
		return m, m.refreshCmd()
	case ReminderDueMsg:
		m.ReminderLog = append(m.ReminderLog, typed.Event)
		if len(m.ReminderLog) > 20 {
			m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
		}
		m.Status = StatusBar{Text: reminderText(typed.Event)}
		m.notify("Reminder", m.Status.Text, "info")
		if m.reminders != nil {
			return m, waitForReminderCmd(m.reminders.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.Palette = CommandPaletteState{Active: true}
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Today:
		m.CurrentView = ViewToday
		return m, nil
	case m.Keys.Planning:
		m.CurrentView = ViewPlanning
		return m, nil
	case m.Keys.Analytics:
		m.CurrentView = ViewAnalytics
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		return m, nil
	case m.Keys.Optimize:
		return m.startOptimize(scheduler.OptimizeProductivity)
	case "r":
		return m, m.refreshCmd()
	case "ctrl+c", m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	switch m.CurrentView {
	case ViewToday:
		return m.handleTodayKey(msg)
	case ViewPlanning:
		if msg.String() == "s" {
			return m.runPreview(false)
		}
		if msg.String() == "b" {
			return m.runPreview(true)
		}
	case ViewAnalytics:
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleTodayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.Cursor++
		m.syncSelection()
	case "k", "up":
		m.Cursor--
		m.syncSelection()
	case "x", " ":
		if m.SelectedTaskID == "" {
			return m, nil
		}
		return m.toggleComplete(m.SelectedTaskID)
	}
	return m, nil
}

func (m Model) toggleComplete(id string) (Model, tea.Cmd) {
	done := false
	for _, t := range m.todayTasks() {
		if t.ID == id {
			done = t.Completed
		}
	}
	var err error
	if done {
		_, err = m.backend.UncompleteTask(m.ctx, id)
	} else {
		_, err = m.backend.CompleteTask(m.ctx, id)
	}
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	if done {
		m.Status = StatusBar{Text: "reopened " + id}
	} else {
		m.Status = StatusBar{Text: "completed " + id}
	}
	return m, m.refreshCmd()
}

func reminderText(ev reminder.Event) string {
	switch ev.Kind {
	case reminder.KindTaskStart:
		return fmt.Sprintf("starting now: %s", ev.Title)
	case reminder.KindBreakStart:
		return "time for a break"
	case reminder.KindDailySummary:
		return "day is done, check today's summary"
	default:
		return fmt.Sprintf("reminder: %s", ev.Title)
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	left, right := "", ""
	switch m.CurrentView {
	case ViewToday:
		left = m.renderTodayView()
		right = m.renderTodaySidebar()
	case ViewPlanning:
		left = m.renderPlanningView()
		right = m.renderPlanningSidebar()
	case ViewAnalytics:
		left = m.body.View()
	}
	if palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.Value()); palette != "" {
		right = strings.TrimSpace(right + "\n\n" + palette)
	}
	if m.HelpVisible {
		right = strings.TrimSpace(right + "\n\n" + m.renderHelpView())
	}

	notification := ""
	if m.Optimizing {
		notification = fmt.Sprintf("optimize: %s %d%%", m.spinner.View(), int(m.OptimizeProgress*100))
	} else if len(m.Notifications) > 0 {
		n := m.Notifications[len(m.Notifications)-1]
		notification = views.RenderNotification(n.Level, n.Body)
	}

	return views.RenderApp(views.AppData{
		Header:       fmt.Sprintf("taskwise | view: %s | selected: %s", m.CurrentView, m.SelectedTaskID),
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   status,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s today | %s planning | %s analytics | %s optimize | / cmd | %s help | %s quit",
			m.Keys.Today, m.Keys.Planning, m.Keys.Analytics, m.Keys.Optimize, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewToday, ViewPlanning, ViewAnalytics:
		return true
	default:
		return false
	}
}
