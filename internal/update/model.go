// Package update holds the bubbletea model for the interactive planner.
package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/taskwise/internal/app"
	"github.com/sandeepkv93/taskwise/internal/model"
	"github.com/sandeepkv93/taskwise/internal/reminder"
	"github.com/sandeepkv93/taskwise/internal/scheduler"
)

type View string

const (
	ViewToday     View = "Today"
	ViewPlanning  View = "Planning"
	ViewAnalytics View = "Analytics"
)

// Backend is the slice of the application service the TUI drives.
type Backend interface {
	Snapshot(ctx context.Context) (app.Snapshot, error)
	AddTask(ctx context.Context, in app.NewTask) (model.Task, error)
	CompleteTask(ctx context.Context, id string) (model.Task, error)
	UncompleteTask(ctx context.Context, id string) (model.Task, error)
	Schedule(ctx context.Context, opts app.ScheduleOptions) (app.Preview, error)
	Optimize(ctx context.Context, mode scheduler.OptimizationMode, opts app.OptimizeOptions) (app.Outcome, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Today     string
	Planning  string
	Analytics string
	Optimize  string
	Help      string
	Quit      string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Model struct {
	CurrentView      View
	Snapshot         app.Snapshot
	Preview          *app.Preview
	Cursor           int
	SelectedTaskID   string
	Palette          CommandPaletteState
	HelpVisible      bool
	Notifications    []Notification
	ReminderLog      []reminder.Event
	DesktopEnabled   bool
	Optimizing       bool
	OptimizeProgress float64
	Status           StatusBar
	Keys             GlobalKeyMap
	Quitting         bool
	LastError        error

	ctx           context.Context
	backend       Backend
	reminders     *reminder.Dispatcher
	notifier      DesktopNotifier
	progress      chan float64
	markdownStyle string

	spinner      spinner.Model
	helpModel    help.Model
	body         viewport.Model
	commandInput textinput.Model
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// RefreshMsg asks the model to reload its snapshot, e.g. after the database
// changed on disk.
type RefreshMsg struct{}

type SnapshotMsg struct {
	Snapshot app.Snapshot
}

type OptimizeProgressMsg struct {
	Progress float64
}

type OptimizeDoneMsg struct {
	Outcome app.Outcome
	Err     error
}

type ReminderDueMsg struct {
	Event reminder.Event
}

type Option func(*Model)

func WithReminders(d *reminder.Dispatcher) Option {
	return func(m *Model) { m.reminders = d }
}

func WithDesktopNotifier(enabled bool, n DesktopNotifier) Option {
	return func(m *Model) {
		m.DesktopEnabled = enabled
		if n != nil {
			m.notifier = n
		}
	}
}

// WithMarkdownStyle picks the glamour style for the analytics body.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) { m.markdownStyle = style }
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func NewModel(backend Backend, opts ...Option) Model {
	m := Model{
		CurrentView: ViewToday,
		ctx:         context.Background(),
		backend:     backend,
		notifier:    NoopDesktopNotifier{},
		Keys: GlobalKeyMap{
			Today:     "1",
			Planning:  "2",
			Analytics: "3",
			Optimize:  "o",
			Help:      "?",
			Quit:      "q",
		},
		markdownStyle: "dark",
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot
	m.helpModel = help.New()
	m.body = viewport.New(96, 18)
	m.commandInput = textinput.New()
	m.commandInput.Prompt = ""
	m.commandInput.Placeholder = "add title dur:45 pri:high"
	return m
}

// todayTasks lists the tasks that start on today's plan, in slot order.
func (m Model) todayTasks() []model.Task {
	out := []model.Task{}
	seen := map[string]bool{}
	for _, slot := range m.Snapshot.Today.Slots {
		if slot.Task == nil || seen[slot.Task.ID] {
			continue
		}
		seen[slot.Task.ID] = true
		out = append(out, *slot.Task)
	}
	return out
}

func (m *Model) syncSelection() {
	tasks := m.todayTasks()
	if len(tasks) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		return
	}
	m.Cursor = max(0, min(m.Cursor, len(tasks)-1))
	m.SelectedTaskID = tasks[m.Cursor].ID
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{Title: title, Body: body, Level: level, At: time.Now().UTC()}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.DesktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}
