package model

import "errors"

var ErrInvalidTheme = errors.New("model: invalid theme")

type CategoryInfo struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
	Icon  string `json:"icon" yaml:"icon"`
}

type NotificationSettings struct {
	TaskReminders  bool `json:"taskReminders" yaml:"taskReminders"`
	BreakReminders bool `json:"breakReminders" yaml:"breakReminders"`
	DailySummary   bool `json:"dailySummary" yaml:"dailySummary"`
	WeeklyReport   bool `json:"weeklyReport" yaml:"weeklyReport"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

// Settings is everything the settings screens own. The planner reads only
// WorkSchedule and AIPreferences.
type Settings struct {
	WorkSchedule  WorkSchedule         `json:"workSchedule" yaml:"workSchedule"`
	AIPreferences AIPreferences        `json:"aiPreferences" yaml:"aiPreferences"`
	Categories    []CategoryInfo       `json:"categories" yaml:"categories"`
	Notifications NotificationSettings `json:"notifications" yaml:"notifications"`
	Theme         Theme                `json:"theme" yaml:"theme"`
}

func DefaultCategories() []CategoryInfo {
	return []CategoryInfo{
		{ID: "1", Name: string(CategoryWork), Color: "#6366f1", Icon: "💼"},
		{ID: "2", Name: string(CategoryPersonal), Color: "#ec4899", Icon: "🏠"},
		{ID: "3", Name: string(CategoryHealth), Color: "#10b981", Icon: "💪"},
		{ID: "4", Name: string(CategoryLearning), Color: "#8b5cf6", Icon: "📚"},
	}
}

func DefaultNotifications() NotificationSettings {
	return NotificationSettings{
		TaskReminders:  true,
		BreakReminders: true,
		DailySummary:   true,
		WeeklyReport:   false,
	}
}

func DefaultSettings() Settings {
	return Settings{
		WorkSchedule:  DefaultWorkSchedule(),
		AIPreferences: DefaultAIPreferences(),
		Categories:    DefaultCategories(),
		Notifications: DefaultNotifications(),
		Theme:         ThemeSystem,
	}
}

func (s Settings) Preferences() Preferences {
	return NewPreferences(s.WorkSchedule, s.AIPreferences)
}

// Validate checks the scheduling-relevant groups and the theme.
func (s Settings) Validate() error {
	if err := s.Preferences().Validate(); err != nil {
		return err
	}
	if !s.Theme.IsValid() {
		return &InvalidInputError{Field: "Theme", Reason: "theme must be light, dark or system", Err: ErrInvalidTheme}
	}
	return nil
}
