package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeDone     Type = "done"
	TypeUndo     Type = "undo"
	TypeSchedule Type = "schedule"
	TypeOptimize Type = "optimize"
	TypeShow     Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// DefaultDuration applies when add has no dur: token.
const DefaultDuration = 30

// AddArgs carries raw attribute values; the service validates them.
type AddArgs struct {
	Title    string
	Category string
	Priority string
	Energy   string
	Duration int
}

type TargetArgs struct {
	Target string
}

type ScheduleArgs struct {
	Breaks bool
}

type OptimizeArgs struct {
	Mode string
}

var showSubjects = []string{"today", "week", "analytics", "history", "reminders"}

type ShowArgs struct {
	Subject string
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Target   *TargetArgs
	Schedule *ScheduleArgs
	Optimize *OptimizeArgs
	Show     *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeUndo:
		return parseTarget(input, Type(head), args)
	case TypeSchedule:
		return parseSchedule(input, args)
	case TypeOptimize:
		return parseOptimize(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// parseAdd reads "add <title words> [cat:X] [pri:X] [energy:X] [dur:45|1h30m]".
func parseAdd(raw string, args []string) (Command, error) {
	add := AddArgs{Duration: DefaultDuration}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, ":")
		if !ok || val == "" {
			words = append(words, arg)
			continue
		}
		switch strings.ToLower(key) {
		case "cat", "category":
			add.Category = val
		case "pri", "priority":
			add.Priority = val
		case "energy", "e":
			add.Energy = val
		case "dur", "duration":
			mins, err := parseMinutes(val)
			if err != nil {
				return Command{}, err
			}
			add.Duration = mins
		default:
			words = append(words, arg)
		}
	}
	add.Title = strings.TrimSpace(strings.Join(words, " "))
	if add.Title == "" {
		return Command{}, invalid("add requires a title")
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &add}, nil
}

func parseMinutes(val string) (int, error) {
	if n, err := strconv.Atoi(val); err == nil {
		if n <= 0 {
			return 0, invalid("duration must be positive: %s", val)
		}
		return n, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil || d < time.Minute {
		return 0, invalid("bad duration: %s", val)
	}
	return int(d / time.Minute), nil
}

func parseTarget(raw string, typ Type, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("%s requires a task id or title", typ)
	}
	return Command{Type: typ, Raw: raw, Target: &TargetArgs{Target: strings.Join(args, " ")}}, nil
}

func parseSchedule(raw string, args []string) (Command, error) {
	sched := ScheduleArgs{}
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "breaks", "+breaks":
			sched.Breaks = true
		default:
			return Command{}, invalid("unknown schedule option: %s", arg)
		}
	}
	return Command{Type: TypeSchedule, Raw: raw, Schedule: &sched}, nil
}

func parseOptimize(raw string, args []string) (Command, error) {
	mode := "productivity"
	if len(args) > 1 {
		return Command{}, invalid("optimize takes at most one mode")
	}
	if len(args) == 1 {
		mode = strings.ToLower(args[0])
	}
	return Command{Type: TypeOptimize, Raw: raw, Optimize: &OptimizeArgs{Mode: mode}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, invalid("show requires a subject (%s)", strings.Join(showSubjects, ", "))
	}
	subject := strings.ToLower(args[0])
	for _, s := range showSubjects {
		if s == subject {
			return Command{Type: TypeShow, Raw: raw, Show: &ShowArgs{Subject: subject}}, nil
		}
	}
	return Command{}, invalid("unknown subject %q (want %s)", subject, strings.Join(showSubjects, ", "))
}
