package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Done     func(TargetArgs) (Result, error)
	Undo     func(TargetArgs) (Result, error)
	Schedule func(ScheduleArgs) (Result, error)
	Optimize func(OptimizeArgs) (Result, error)
	Show     func(ShowArgs) (Result, error)
}

func missing(name string) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: name + " handler not configured"}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing("add")
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing("done")
		}
		return handlers.Done(*cmd.Target)
	case TypeUndo:
		if handlers.Undo == nil {
			return Result{}, missing("undo")
		}
		return handlers.Undo(*cmd.Target)
	case TypeSchedule:
		if handlers.Schedule == nil {
			return Result{}, missing("schedule")
		}
		return handlers.Schedule(*cmd.Schedule)
	case TypeOptimize:
		if handlers.Optimize == nil {
			return Result{}, missing("optimize")
		}
		return handlers.Optimize(*cmd.Optimize)
	case TypeShow:
		if handlers.Show == nil {
			return Result{}, missing("show")
		}
		return handlers.Show(*cmd.Show)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
