package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// InvalidInputError is returned when data crossing into the planner is malformed.
type InvalidInputError struct {
	Field  string
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Err
}

func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InvalidInputError{Reason: err.Error(), Err: err}
	}
	first := verrs[0]
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return &InvalidInputError{
		Field:  first.Field(),
		Reason: strings.Join(msgs, "; "),
		Err:    sentinelFor(first.Field()),
	}
}

func sentinelFor(field string) error {
	switch field {
	case "Priority":
		return ErrInvalidPriority
	case "EnergyLevel":
		return ErrInvalidEnergy
	case "Duration":
		return ErrInvalidDuration
	case "EnergyType":
		return ErrInvalidEnergyType
	case "SchedulingStyle":
		return ErrInvalidSchedulingStyle
	default:
		return nil
	}
}
