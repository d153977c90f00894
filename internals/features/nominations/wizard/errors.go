package wizard

import (
	"errors"
	"fmt"

	"pahla_backend/internals/features/nominations/validation"
)

var (
	ErrBusy             = errors.New("a submission is already in progress")
	ErrNoNomination     = errors.New("complete section A before this step")
	ErrWrongStep        = errors.New("that step is not the current step")
	ErrAlreadySubmitted = errors.New("this nomination has already been submitted")
	ErrSessionNotFound  = errors.New("wizard session not found or expired")
	ErrUnknownStep      = errors.New("unknown step")
)

// LoadFailedNotice is shown when an edit or continue link cannot be loaded.
const LoadFailedNotice = "We could not load that nomination. A new nomination has been started."

// ValidationError carries the field errors that blocked a step.
type ValidationError struct {
	Step   int
	Fields validation.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Fields.Error())
}
