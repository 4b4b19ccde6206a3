package lifecycle

import (
	"errors"
	"fmt"

	"github.com/abatilo/taskflow/internal/task"
)

// ErrorKind classifies a refused transition.
type ErrorKind string

const (
	KindGateViolation     ErrorKind = "gate_violation"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindUnsupported       ErrorKind = "unsupported"
)

// Sentinels for errors.Is matching against a *TransitionError of the same kind.
var (
	ErrGateViolation     = errors.New("gate violation")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnsupported       = errors.New("unsupported transition")
)

// TransitionError is returned when a transition is refused. The task is left untouched.
type TransitionError struct {
	Kind    ErrorKind
	From    task.Status
	To      task.Status
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s -> %s: %s", e.Kind, e.From, e.To, e.Message)
}

// Is matches the sentinel for the error's kind.
func (e *TransitionError) Is(target error) bool {
	switch e.Kind {
	case KindGateViolation:
		return target == ErrGateViolation
	case KindInvalidTransition:
		return target == ErrInvalidTransition
	case KindUnsupported:
		return target == ErrUnsupported
	default:
		return false
	}
}

func newTransitionError(kind ErrorKind, from, to task.Status, format string, args ...any) *TransitionError {
	return &TransitionError{Kind: kind, From: from, To: to, Message: fmt.Sprintf(format, args...)}
}
