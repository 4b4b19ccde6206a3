package main

import (
	"fmt"

	"github.com/abatilo/taskflow/internal/task"
)

// EmptyTitleError indicates a task or subtask was given no title.
type EmptyTitleError struct{}

func (e EmptyTitleError) Error() string {
	return "title is required"
}

// InvalidDateError indicates a date or time flag could not be parsed.
type InvalidDateError struct {
	Flag  string
	Value string
	Err   error
}

func (e InvalidDateError) Error() string {
	return fmt.Sprintf("invalid --%s %q: %v", e.Flag, e.Value, e.Err)
}

func (e InvalidDateError) Unwrap() error {
	return e.Err
}

// DecisionsRequiredError indicates a transition needs answers that were not given.
type DecisionsRequiredError struct {
	From task.Status
	To   task.Status
}

func (e DecisionsRequiredError) Error() string {
	return fmt.Sprintf("%s -> %s needs decisions: pass --choose key=value for each", e.From, e.To)
}
