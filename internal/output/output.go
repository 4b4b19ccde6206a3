// Package output renders tasks, boards, and pending transitions for the CLI.
package output

import (
	"github.com/abatilo/taskflow/internal/board"
	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
)

// Formatter defines the interface for output formatting.
type Formatter interface {
	FormatTask(t *task.Task) string
	FormatTaskList(tasks []*task.Task) string
	FormatDerived(t *task.Task, effective task.Status) string
	FormatScenarios(taskID string, tr lifecycle.Transition) string
	FormatBoard(cols []board.Column) string
	FormatSuggestions(suggestions []board.Suggestion) string
	FormatError(err error) string
	FormatMessage(msg string) string
}
