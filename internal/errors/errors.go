//nolint:revive // Package name intentionally matches stdlib for domain clarity
package errors

import "fmt"

// NotInitializedError indicates the task directory doesn't exist.
type NotInitializedError struct{}

func (e NotInitializedError) Error() string {
	return "taskflow not initialized: run 'taskflow init' first"
}

// AlreadyInitializedError indicates the task directory already exists.
type AlreadyInitializedError struct{}

func (e AlreadyInitializedError) Error() string {
	return "taskflow already initialized"
}

// TaskNotFoundError indicates the task ID doesn't match any file.
type TaskNotFoundError struct {
	ID string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %s", e.ID)
}

// SubtaskNotFoundError indicates the subtask ID doesn't exist on the task.
type SubtaskNotFoundError struct {
	TaskID    string
	SubtaskID string
}

func (e SubtaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s has no subtask %s", e.TaskID, e.SubtaskID)
}

// NotInRepoError indicates the command was run outside a git repository.
type NotInRepoError struct{}

func (e NotInRepoError) Error() string {
	return "not in a git repository (taskflow requires a project root)"
}

// InvalidStatusError indicates a status string outside the known set.
type InvalidStatusError struct {
	Value string
}

func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status: %s (valid: backlog, todo, in-progress, done, overdue, archive)", e.Value)
}

// NoPendingTransitionError indicates confirm was called with nothing pending.
type NoPendingTransitionError struct{}

func (e NoPendingTransitionError) Error() string {
	return "no pending transition: run 'taskflow status <id> <status>' first"
}

// PendingMismatchError indicates the pending transition belongs to another task.
type PendingMismatchError struct {
	ID        string
	PendingID string
}

func (e PendingMismatchError) Error() string {
	return fmt.Sprintf("pending transition is for task %s, not %s", e.PendingID, e.ID)
}
