package task

import (
	"fmt"
	"slices"
	"time"
)

// Status represents the stored lifecycle state of a task.
type Status int

const (
	StatusBacklog Status = iota + 1
	StatusTodo
	StatusInProgress
	StatusDone
	StatusOverdue
	StatusArchive
)

// statusNames maps each status to its persisted string form.
//
//nolint:gochecknoglobals // Lookup table for the string boundary
var statusNames = map[Status]string{
	StatusBacklog:    "backlog",
	StatusTodo:       "todo",
	StatusInProgress: "in-progress",
	StatusDone:       "done",
	StatusOverdue:    "overdue",
	StatusArchive:    "archive",
}

// AllStatuses returns every valid status in board order.
func AllStatuses() []Status {
	return []Status{
		StatusBacklog,
		StatusTodo,
		StatusInProgress,
		StatusOverdue,
		StatusDone,
		StatusArchive,
	}
}

// String returns the persisted form of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus converts a persisted status string into a Status.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if name == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("invalid status: %q (valid: backlog, todo, in-progress, done, overdue, archive)", s)
}

// IsValidStatus checks if a status is one of the six known values.
func IsValidStatus(s Status) bool {
	_, ok := statusNames[s]
	return ok
}

// Subtask is a checklist item owned by a task. A required subtask gates done.
type Subtask struct {
	ID                string
	Title             string
	Completed         bool
	RequiredCompleted bool
}

// Activity is one audit trail entry.
type Activity struct {
	ID        string
	Action    string
	Details   string
	UserID    string
	Timestamp time.Time
}

// Task represents a tracked work item.
type Task struct {
	ID          string
	Title       string
	Status      Status
	StartDate   *time.Time // date part only
	StartTime   string     // "15:04", optional
	DueDate     *time.Time // date part only
	DueTime     string     // "15:04", optional
	Completed   bool
	Subtasks    []Subtask
	ActivityLog []Activity
	CreatedAt   time.Time
	Description string
}

// HasDates reports whether either a start or a due date is set.
func (t *Task) HasDates() bool {
	return t.StartDate != nil || t.DueDate != nil
}

// IncompleteRequired returns the required subtasks that are not yet completed.
func (t *Task) IncompleteRequired() []Subtask {
	var out []Subtask
	for _, st := range t.Subtasks {
		if st.RequiredCompleted && !st.Completed {
			out = append(out, st)
		}
	}
	return out
}

// FindSubtask returns the index of the subtask with the given ID, or -1.
func (t *Task) FindSubtask(id string) int {
	return slices.IndexFunc(t.Subtasks, func(st Subtask) bool {
		return st.ID == id
	})
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.StartDate = cloneTime(t.StartDate)
	c.DueDate = cloneTime(t.DueDate)
	c.Subtasks = slices.Clone(t.Subtasks)
	c.ActivityLog = slices.Clone(t.ActivityLog)
	return &c
}

func cloneTime(tm *time.Time) *time.Time {
	if tm == nil {
		return nil
	}
	v := *tm
	return &v
}

// DateOnly truncates a time to midnight in its own location.
func DateOnly(tm time.Time) time.Time {
	y, m, d := tm.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, tm.Location())
}
