// Package board groups tasks into status columns and finds tasks whose
// stored status has drifted from the status their dates imply.
package board

import (
	"sort"
	"time"

	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
)

// Board is a point-in-time view over a set of tasks.
type Board struct {
	tasks map[string]*task.Task
	now   time.Time
}

// Column is one status lane.
type Column struct {
	Status task.Status
	Tasks  []*task.Task
}

// Suggestion pairs a task with the status its dates imply.
type Suggestion struct {
	Task      *task.Task
	Stored    task.Status
	Suggested task.Status
}

// New creates a Board from a list of tasks evaluated at now.
func New(tasks []*task.Task, now time.Time) *Board {
	b := &Board{
		tasks: make(map[string]*task.Task, len(tasks)),
		now:   now,
	}
	for _, t := range tasks {
		b.tasks[t.ID] = t
	}
	return b
}

// Get returns a task by ID.
func (b *Board) Get(id string) *task.Task {
	return b.tasks[id]
}

// Column returns the tasks stored in status s, most urgent first.
func (b *Board) Column(s task.Status) []*task.Task {
	var out []*task.Task
	for _, t := range b.tasks {
		if t.Status == s {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return taskLess(out[i], out[j])
	})
	return out
}

// Columns returns every status lane in board order, including empty ones.
func (b *Board) Columns() []Column {
	statuses := task.AllStatuses()
	cols := make([]Column, len(statuses))
	for i, s := range statuses {
		cols[i] = Column{Status: s, Tasks: b.Column(s)}
	}
	return cols
}

// Suggestions returns tasks whose effective status differs from the stored
// one. Archived tasks are never suggested a change.
func (b *Board) Suggestions() []Suggestion {
	var out []Suggestion
	for _, t := range b.tasks {
		if t.Status == task.StatusArchive {
			continue
		}
		if effective := lifecycle.Derive(t, b.now); effective != t.Status {
			out = append(out, Suggestion{Task: t, Stored: t.Status, Suggested: effective})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return taskLess(out[i].Task, out[j].Task)
	})
	return out
}

// taskLess orders by due date (undated last), then by creation time, then ID.
func taskLess(a, b *task.Task) bool {
	switch {
	case a.DueDate != nil && b.DueDate == nil:
		return true
	case a.DueDate == nil && b.DueDate != nil:
		return false
	case a.DueDate != nil && !a.DueDate.Equal(*b.DueDate):
		return a.DueDate.Before(*b.DueDate)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
