// Package lifecycle implements the task status engine: deriving the status a
// task's dates imply, deciding which transitions need a human decision, and
// applying a resolved transition with an audit entry.
//
// Everything here is synchronous and takes "now" explicitly so callers and
// tests control the clock.
package lifecycle

import (
	"time"

	"github.com/abatilo/taskflow/internal/task"
)

const clockLayout = "15:04"

// Derive returns the effective status of t at now. It never returns archive.
//
// Precedence: completed, past due, future start, started, due pending, stored intent.
func Derive(t *task.Task, now time.Time) task.Status {
	if t == nil {
		return task.StatusTodo
	}
	if t.Completed {
		return task.StatusDone
	}
	return deriveFromDates(t, now)
}

// deriveFromDates applies the date rules, ignoring the completed flag.
func deriveFromDates(t *task.Task, now time.Time) task.Status {
	start, hasStart := startInstant(t, now.Location())
	due, hasDue := dueInstant(t, now.Location())

	if hasDue && due.Before(now) {
		return task.StatusOverdue
	}
	if hasStart && start.After(now) {
		return task.StatusBacklog
	}
	if hasStart {
		return task.StatusInProgress
	}
	if hasDue {
		return task.StatusTodo
	}

	switch t.Status {
	case task.StatusBacklog, task.StatusTodo, task.StatusInProgress:
		return t.Status
	default:
		return task.StatusTodo
	}
}

// startInstant combines StartDate with StartTime, defaulting to start of day.
func startInstant(t *task.Task, loc *time.Location) (time.Time, bool) {
	if t.StartDate == nil {
		return time.Time{}, false
	}
	y, m, d := t.StartDate.Date()
	hour, minute, ok := parseClock(t.StartTime)
	if !ok {
		return time.Date(y, m, d, 0, 0, 0, 0, loc), true
	}
	return time.Date(y, m, d, hour, minute, 0, 0, loc), true
}

// dueInstant combines DueDate with DueTime, defaulting to end of day.
func dueInstant(t *task.Task, loc *time.Location) (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	y, m, d := t.DueDate.Date()
	hour, minute, ok := parseClock(t.DueTime)
	if !ok {
		return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc), true
	}
	return time.Date(y, m, d, hour, minute, 0, 0, loc), true
}

// parseClock reads an HH:MM time. Malformed values count as absent.
func parseClock(s string) (int, int, bool) {
	if s == "" {
		return 0, 0, false
	}
	c, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, 0, false
	}
	return c.Hour(), c.Minute(), true
}
