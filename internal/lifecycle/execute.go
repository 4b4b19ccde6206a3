package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/abatilo/taskflow/internal/task"
	"github.com/abatilo/taskflow/internal/timeparsing"
)

const dateLayout = "2006-01-02"

// Result is the outcome of a resolved transition.
type Result struct {
	// Task is the updated task, or with CreateCopy set, the template of a new
	// task the caller must create. The input task is never modified.
	Task       *task.Task
	CreateCopy bool
	Cancelled  bool
}

// Executor applies resolved transitions.
type Executor struct {
	Catalog *Catalog
	// Actor is recorded as the userId of activity entries.
	Actor string
	// Now defaults to time.Now.
	Now func() time.Time
	// NewID generates activity entry IDs; defaults to a ULID at the given time.
	NewID func(time.Time) string
	// ParseDate resolves the custom date strategy; defaults to timeparsing.ParseDate.
	ParseDate func(expr string, now time.Time) (time.Time, error)
}

// NewExecutor creates an Executor with default clock, IDs and date parsing.
func NewExecutor(catalog *Catalog, actor string) *Executor {
	return &Executor{Catalog: catalog, Actor: actor}
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Executor) newID(at time.Time) string {
	if e.NewID != nil {
		return e.NewID(at)
	}
	return ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()).String()
}

func (e *Executor) catalog() *Catalog {
	if e.Catalog != nil {
		return e.Catalog
	}
	return &Catalog{DoneRevertible: true}
}

// ScenariosFor returns the decisions a transition needs. In create mode the task
// has never been persisted, so the create-copy decision does not apply.
func (e *Executor) ScenariosFor(from, to task.Status, t *task.Task, isCreateMode bool) []Scenario {
	return scenariosFor(e.catalog(), from, to, t, e.now(), isCreateMode)
}

func scenariosFor(c *Catalog, from, to task.Status, t *task.Task, now time.Time, isCreateMode bool) []Scenario {
	all := c.Scenarios(from, to, t, now)
	if !isCreateMode {
		return all
	}
	out := all[:0:0]
	for _, s := range all {
		if s.Key != KeyRevertDone {
			out = append(out, s)
		}
	}
	return out
}

// Execute applies the transition from -> to on a copy of t using res.
// It either applies the whole transition or returns a *TransitionError.
func (e *Executor) Execute(t *task.Task, from, to task.Status, res Resolution, isCreateMode bool) (Result, error) {
	return e.execute(t, from, to, res, func(now time.Time) []Scenario {
		return scenariosFor(e.catalog(), from, to, t, now, isCreateMode)
	})
}

// executePending applies a transition against the scenarios the user was
// shown, rather than ones recomputed at a later clock.
func (e *Executor) executePending(t *task.Task, tr Transition, res Resolution) (Result, error) {
	return e.execute(t, tr.From, tr.To, res, func(time.Time) []Scenario {
		return tr.Scenarios
	})
}

func (e *Executor) execute(
	t *task.Task, from, to task.Status, res Resolution, scenariosAt func(time.Time) []Scenario,
) (Result, error) {
	if t == nil {
		return Result{}, newTransitionError(KindInvalidTransition, from, to, "no task")
	}
	if !task.IsValidStatus(from) || !task.IsValidStatus(to) {
		return Result{}, newTransitionError(KindInvalidTransition, from, to, "unknown status")
	}
	if res.Cancelled() {
		return Result{Task: t.Clone(), Cancelled: true}, nil
	}

	now := e.now()
	forced := res[KeyRequiredSubtasks] == OptionForceComplete
	if to == task.StatusDone {
		if err := checkGate(t, from, to, forced); err != nil {
			return Result{}, err
		}
	}

	scenarios := scenariosAt(now)
	if len(scenarios) > 0 && len(res) == 0 {
		return Result{}, newTransitionError(KindUnsupported, from, to,
			"%d decision(s) required but no resolution was supplied", len(scenarios))
	}
	required := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		v, ok := res[s.Key]
		if !ok {
			return Result{}, newTransitionError(KindInvalidTransition, from, to, "missing choice for %s", s.Key)
		}
		if !s.Allows(v) {
			return Result{}, newTransitionError(KindInvalidTransition, from, to, "%q is not an option for %s", v, s.Key)
		}
		required[s.Key] = true
	}

	out := t.Clone()
	var notes []string

	if required[KeyDateStrategy] {
		start, err := e.pickStart(res[KeyDateStrategy], res[KeyCustomDate], now)
		if err != nil {
			return Result{}, newTransitionError(KindInvalidTransition, from, to, "%v", err)
		}
		if start != nil {
			out.StartDate = start
			out.StartTime = ""
			notes = append(notes, fmt.Sprintf("start date set to %s (%s)", start.Format(dateLayout), res[KeyDateStrategy]))
		} else {
			notes = append(notes, "no date set")
		}
	}

	final := to
	if required[KeyDateConflict] {
		switch res[KeyDateConflict] {
		case OptionTreatAsCompleted:
			final = task.StatusDone
			notes = append(notes, fmt.Sprintf("due date passed; treated as completed instead of %s", to))
		case OptionTreatAsOverdue:
			final = task.StatusOverdue
			notes = append(notes, fmt.Sprintf("due date passed; treated as overdue instead of %s", to))
		}
		if final == task.StatusDone {
			if err := checkGate(t, from, final, false); err != nil {
				return Result{}, err
			}
		}
	}

	if required[KeyRequiredSubtasks] && forced {
		notes = append(notes, fmt.Sprintf("forced with %d required subtask(s) incomplete", len(t.IncompleteRequired())))
	}

	createCopy := required[KeyRevertDone] && res[KeyRevertDone] == OptionCreateCopy
	if createCopy {
		notes = append(notes, fmt.Sprintf("copy of %s; original left done", t.ID))
		out.ID = ""
		out.CreatedAt = time.Time{}
		out.ActivityLog = nil
	}

	out.Status = final
	out.Completed = final == task.StatusDone
	out.ActivityLog = append(out.ActivityLog, task.Activity{
		ID:        e.newID(now),
		Action:    fmt.Sprintf("status %s -> %s", from, final),
		Details:   strings.Join(notes, "; "),
		UserID:    e.Actor,
		Timestamp: now,
	})

	return Result{Task: out, CreateCopy: createCopy}, nil
}

func checkGate(t *task.Task, from, to task.Status, forced bool) error {
	pending := t.IncompleteRequired()
	if len(pending) == 0 || forced {
		return nil
	}
	ids := make([]string, len(pending))
	for i, st := range pending {
		ids[i] = st.ID
	}
	return newTransitionError(KindGateViolation, from, to,
		"required subtasks incomplete: %s", strings.Join(ids, ", "))
}

// pickStart resolves a date strategy to a start date. A nil date means "no date".
func (e *Executor) pickStart(strategy, custom string, now time.Time) (*time.Time, error) {
	today := task.DateOnly(now)
	var d time.Time
	switch strategy {
	case OptionToday:
		d = today
	case OptionTomorrow:
		d = today.AddDate(0, 0, 1)
	case OptionNextWeek:
		d = today.AddDate(0, 0, 7)
	case OptionNoDate:
		return nil, nil //nolint:nilnil // Absence of a date is a valid outcome
	case OptionCustom:
		if strings.TrimSpace(custom) == "" {
			return nil, fmt.Errorf("custom date strategy needs %s", KeyCustomDate)
		}
		parse := e.ParseDate
		if parse == nil {
			parse = timeparsing.ParseDate
		}
		parsed, err := parse(custom, now)
		if err != nil {
			return nil, err
		}
		d = task.DateOnly(parsed)
	default:
		return nil, fmt.Errorf("unknown date strategy %q", strategy)
	}
	return &d, nil
}
