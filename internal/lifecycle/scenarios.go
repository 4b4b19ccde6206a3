package lifecycle

import (
	"fmt"
	"slices"
	"time"

	"github.com/abatilo/taskflow/internal/task"
)

// Scenario keys, used as Resolution map keys.
const (
	KeyRequiredSubtasks = "requiredSubtasks"
	KeyDateStrategy     = "dateStrategy"
	KeyRevertDone       = "revertDone"
	KeyDateConflict     = "dateConflict"

	// KeyCustomDate carries the expression for the "custom" date strategy.
	KeyCustomDate = KeyDateStrategy + ".custom"
)

// Option values.
const (
	OptionCancel           = "cancel"
	OptionForceComplete    = "force_complete"
	OptionToday            = "today"
	OptionTomorrow         = "tomorrow"
	OptionNextWeek         = "next_week"
	OptionCustom           = "custom"
	OptionNoDate           = "no_date"
	OptionCreateCopy       = "create_copy"
	OptionTreatAsCompleted = "treat_as_completed"
	OptionTreatAsOverdue   = "treat_as_overdue"
)

// Option is one choice within a scenario.
type Option struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Scenario is a decision a human must make before a transition executes.
type Scenario struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Options []Option `json:"options"`
}

// Allows reports whether value is one of the scenario's options.
func (s Scenario) Allows(value string) bool {
	return slices.ContainsFunc(s.Options, func(o Option) bool {
		return o.Value == value
	})
}

// Resolution maps scenario keys to chosen option values.
type Resolution map[string]string

// Cancelled reports whether any scenario was answered with cancel.
func (r Resolution) Cancelled() bool {
	for k, v := range r {
		if k != KeyCustomDate && v == OptionCancel {
			return true
		}
	}
	return false
}

// Covers reports whether r answers every scenario with an allowed option.
func (r Resolution) Covers(scenarios []Scenario) bool {
	for _, s := range scenarios {
		v, ok := r[s.Key]
		if !ok || !s.Allows(v) {
			return false
		}
	}
	return true
}

// Transition is a requested status change and the decisions it needs.
type Transition struct {
	From      task.Status
	To        task.Status
	Scenarios []Scenario
}

// Catalog decides which transitions need confirmation.
type Catalog struct {
	// DoneRevertible is false when the task provider cannot move a completed
	// item back in place; reverting done then offers to create a copy.
	DoneRevertible bool
}

// Scenarios returns the decisions required to move t from one status to another.
// When several apply they are all returned, in a fixed order, and all must be resolved.
func (c *Catalog) Scenarios(from, to task.Status, t *task.Task, now time.Time) []Scenario {
	if t == nil {
		return nil
	}
	if gate, ok := c.RequiredSubtasksScenario(to, t); ok {
		return []Scenario{gate}
	}

	var out []Scenario
	if needsDateStrategy(to, t) {
		out = append(out, dateStrategyScenario(to))
	}
	if !c.DoneRevertible && isRevertOfDone(from, to) {
		out = append(out, revertDoneScenario(to))
	}
	if conflictsWithDates(to, t, now) {
		out = append(out, dateConflictScenario(to))
	}
	return out
}

// RequiredSubtasksScenario returns the done-gate scenario when moving t to done
// would leave a required subtask incomplete.
func (c *Catalog) RequiredSubtasksScenario(to task.Status, t *task.Task) (Scenario, bool) {
	if to != task.StatusDone || t == nil {
		return Scenario{}, false
	}
	pending := t.IncompleteRequired()
	if len(pending) == 0 {
		return Scenario{}, false
	}
	return Scenario{
		Key:   KeyRequiredSubtasks,
		Title: fmt.Sprintf("%d required subtask(s) are not completed", len(pending)),
		Options: []Option{
			{Label: "Complete anyway", Value: OptionForceComplete, Description: "Mark the task done with required subtasks still open"},
			{Label: "Cancel", Value: OptionCancel},
		},
	}, true
}

func needsDateStrategy(to task.Status, t *task.Task) bool {
	return (to == task.StatusTodo || to == task.StatusInProgress) && !t.HasDates()
}

func isRevertOfDone(from, to task.Status) bool {
	if from != task.StatusDone {
		return false
	}
	switch to {
	case task.StatusBacklog, task.StatusTodo, task.StatusInProgress, task.StatusOverdue:
		return true
	default:
		return false
	}
}

// conflictsWithDates reports whether the task's dates already make it overdue
// while an open status was requested.
func conflictsWithDates(to task.Status, t *task.Task, now time.Time) bool {
	switch to {
	case task.StatusBacklog, task.StatusTodo, task.StatusInProgress:
		return t.HasDates() && deriveFromDates(t, now) == task.StatusOverdue
	default:
		return false
	}
}

func dateStrategyScenario(to task.Status) Scenario {
	return Scenario{
		Key:   KeyDateStrategy,
		Title: fmt.Sprintf("Moving to %s: when does this task start?", to),
		Options: []Option{
			{Label: "Today", Value: OptionToday},
			{Label: "Tomorrow", Value: OptionTomorrow},
			{Label: "Next week", Value: OptionNextWeek},
			{Label: "Custom", Value: OptionCustom, Description: "Pick a date"},
			{Label: "No date", Value: OptionNoDate},
		},
	}
}

func revertDoneScenario(to task.Status) Scenario {
	return Scenario{
		Key:   KeyRevertDone,
		Title: "Completed tasks cannot be reopened in place",
		Options: []Option{
			{
				Label:       "Create a copy",
				Value:       OptionCreateCopy,
				Description: fmt.Sprintf("New task in %s with the same content; the original stays done", to),
			},
			{Label: "Cancel", Value: OptionCancel},
		},
	}
}

func dateConflictScenario(to task.Status) Scenario {
	return Scenario{
		Key:   KeyDateConflict,
		Title: fmt.Sprintf("The due date has passed, so %s would not hold", to),
		Options: []Option{
			{Label: "Mark completed", Value: OptionTreatAsCompleted},
			{Label: "Mark overdue", Value: OptionTreatAsOverdue},
			{Label: "Cancel", Value: OptionCancel},
		},
	}
}
