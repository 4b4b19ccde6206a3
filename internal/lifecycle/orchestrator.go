package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/abatilo/taskflow/internal/task"
)

// State is either Idle or AwaitingConfirmation.
type State interface {
	isState()
}

// Idle means no transition is pending.
type Idle struct{}

// AwaitingConfirmation holds the single transition waiting on a human decision.
type AwaitingConfirmation struct {
	Transition Transition
}

func (Idle) isState()                 {}
func (AwaitingConfirmation) isState() {}

// Config wires an Orchestrator to the task it coordinates.
// Task and SetTask are required; everything else is optional.
type Config struct {
	Task    func() *task.Task
	SetTask func(*task.Task)
	// OnSave persists an applied transition.
	OnSave func(ctx context.Context, t *task.Task) error
	// CreateTask creates the copy produced by the create-copy decision.
	CreateTask func(ctx context.Context, t *task.Task) (*task.Task, error)
	// EffectiveStatus is the status the scenario catalog treats as the origin;
	// defaults to the stored status. Same-status checks and activity entries
	// always use the stored status.
	EffectiveStatus func(t *task.Task) task.Status
	Executor        *Executor
	// CreateMode is set while the task has not been persisted yet.
	CreateMode bool
	Logger     *slog.Logger
}

// Orchestrator coordinates status change requests, pausing for confirmation
// when a transition needs decisions. Not safe for concurrent use.
type Orchestrator struct {
	cfg   Config
	exec  *Executor
	log   *slog.Logger
	state State
}

// NewOrchestrator creates an idle Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	exec := cfg.Executor
	if exec == nil {
		exec = NewExecutor(nil, "")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{cfg: cfg, exec: exec, log: logger, state: Idle{}}
}

// State returns the current coordination state.
func (o *Orchestrator) State() State {
	return o.state
}

// Pending returns the transition awaiting confirmation, if any.
func (o *Orchestrator) Pending() (Transition, bool) {
	if aw, ok := o.state.(AwaitingConfirmation); ok {
		return aw.Transition, true
	}
	return Transition{}, false
}

// Resume puts a previously saved transition back into AwaitingConfirmation.
func (o *Orchestrator) Resume(tr Transition) {
	o.state = AwaitingConfirmation{Transition: tr}
}

func (o *Orchestrator) currentStatus(t *task.Task) task.Status {
	if o.cfg.EffectiveStatus != nil {
		return o.cfg.EffectiveStatus(t)
	}
	return t.Status
}

// HandleStatusChange requests a move to status to. Transitions needing no
// decisions are applied immediately; otherwise the orchestrator waits for
// Confirm or Cancel. A new request replaces any pending one.
func (o *Orchestrator) HandleStatusChange(ctx context.Context, to task.Status) error {
	t := o.cfg.Task()
	if t == nil {
		return newTransitionError(KindInvalidTransition, 0, to, "no task")
	}
	from := t.Status
	if !task.IsValidStatus(to) {
		return newTransitionError(KindInvalidTransition, from, to, "unknown status")
	}
	if from == to {
		o.log.Debug("status unchanged", "task", t.ID, "status", to.String())
		return nil
	}

	// Decisions follow the effective status; the audit entry records the stored one.
	var scenarios []Scenario
	if gate, ok := o.exec.catalog().RequiredSubtasksScenario(to, t); ok {
		scenarios = []Scenario{gate}
	} else {
		scenarios = o.exec.ScenariosFor(o.currentStatus(t), to, t, o.cfg.CreateMode)
	}
	tr := Transition{From: from, To: to, Scenarios: scenarios}

	if len(scenarios) == 0 {
		return o.apply(ctx, t, tr, nil)
	}

	if prev, ok := o.Pending(); ok {
		o.log.Debug("replacing pending transition",
			"task", t.ID, "from", prev.From.String(), "to", prev.To.String())
	}
	o.state = AwaitingConfirmation{Transition: tr}
	o.log.Info("transition awaiting confirmation",
		"task", t.ID, "from", from.String(), "to", to.String(), "scenarios", len(scenarios))
	return nil
}

// Confirm resolves the pending transition. Without a pending transition it does
// nothing. An incomplete resolution leaves the state unchanged and returns an
// InvalidTransition error; a cancel choice behaves like Cancel.
func (o *Orchestrator) Confirm(ctx context.Context, res Resolution) error {
	tr, ok := o.Pending()
	if !ok {
		return nil
	}
	if res.Cancelled() {
		o.Cancel()
		return nil
	}
	if !res.Covers(tr.Scenarios) {
		return newTransitionError(KindInvalidTransition, tr.From, tr.To,
			"resolution must answer all %d decision(s)", len(tr.Scenarios))
	}

	t := o.cfg.Task()
	if t == nil {
		return newTransitionError(KindInvalidTransition, tr.From, tr.To, "no task")
	}
	return o.apply(ctx, t, tr, res)
}

// Cancel discards the pending transition without touching the task.
func (o *Orchestrator) Cancel() {
	if tr, ok := o.Pending(); ok {
		o.log.Info("transition cancelled", "from", tr.From.String(), "to", tr.To.String())
	}
	o.state = Idle{}
}

func (o *Orchestrator) apply(ctx context.Context, t *task.Task, tr Transition, res Resolution) error {
	result, err := o.exec.executePending(t, tr, res)
	if err != nil {
		o.log.Warn("transition refused", "task", t.ID, "error", err)
		return err
	}
	if result.Cancelled {
		o.state = Idle{}
		return nil
	}

	if result.CreateCopy {
		if o.cfg.CreateTask == nil {
			return newTransitionError(KindUnsupported, tr.From, tr.To, "no task creator configured for copies")
		}
		created, createErr := o.cfg.CreateTask(ctx, result.Task)
		if createErr != nil {
			return fmt.Errorf("create copy of %s: %w", t.ID, createErr)
		}
		o.state = Idle{}
		if created != nil {
			o.log.Info("created copy instead of reverting done", "task", t.ID, "copy", created.ID)
		}
		return nil
	}

	o.cfg.SetTask(result.Task)
	o.state = Idle{}
	o.log.Info("transition applied", "task", t.ID, "from", tr.From.String(), "to", result.Task.Status.String())

	if o.cfg.OnSave != nil {
		if saveErr := o.cfg.OnSave(ctx, result.Task); saveErr != nil {
			return fmt.Errorf("save task %s: %w", result.Task.ID, saveErr)
		}
	}
	return nil
}
