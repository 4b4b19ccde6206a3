package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abatilo/taskflow/internal/task"
)

// harness plays the view layer: it owns the task and records callback traffic.
type harness struct {
	current *task.Task
	sets    int
	saved   []*task.Task
	created []*task.Task
	saveErr error
}

func (h *harness) orchestrator(revertible bool, mutate func(*Config)) *Orchestrator {
	cfg := Config{
		Task:    func() *task.Task { return h.current },
		SetTask: func(t *task.Task) { h.sets++; h.current = t },
		OnSave: func(_ context.Context, t *task.Task) error {
			h.saved = append(h.saved, t)
			return h.saveErr
		},
		CreateTask: func(_ context.Context, t *task.Task) (*task.Task, error) {
			c := t.Clone()
			c.ID = "copy-1"
			h.created = append(h.created, c)
			return c, nil
		},
		Executor: newTestExecutor(revertible),
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewOrchestrator(cfg)
}

func requirePending(t *testing.T, o *Orchestrator) Transition {
	t.Helper()
	tr, ok := o.Pending()
	require.True(t, ok, "expected AwaitingConfirmation, got %T", o.State())
	return tr
}

func TestOrchestratorRequiredSubtasks(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: gatedTask()}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusDone))
	tr := requirePending(t, o)
	assert.Equal(t, task.StatusTodo, tr.From)
	assert.Equal(t, task.StatusDone, tr.To)
	assert.Equal(t, []string{KeyRequiredSubtasks}, scenarioKeys(tr.Scenarios))

	err := o.Confirm(ctx, Resolution{})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	requirePending(t, o)
	assert.Zero(t, h.sets)
	assert.Empty(t, h.current.ActivityLog)

	require.NoError(t, o.Confirm(ctx, Resolution{KeyRequiredSubtasks: OptionForceComplete}))
	assert.IsType(t, Idle{}, o.State())
	assert.Equal(t, task.StatusDone, h.current.Status)
	assert.True(t, h.current.Completed)
	assert.Len(t, h.current.ActivityLog, 1)
	assert.Len(t, h.saved, 1)
}

func TestOrchestratorDateStrategy(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusBacklog}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusTodo))
	tr := requirePending(t, o)
	require.Len(t, tr.Scenarios, 1)
	assert.Equal(t, KeyDateStrategy, tr.Scenarios[0].Key)

	// Incomplete resolution is a no-op
	assert.Error(t, o.Confirm(ctx, Resolution{}))
	requirePending(t, o)
	assert.Equal(t, task.StatusBacklog, h.current.Status)
	assert.Empty(t, h.current.ActivityLog)
	assert.Empty(t, h.saved)

	require.NoError(t, o.Confirm(ctx, Resolution{KeyDateStrategy: OptionToday}))
	assert.IsType(t, Idle{}, o.State())
	assert.Equal(t, task.StatusTodo, h.current.Status)
	require.NotNil(t, h.current.StartDate)
	assert.Equal(t, *day(0), *h.current.StartDate)
	assert.Len(t, h.current.ActivityLog, 1)
}

func TestOrchestratorRevertDoneCancel(t *testing.T) {
	ctx := context.Background()
	original := &task.Task{ID: "d", Status: task.StatusDone, Completed: true, DueDate: day(4)}
	h := &harness{current: original}
	snapshot := original.Clone()
	o := h.orchestrator(false, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusTodo))
	tr := requirePending(t, o)
	require.Len(t, tr.Scenarios, 1)
	assert.Equal(t, []string{OptionCreateCopy, OptionCancel}, optionValues(tr.Scenarios[0]))

	require.NoError(t, o.Confirm(ctx, Resolution{KeyRevertDone: OptionCancel}))
	assert.IsType(t, Idle{}, o.State())
	assert.Same(t, original, h.current)
	assert.Equal(t, snapshot, h.current)
	assert.Zero(t, h.sets)
	assert.Empty(t, h.saved)
	assert.Empty(t, h.created)
}

func TestOrchestratorRevertDoneCreateCopy(t *testing.T) {
	ctx := context.Background()
	original := &task.Task{ID: "d", Title: "Report", Status: task.StatusDone, Completed: true, DueDate: day(4)}
	h := &harness{current: original}
	snapshot := original.Clone()
	o := h.orchestrator(false, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusInProgress))
	require.NoError(t, o.Confirm(ctx, Resolution{KeyRevertDone: OptionCreateCopy}))

	assert.IsType(t, Idle{}, o.State())
	assert.Equal(t, snapshot, h.current)
	require.Len(t, h.created, 1)
	assert.Equal(t, "Report", h.created[0].Title)
	assert.Equal(t, task.StatusInProgress, h.created[0].Status)
	assert.Len(t, h.created[0].ActivityLog, 1)
	assert.Empty(t, h.saved)
}

func TestOrchestratorCreateCopyWithoutCreator(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "d", Status: task.StatusDone, Completed: true, DueDate: day(4)}}
	o := h.orchestrator(false, func(c *Config) { c.CreateTask = nil })

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusTodo))
	err := o.Confirm(ctx, Resolution{KeyRevertDone: OptionCreateCopy})
	assert.ErrorIs(t, err, ErrUnsupported)
	requirePending(t, o)
}

func TestOrchestratorCancel(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusBacklog}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusInProgress))
	requirePending(t, o)

	o.Cancel()
	assert.IsType(t, Idle{}, o.State())
	assert.Empty(t, h.current.ActivityLog)
	assert.Zero(t, h.sets)

	// Confirm after cancel does nothing
	require.NoError(t, o.Confirm(ctx, Resolution{KeyDateStrategy: OptionToday}))
	assert.Equal(t, task.StatusBacklog, h.current.Status)
}

func TestOrchestratorDirectTransition(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo, StartDate: day(-1), DueDate: day(3)}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusInProgress))
	assert.IsType(t, Idle{}, o.State())
	assert.Equal(t, task.StatusInProgress, h.current.Status)
	assert.Equal(t, 1, h.sets)
	assert.Len(t, h.saved, 1)
	assert.Equal(t, "status todo -> in-progress", h.current.ActivityLog[0].Action)
}

func TestOrchestratorSameStatusIsNoop(t *testing.T) {
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(context.Background(), task.StatusTodo))
	assert.IsType(t, Idle{}, o.State())
	assert.Zero(t, h.sets)
}

func TestOrchestratorLastRequestWins(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusBacklog}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusTodo))
	require.NoError(t, o.HandleStatusChange(ctx, task.StatusInProgress))

	tr := requirePending(t, o)
	assert.Equal(t, task.StatusInProgress, tr.To)

	require.NoError(t, o.Confirm(ctx, Resolution{KeyDateStrategy: OptionNoDate}))
	assert.Equal(t, task.StatusInProgress, h.current.Status)
	assert.Nil(t, h.current.StartDate)
}

func TestOrchestratorEffectiveStatus(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo, DueDate: day(-1)}}
	o := h.orchestrator(true, func(c *Config) {
		c.EffectiveStatus = func(t *task.Task) task.Status { return Derive(t, fixedNow) }
	})

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusInProgress))
	tr := requirePending(t, o)
	assert.Equal(t, task.StatusTodo, tr.From)
	assert.Equal(t, []string{KeyDateConflict}, scenarioKeys(tr.Scenarios))

	require.NoError(t, o.Confirm(ctx, Resolution{KeyDateConflict: OptionTreatAsOverdue}))
	assert.Equal(t, task.StatusOverdue, h.current.Status)
	assert.Equal(t, "status todo -> overdue", h.current.ActivityLog[0].Action)
}

func TestOrchestratorEffectiveStatusDoesNotSwallowRequest(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo, DueDate: day(-1)}}
	o := h.orchestrator(true, func(c *Config) {
		c.EffectiveStatus = func(t *task.Task) task.Status { return Derive(t, fixedNow) }
	})

	// Effective status is already overdue, but the stored one is todo
	require.NoError(t, o.HandleStatusChange(ctx, task.StatusOverdue))
	assert.IsType(t, Idle{}, o.State())
	assert.Equal(t, 1, h.sets)
	assert.Equal(t, task.StatusOverdue, h.current.Status)
	require.Len(t, h.current.ActivityLog, 1)
	assert.Equal(t, "status todo -> overdue", h.current.ActivityLog[0].Action)
	require.Len(t, h.saved, 1)
}

func TestOrchestratorConfirmUsesPendingScenarios(t *testing.T) {
	ctx := context.Background()
	// The due date has passed since the transition was requested, so a fresh
	// catalog lookup would add a date conflict the user never saw.
	h := &harness{current: &task.Task{
		ID:        "t",
		Status:    task.StatusDone,
		Completed: true,
		DueDate:   day(-1),
	}}
	o := h.orchestrator(false, nil)

	o.Resume(Transition{
		From:      task.StatusDone,
		To:        task.StatusTodo,
		Scenarios: []Scenario{revertDoneScenario(task.StatusTodo)},
	})
	require.NoError(t, o.Confirm(ctx, Resolution{KeyRevertDone: OptionCreateCopy}))

	assert.IsType(t, Idle{}, o.State())
	require.Len(t, h.created, 1)
	assert.Equal(t, task.StatusTodo, h.created[0].Status)
	assert.Equal(t, task.StatusDone, h.current.Status)
}

func TestOrchestratorExecutorErrorKeepsPending(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusBacklog}}
	o := h.orchestrator(true, nil)

	require.NoError(t, o.HandleStatusChange(ctx, task.StatusTodo))
	err := o.Confirm(ctx, Resolution{KeyDateStrategy: OptionCustom})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	requirePending(t, o)
	assert.Zero(t, h.sets)
}

func TestOrchestratorSaveError(t *testing.T) {
	ctx := context.Background()
	h := &harness{
		current: &task.Task{ID: "t", Status: task.StatusTodo, DueDate: day(3)},
		saveErr: errors.New("disk full"),
	}
	o := h.orchestrator(true, nil)

	err := o.HandleStatusChange(ctx, task.StatusBacklog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, task.StatusBacklog, h.current.Status)
	assert.IsType(t, Idle{}, o.State())
}

func TestOrchestratorResume(t *testing.T) {
	ctx := context.Background()
	h := &harness{current: gatedTask()}
	o := h.orchestrator(true, nil)

	gate, ok := (&Catalog{}).RequiredSubtasksScenario(task.StatusDone, h.current)
	require.True(t, ok)
	o.Resume(Transition{From: task.StatusTodo, To: task.StatusDone, Scenarios: []Scenario{gate}})
	requirePending(t, o)

	require.NoError(t, o.Confirm(ctx, Resolution{KeyRequiredSubtasks: OptionForceComplete}))
	assert.Equal(t, task.StatusDone, h.current.Status)
}

func TestOrchestratorRejectsInvalidStatus(t *testing.T) {
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo}}
	o := h.orchestrator(true, nil)

	err := o.HandleStatusChange(context.Background(), task.Status(0))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	none := NewOrchestrator(Config{Task: func() *task.Task { return nil }, SetTask: func(*task.Task) {}})
	assert.ErrorIs(t, none.HandleStatusChange(context.Background(), task.StatusDone), ErrInvalidTransition)
}

func TestOrchestratorDefaultsUseWallClock(t *testing.T) {
	h := &harness{current: &task.Task{ID: "t", Status: task.StatusTodo, DueDate: ptr(time.Now().AddDate(1, 0, 0))}}
	o := NewOrchestrator(Config{
		Task:    func() *task.Task { return h.current },
		SetTask: func(t *task.Task) { h.current = t },
	})

	require.NoError(t, o.HandleStatusChange(context.Background(), task.StatusArchive))
	assert.Equal(t, task.StatusArchive, h.current.Status)
}
