// Package pending persists a transition awaiting confirmation between CLI
// invocations. A store holds at most one; saving replaces any previous one.
package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abatilo/taskflow/internal/lifecycle"
	"github.com/abatilo/taskflow/internal/task"
)

const pendingFile = "pending.json"

// Pending is a saved AwaitingConfirmation state.
type Pending struct {
	TaskID      string               `json:"task_id"`
	From        string               `json:"from"`
	To          string               `json:"to"`
	Scenarios   []lifecycle.Scenario `json:"scenarios"`
	RequestedAt time.Time            `json:"requested_at"`
}

// FromTransition captures tr for the given task.
func FromTransition(taskID string, tr lifecycle.Transition, at time.Time) *Pending {
	return &Pending{
		TaskID:      taskID,
		From:        tr.From.String(),
		To:          tr.To.String(),
		Scenarios:   tr.Scenarios,
		RequestedAt: at,
	}
}

// Transition converts the saved state back into a lifecycle transition.
func (p *Pending) Transition() (lifecycle.Transition, error) {
	from, err := task.ParseStatus(p.From)
	if err != nil {
		return lifecycle.Transition{}, fmt.Errorf("pending from: %w", err)
	}
	to, err := task.ParseStatus(p.To)
	if err != nil {
		return lifecycle.Transition{}, fmt.Errorf("pending to: %w", err)
	}
	return lifecycle.Transition{From: from, To: to, Scenarios: p.Scenarios}, nil
}

func pendingPath(basePath string) string {
	return filepath.Join(basePath, pendingFile)
}

// Exists checks if a pending transition is saved.
func Exists(basePath string) bool {
	_, err := os.Stat(pendingPath(basePath))
	return err == nil
}

// Load reads the pending transition. A missing file returns an error satisfying os.IsNotExist.
func Load(basePath string) (*Pending, error) {
	data, err := os.ReadFile(pendingPath(basePath))
	if err != nil {
		return nil, err
	}

	var p Pending
	if unmarshalErr := json.Unmarshal(data, &p); unmarshalErr != nil {
		return nil, unmarshalErr
	}
	if p.TaskID == "" {
		return nil, errors.New("pending transition has no task_id")
	}
	return &p, nil
}

// Save writes the pending transition, replacing any existing one.
func Save(basePath string, p *Pending) error {
	//nolint:gosec // G301: 0755 is appropriate for the user's task directory
	if mkdirErr := os.MkdirAll(basePath, 0o755); mkdirErr != nil {
		return mkdirErr
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	//nolint:gosec // G306: 0644 is appropriate for user-readable state files
	return os.WriteFile(pendingPath(basePath), data, 0o644)
}

// Delete removes the pending transition.
func Delete(basePath string) error {
	err := os.Remove(pendingPath(basePath))
	if os.IsNotExist(err) {
		return nil // Already gone, not an error
	}
	return err
}
