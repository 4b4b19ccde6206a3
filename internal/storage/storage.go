package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	tferrors "github.com/abatilo/taskflow/internal/errors"
	"github.com/abatilo/taskflow/internal/task"
)

const (
	taskflowDir = ".taskflow"
	fileExt     = ".md"
)

// Store handles task file operations.
type Store struct {
	basePath string
	now      func() time.Time
}

// NewStore creates a Store scoped to the enclosing git project (~/.taskflow/<sanitized-project-root>/).
func NewStore() (*Store, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	projectRoot, err := FindProjectRoot(cwd)
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	return NewStoreWithPath(filepath.Join(home, taskflowDir, SanitizePath(projectRoot))), nil
}

// NewStoreWithPath creates a Store with a custom base path.
func NewStoreWithPath(path string) *Store {
	return &Store{basePath: path, now: func() time.Time { return time.Now().UTC() }}
}

// BasePath returns the base path of the store.
func (s *Store) BasePath() string {
	return s.basePath
}

// IsInitialized checks if the store directory exists.
func (s *Store) IsInitialized() bool {
	info, err := os.Stat(s.basePath)
	return err == nil && info.IsDir()
}

// Init creates the store directory.
func (s *Store) Init(force bool) error {
	if s.IsInitialized() && !force {
		return tferrors.AlreadyInitializedError{}
	}
	return os.MkdirAll(s.basePath, 0o755) //nolint:gosec // User-readable task directory
}

func (s *Store) taskPath(id string) string {
	return filepath.Join(s.basePath, id+fileExt)
}

// Exists checks if a task with the given ID exists.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.taskPath(id))
	return err == nil
}

// Save writes a task to disk.
func (s *Store) Save(t *task.Task) error {
	if !s.IsInitialized() {
		return tferrors.NotInitializedError{}
	}
	if t.ID == "" {
		return fmt.Errorf("save task %q: missing id", t.Title)
	}
	content, err := SerializeMarkdown(t)
	if err != nil {
		return err
	}
	return os.WriteFile(s.taskPath(t.ID), content, 0o644) //nolint:gosec // User-readable task files
}

// Load reads a task from disk.
func (s *Store) Load(id string) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, tferrors.NotInitializedError{}
	}
	content, err := os.ReadFile(s.taskPath(id))
	if os.IsNotExist(err) {
		return nil, tferrors.TaskNotFoundError{ID: id}
	}
	if err != nil {
		return nil, err
	}
	t, err := ParseMarkdown(content)
	if err != nil {
		return nil, fmt.Errorf("parse task %s: %w", id, err)
	}
	return t, nil
}

// Delete removes a task file.
func (s *Store) Delete(id string) error {
	if !s.IsInitialized() {
		return tferrors.NotInitializedError{}
	}
	err := os.Remove(s.taskPath(id))
	if os.IsNotExist(err) {
		return tferrors.TaskNotFoundError{ID: id}
	}
	return err
}

// List returns all tasks matching filter, oldest first.
func (s *Store) List(filter StatusFilter) ([]*task.Task, error) {
	ids, err := s.AllIDs()
	if err != nil {
		return nil, err
	}

	var tasks []*task.Task
	for id := range ids {
		t, loadErr := s.Load(id)
		if loadErr != nil {
			continue // Skip malformed files
		}
		if filter.Matches(t.Status) {
			tasks = append(tasks, t)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// AllIDs returns all task IDs (for ID generation collision checking).
func (s *Store) AllIDs() (map[string]bool, error) {
	if !s.IsInitialized() {
		return nil, tferrors.NotInitializedError{}
	}

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		ids[strings.TrimSuffix(entry.Name(), fileExt)] = true
	}
	return ids, nil
}

// Create assigns a new ID and creation time to a copy of t and saves it.
// It serves both new tasks and copies made when a done task cannot be reopened.
func (s *Store) Create(t *task.Task) (*task.Task, error) {
	if !s.IsInitialized() {
		return nil, tferrors.NotInitializedError{}
	}
	if !task.IsValidStatus(t.Status) {
		return nil, tferrors.InvalidStatusError{Value: t.Status.String()}
	}

	existingIDs, err := s.AllIDs()
	if err != nil {
		return nil, err
	}

	created := t.Clone()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}
	created.ID = task.GenerateID(created.Title, created.CreatedAt, func(id string) bool {
		return existingIDs[id]
	})

	if err = s.Save(created); err != nil {
		return nil, err
	}
	return created, nil
}

// StatusFilter controls which statuses to include in list results.
type StatusFilter struct {
	Statuses []task.Status
}

// Matches returns true if the status should be included. An empty filter matches everything.
func (f StatusFilter) Matches(status task.Status) bool {
	return len(f.Statuses) == 0 || slices.Contains(f.Statuses, status)
}
