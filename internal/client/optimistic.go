// File: internal/client/optimistic.go
package client

import (
	"context"
	"errors"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrTaskNotCached is returned when a toggle targets a task with no cached copy.
	ErrTaskNotCached = errors.New("task is not cached")
	// ErrTogglePending is returned when a toggle for the task has not settled yet.
	ErrTogglePending = errors.New("status toggle already pending")
)

// speculation holds the copies a toggle replaced, keyed by cache key.
type speculation struct {
	pages  map[string]Task
	record *Task
}

// NextStatus cycles todo -> in-progress -> done -> todo. Unset counts as todo.
func NextStatus(current *task.Status) task.Status {
	if current == nil {
		return task.StatusInProgress
	}
	switch *current {
	case task.StatusInProgress:
		return task.StatusDone
	case task.StatusDone:
		return task.StatusTodo
	default:
		return task.StatusInProgress
	}
}

// BeginStatusToggle applies the next status to every cached copy of the task
// and remembers the copies it replaced.
func (s *Store) BeginStatusToggle(id uuid.UUID) (task.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[id]; busy {
		return "", ErrTogglePending
	}

	current, ok := s.findCached(id)
	if !ok {
		return "", ErrTaskNotCached
	}
	next := NextStatus(current.Status)

	snap := &speculation{pages: make(map[string]Task)}
	for _, key := range s.cache.ListKeys() {
		p, ok := s.cache.Page(key)
		if !ok {
			continue
		}
		i := indexOf(p.Tasks, id)
		if i < 0 {
			continue
		}
		snap.pages[key] = p.Tasks[i]
		s.cache.SetPage(key, p.with(i, withStatus(p.Tasks[i], next)))
	}
	if rec, ok := s.cache.Record(TaskKey(id)); ok {
		prior := *rec
		snap.record = &prior
		speculative := withStatus(prior, next)
		s.cache.SetRecord(TaskKey(id), &speculative)
	}

	s.pending[id] = snap
	return next, nil
}

// Confirm replaces the speculative copies with the server record.
func (s *Store) Confirm(id uuid.UUID, confirmed *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
	s.replaceEverywhere(confirmed)
}

// Revert restores the copies replaced by BeginStatusToggle. Other tasks on
// the same pages keep whatever changed since.
func (s *Store) Revert(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.pending[id]
	if !ok {
		return
	}
	delete(s.pending, id)

	for key, prior := range snap.pages {
		p, ok := s.cache.Page(key)
		if !ok {
			continue
		}
		if i := indexOf(p.Tasks, id); i >= 0 {
			s.cache.SetPage(key, p.with(i, prior))
		}
	}
	if snap.record != nil {
		s.cache.SetRecord(TaskKey(id), snap.record)
	} else {
		s.cache.Delete(TaskKey(id))
	}
}

// ToggleStatus advances the task's status optimistically and settles the
// cache once the server answers.
func (s *Store) ToggleStatus(ctx context.Context, id uuid.UUID) (*Task, error) {
	next, err := s.BeginStatusToggle(id)
	if err != nil {
		return nil, err
	}

	updated, err := s.api.UpdateTask(ctx, id, task.UpdateTaskRequest{Status: &next})
	if err != nil {
		s.logger.Warn("Status toggle rejected, reverting",
			zap.String("task_id", id.String()),
			zap.String("status", string(next)),
			zap.Error(err),
		)
		s.Revert(id)
		return nil, err
	}
	s.Confirm(id, updated)
	return updated, nil
}

// findCached must be called with s.mu held.
func (s *Store) findCached(id uuid.UUID) (Task, bool) {
	if rec, ok := s.cache.Record(TaskKey(id)); ok {
		return *rec, true
	}
	for _, key := range s.cache.ListKeys() {
		if p, ok := s.cache.Page(key); ok {
			if i := indexOf(p.Tasks, id); i >= 0 {
				return p.Tasks[i], true
			}
		}
	}
	return Task{}, false
}

func withStatus(t Task, status task.Status) Task {
	s := status
	t.Status = &s
	return t
}
