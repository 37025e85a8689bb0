// File: internal/client/store.go
package client

import (
	"context"
	"sync"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store threads the response cache through every data-access call and keeps
// cached pages in step with successful mutations.
type Store struct {
	api    *Client
	cache  *Cache
	logger *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]*speculation
}

// NewStore creates a store over api. A nil logger is replaced by a no-op.
func NewStore(api *Client, ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		api:     api,
		cache:   NewCache(ttl),
		logger:  logger.Named("task_store"),
		pending: make(map[uuid.UUID]*speculation),
	}
}

// Cache exposes the underlying cache.
func (s *Store) Cache() *Cache {
	return s.cache
}

// ListTasks returns the cached page for params, fetching it on a miss.
func (s *Store) ListTasks(ctx context.Context, params ListParams) (*Page, error) {
	key := ListKey(params)
	if p, ok := s.cache.Page(key); ok {
		return p, nil
	}
	return s.Revalidate(ctx, params)
}

// Revalidate fetches the page for params and stores it.
func (s *Store) Revalidate(ctx context.Context, params ListParams) (*Page, error) {
	p, err := s.api.ListTasks(ctx, params)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache.SetPage(ListKey(params), p)
	s.mu.Unlock()
	return p, nil
}

// GetTask returns the cached record for id, fetching it on a miss.
func (s *Store) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	key := TaskKey(id)
	if t, ok := s.cache.Record(key); ok {
		return t, nil
	}
	t, err := s.api.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.cache.SetRecord(key, t)
	s.mu.Unlock()
	return t, nil
}

// CreateTask creates a task and prepends it to every cached page.
func (s *Store) CreateTask(ctx context.Context, req task.CreateTaskRequest) (*Task, error) {
	created, err := s.api.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eachPage(func(p *Page) *Page {
		tasks := make([]Task, 0, len(p.Tasks)+1)
		tasks = append(tasks, *created)
		tasks = append(tasks, p.Tasks...)
		return &Page{Tasks: tasks, Meta: p.Meta}
	})
	return created, nil
}

// UpdateTask updates a task and swaps the new record into every cached copy.
func (s *Store) UpdateTask(ctx context.Context, id uuid.UUID, req task.UpdateTaskRequest) (*Task, error) {
	updated, err := s.api.UpdateTask(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceEverywhere(updated)
	return updated, nil
}

// DeleteTask deletes a task and drops it from every cached copy.
func (s *Store) DeleteTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	deleted, err := s.api.DeleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eachPage(func(p *Page) *Page {
		if indexOf(p.Tasks, id) < 0 {
			return nil
		}
		tasks := make([]Task, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			if t.ID != id {
				tasks = append(tasks, t)
			}
		}
		return &Page{Tasks: tasks, Meta: p.Meta}
	})
	s.cache.Delete(TaskKey(id))
	return deleted, nil
}

// replaceEverywhere must be called with s.mu held.
func (s *Store) replaceEverywhere(t *Task) {
	s.eachPage(func(p *Page) *Page {
		i := indexOf(p.Tasks, t.ID)
		if i < 0 {
			return nil
		}
		return p.with(i, *t)
	})
	s.cache.SetRecord(TaskKey(t.ID), t)
}

// eachPage rewrites every cached listing page. fn returns the replacement
// page, or nil to leave the page as it is.
func (s *Store) eachPage(fn func(*Page) *Page) {
	for _, key := range s.cache.ListKeys() {
		p, ok := s.cache.Page(key)
		if !ok {
			continue
		}
		if next := fn(p); next != nil {
			s.cache.SetPage(key, next)
		}
	}
}

// with returns a copy of p whose i-th task is t.
func (p *Page) with(i int, t Task) *Page {
	tasks := make([]Task, len(p.Tasks))
	copy(tasks, p.Tasks)
	tasks[i] = t
	return &Page{Tasks: tasks, Meta: p.Meta}
}

func indexOf(tasks []Task, id uuid.UUID) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
