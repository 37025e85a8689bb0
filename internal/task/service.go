// File: internal/task/service.go
package task

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const indexTimeout = 3 * time.Second

// Service defines the interface for task business logic. Every operation is
// scoped to the calling user.
type Service interface {
	ListTasks(ctx context.Context, userID uuid.UUID, query ListTasksQuery) ([]Task, common.PageMeta, error)
	CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*Task, error)
	// GetTask answers not-found for tasks owned by someone else.
	GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	// UpdateTask merges the supplied fields over the stored task. Missing and
	// foreign tasks are both forbidden.
	UpdateTask(ctx context.Context, userID, id uuid.UUID, req UpdateTaskRequest) (*Task, error)
	// DeleteTask removes the task and returns it as it was before deletion.
	DeleteTask(ctx context.Context, userID, id uuid.UUID) (*Task, error)
	// SweepOrphans deletes tasks whose owner no longer exists.
	SweepOrphans(ctx context.Context) (int64, error)
	// Reindex copies every task into the search index in batches.
	Reindex(ctx context.Context, batchSize int) (int, error)
}

type service struct {
	repo        Repository
	indexer     Indexer
	metrics     *metrics.Collector
	maxPageSize int
	logger      *zap.Logger
}

// NewService creates a new task service.
func NewService(repo Repository, indexer Indexer, collector *metrics.Collector, cfg *config.Config, logger *zap.Logger) Service {
	maxPageSize := cfg.MaxPageSize
	if maxPageSize < 1 {
		maxPageSize = common.MaxPageSize
	}
	return &service{
		repo:        repo,
		indexer:     indexer,
		metrics:     collector,
		maxPageSize: maxPageSize,
		logger:      logger.Named("TaskService"),
	}
}

func (s *service) ListTasks(ctx context.Context, userID uuid.UUID, query ListTasksQuery) ([]Task, common.PageMeta, error) {
	params := query.Params(s.maxPageSize)
	tasks, total, err := s.repo.List(ctx, userID, params)
	if err != nil {
		return nil, common.PageMeta{}, err
	}
	return tasks, common.NewPageMeta(total, params.Page), nil
}

func (s *service) CreateTask(ctx context.Context, userID uuid.UUID, req CreateTaskRequest) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.NewValidationAPIError(map[string]string{"title": "The title field is required."})
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	priority := PriorityMedium
	if req.Priority != nil {
		priority = *req.Priority
	}
	status := StatusTodo
	if req.Status != nil {
		status = *req.Status
	}

	t := &Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    &priority,
		Status:      &status,
	}
	setCategory(t, req.Category)

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("Failed to create task", zap.Error(err), zap.String("userID", userID.String()))
		return nil, err
	}
	s.metrics.ObserveTaskMutation("create")
	s.mirror(ctx, t)
	return t, nil
}

func (s *service) GetTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.OwnedBy(userID) {
		return nil, common.ErrNotFound.WithDetails("Task not found.")
	}
	return t, nil
}

func (s *service) UpdateTask(ctx context.Context, userID, id uuid.UUID, req UpdateTaskRequest) (*Task, error) {
	var title string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, common.NewValidationAPIError(map[string]string{"title": "The title field must be at least 1 characters long."})
		}
	}
	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	t, err := s.ownedForWrite(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = title
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Category != nil {
		setCategory(t, req.Category)
	}
	if dueDate != nil {
		t.DueDate = dueDate
	}
	if req.Priority != nil {
		t.Priority = req.Priority
	}
	if req.Status != nil {
		t.Status = req.Status
	}

	if err := s.repo.Update(ctx, t); err != nil {
		s.logger.Error("Failed to update task", zap.Error(err), zap.String("taskID", id.String()))
		return nil, err
	}
	s.metrics.ObserveTaskMutation("update")
	s.mirror(ctx, t)
	return t, nil
}

func (s *service) DeleteTask(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, err := s.ownedForWrite(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, forbidden()
		}
		s.logger.Error("Failed to delete task", zap.Error(err), zap.String("taskID", id.String()))
		return nil, err
	}
	s.metrics.ObserveTaskMutation("delete")

	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.indexer.Delete(ictx, id); err != nil {
		s.logger.Warn("Failed to remove task from search index", zap.Error(err), zap.String("taskID", id.String()))
	}
	return t, nil
}

func (s *service) SweepOrphans(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteOrphans(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.ObserveTaskMutation("sweep")
	}
	return n, nil
}

func (s *service) Reindex(ctx context.Context, batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = 500
	}
	var (
		indexed int
		afterID uuid.UUID
	)
	for {
		batch, err := s.repo.FindBatch(ctx, afterID, batchSize)
		if err != nil {
			return indexed, err
		}
		if len(batch) == 0 {
			return indexed, nil
		}
		n, err := s.indexer.BulkIndex(ctx, batch)
		indexed += n
		if err != nil {
			return indexed, err
		}
		s.logger.Info("Reindexed task batch", zap.Int("batch", len(batch)), zap.Int("total", indexed))
		if len(batch) < batchSize {
			return indexed, nil
		}
		afterID = batch[len(batch)-1].ID
	}
}

// ownedForWrite loads a task for mutation. Missing and foreign tasks are indistinguishable.
func (s *service) ownedForWrite(ctx context.Context, userID, id uuid.UUID) (*Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, forbidden()
		}
		return nil, err
	}
	if !t.OwnedBy(userID) {
		s.logger.Warn("Task mutation by non-owner", zap.String("taskID", id.String()), zap.String("userID", userID.String()))
		return nil, forbidden()
	}
	return t, nil
}

func (s *service) mirror(ctx context.Context, t *Task) {
	ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexTimeout)
	defer cancel()
	if err := s.indexer.Index(ictx, t); err != nil {
		s.logger.Warn("Failed to mirror task to search index", zap.Error(err), zap.String("taskID", t.ID.String()))
	}
}

func forbidden() error {
	return common.ErrForbidden.WithDetails("Task not found or unauthorized.")
}

func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	d, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, common.NewValidationAPIError(map[string]string{"due_date": "The due_date field must be a valid date-time (RFC 3339)."})
	}
	d = d.UTC()
	return &d, nil
}

func setCategory(t *Task, category *string) {
	if category == nil {
		return
	}
	trimmed := strings.TrimSpace(*category)
	if trimmed == "" {
		t.Category = nil
		t.CategorySlug = nil
		return
	}
	slug := Slugify(trimmed)
	t.Category = &trimmed
	t.CategorySlug = &slug
}
