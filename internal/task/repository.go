// File: internal/task/repository.go
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for task data operations.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// List returns one page of the user's tasks and the total number of matches.
	List(ctx context.Context, userID uuid.UUID, params ListParams) ([]Task, int64, error)
	Update(ctx context.Context, task *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteOrphans removes tasks whose owner no longer exists.
	DeleteOrphans(ctx context.Context) (int64, error)
	// FindBatch pages through all tasks by id, starting after afterID.
	FindBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]Task, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM task repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, task *Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Task not found.")
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

func (r *gormRepository) List(ctx context.Context, userID uuid.UUID, params ListParams) ([]Task, int64, error) {
	var (
		tasks []Task
		total int64
	)

	dbQuery := r.db.WithContext(ctx).Model(&Task{}).Where("user_id = ?", userID)

	if params.Search != "" {
		pattern := likePattern(params.Search)
		dbQuery = dbQuery.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\')`,
			pattern, pattern,
		)
	}
	if params.Status != "" {
		dbQuery = dbQuery.Where("status = ?", params.Status)
	}
	if params.Priority != "" {
		dbQuery = dbQuery.Where("priority = ?", params.Priority)
	}
	if params.CategorySlug != "" {
		dbQuery = dbQuery.Where("category_slug = ?", params.CategorySlug)
	}

	if err := dbQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if params.Page.PastEnd(total) {
		return []Task{}, total, nil
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns[DefaultSortBy]
	}
	direction := "DESC"
	if params.SortOrder == "asc" {
		direction = "ASC"
	}

	err := dbQuery.
		Order(column + " " + direction).
		Order("id " + direction).
		Offset(params.Page.Offset()).
		Limit(params.Page.Limit()).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update saves every column of an existing task.
func (r *gormRepository) Update(ctx context.Context, task *Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Task not found or already deleted.")
	}
	return nil
}

func (r *gormRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	owners := r.db.Table("users").Select("id")
	result := r.db.WithContext(ctx).Where("user_id NOT IN (?)", owners).Delete(&Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete orphaned tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormRepository) FindBatch(ctx context.Context, afterID uuid.UUID, limit int) ([]Task, error) {
	var tasks []Task
	dbQuery := r.db.WithContext(ctx).Order("id ASC").Limit(limit)
	if afterID != uuid.Nil {
		dbQuery = dbQuery.Where("id > ?", afterID)
	}
	if err := dbQuery.Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load task batch: %w", err)
	}
	return tasks, nil
}
