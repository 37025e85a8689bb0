// File: internal/task/model.go
package task

import (
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"

	"github.com/google/uuid"
)

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Task is a unit of personal work owned by exactly one user.
type Task struct {
	common.BaseModel
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title        string     `gorm:"type:varchar(255);not null"`
	Description  *string    `gorm:"type:text"`
	Category     *string    `gorm:"type:varchar(100)"`
	CategorySlug *string    `gorm:"type:varchar(120);index"`
	DueDate      *time.Time `gorm:"index"`
	Priority     *Priority  `gorm:"type:varchar(16)"`
	Status       *Status    `gorm:"type:varchar(16)"`
}

// TableName specifies the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// OwnedBy reports whether userID owns the task.
func (t *Task) OwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// CreateTaskRequest defines the body for creating a task.
type CreateTaskRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	DueDate     *string   `json:"due_date" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *Status   `json:"status" binding:"omitempty,oneof=todo in-progress done"`
}

// UpdateTaskRequest is a partial update; absent fields keep their stored value.
type UpdateTaskRequest struct {
	Title       *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string   `json:"description" binding:"omitempty,max=5000"`
	Category    *string   `json:"category" binding:"omitempty,max=100"`
	DueDate     *string   `json:"due_date" binding:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Priority    *Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      *Status   `json:"status" binding:"omitempty,oneof=todo in-progress done"`
}

// Sortable columns for listings.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"priority":   "priority",
	"category":   "category",
	"status":     "status",
	"due_date":   "due_date",
}

const (
	DefaultSortBy    = "created_at"
	DefaultSortOrder = "desc"
)

// ListTasksQuery holds the raw query string of GET /tasks.
type ListTasksQuery struct {
	Page      *int   `form:"page" binding:"omitempty,min=1"`
	PerPage   *int   `form:"perPage" binding:"omitempty,min=1"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=created_at title priority category status due_date"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=todo in-progress done"`
	Priority  string `form:"priority" binding:"omitempty,oneof=low medium high"`
	Category  string `form:"category" binding:"omitempty,max=100"`
}

// ListParams is a validated, defaulted listing request.
type ListParams struct {
	Page         common.PageRequest
	SortBy       string
	SortOrder    string
	Search       string
	Status       Status
	Priority     Priority
	CategorySlug string
}

// Params applies defaults and clamps perPage to maxPageSize.
func (q ListTasksQuery) Params(maxPageSize int) ListParams {
	p := ListParams{
		Page:      common.PageRequest{Page: common.DefaultPage, PerPage: common.DefaultPageSize},
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
		Search:    SanitizeSearch(q.Search),
		Status:    Status(q.Status),
		Priority:  Priority(q.Priority),
	}
	if q.Page != nil {
		p.Page.Page = *q.Page
	}
	if q.PerPage != nil {
		p.Page.PerPage = *q.PerPage
	}
	if maxPageSize > 0 && p.Page.PerPage > maxPageSize {
		p.Page.PerPage = maxPageSize
	}
	if _, ok := sortColumns[q.SortBy]; ok {
		p.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		p.SortOrder = q.SortOrder
	}
	if q.Category != "" {
		p.CategorySlug = Slugify(q.Category)
	}
	return p
}

// TaskResponse defines the structure for task data sent in API responses.
type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *Priority  `json:"priority"`
	Status      *Status    `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToTaskResponse converts a Task model to a TaskResponse DTO.
func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTaskResponses(tasks []Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, ToTaskResponse(&tasks[i]))
	}
	return out
}
