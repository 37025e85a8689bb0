package task

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Indexer mirrors tasks into the search index.
type Indexer interface {
	Index(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	// BulkIndex writes many tasks at once and returns how many were accepted.
	BulkIndex(ctx context.Context, tasks []Task) (int, error)
}

// NewIndexer returns an Elasticsearch-backed indexer, or a no-op one when client is nil.
func NewIndexer(client *elasticsearch.ESClientWrapper, logger *zap.Logger) Indexer {
	if client == nil {
		return noopIndexer{}
	}
	return &esIndexer{client: client, index: elasticsearch.TasksIndexName, logger: logger.Named("TaskIndexer")}
}

type noopIndexer struct{}

func (noopIndexer) Index(context.Context, *Task) error { return nil }

func (noopIndexer) Delete(context.Context, uuid.UUID) error { return nil }

func (noopIndexer) BulkIndex(context.Context, []Task) (int, error) { return 0, nil }

type esIndexer struct {
	client *elasticsearch.ESClientWrapper
	index  string
	logger *zap.Logger
}

// document is the search representation of a task.
type document struct {
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	Category     *string    `json:"category,omitempty"`
	CategorySlug *string    `json:"category_slug,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toDocument(t *Task) ([]byte, error) {
	return json.Marshal(document{
		UserID:       t.UserID.String(),
		Title:        t.Title,
		Description:  t.Description,
		Category:     t.Category,
		CategorySlug: t.CategorySlug,
		Priority:     t.Priority,
		Status:       t.Status,
		DueDate:      t.DueDate,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	})
}

func (i *esIndexer) Index(ctx context.Context, t *Task) error {
	body, err := toDocument(t)
	if err != nil {
		return fmt.Errorf("failed to encode task document: %w", err)
	}
	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: t.ID.String(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index task %s: %w", t.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to index task %s: status %s", t.ID, res.Status())
	}
	return nil
}

func (i *esIndexer) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{Index: i.index, DocumentID: id.String()}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to remove task %s from index: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to remove task %s from index: status %s", id, res.Status())
	}
	return nil
}

func (i *esIndexer) BulkIndex(ctx context.Context, tasks []Task) (int, error) {
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     i.client.Client,
		Index:      i.index,
		NumWorkers: 2,
		OnError: func(_ context.Context, err error) {
			i.logger.Error("Bulk indexer error", zap.Error(err))
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	for idx := range tasks {
		t := &tasks[idx]
		body, err := toDocument(t)
		if err != nil {
			return 0, fmt.Errorf("failed to encode task document: %w", err)
		}
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: t.ID.String(),
			Body:       bytes.NewReader(body),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				i.logger.Warn("Task not indexed",
					zap.String("taskID", item.DocumentID),
					zap.String("reason", res.Error.Reason),
					zap.Error(err),
				)
			},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to queue task %s: %w", t.ID, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return 0, fmt.Errorf("failed to flush bulk indexer: %w", err)
	}
	stats := bi.Stats()
	return int(stats.NumFlushed - stats.NumFailed), nil
}
