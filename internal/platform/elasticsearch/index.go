package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// TasksIndexName is the search index mirroring the tasks table.
const TasksIndexName = "tasks"

// TasksMapping is the index definition for task documents.
func TasksMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"user_id":       map[string]interface{}{"type": "keyword"},
				"title":         map[string]interface{}{"type": "text", "fields": map[string]interface{}{"keyword": map[string]interface{}{"type": "keyword", "ignore_above": 256}}},
				"description":   map[string]interface{}{"type": "text"},
				"category":      map[string]interface{}{"type": "text"},
				"category_slug": map[string]interface{}{"type": "keyword"},
				"priority":      map[string]interface{}{"type": "keyword"},
				"status":        map[string]interface{}{"type": "keyword"},
				"due_date":      map[string]interface{}{"type": "date"},
				"created_at":    map[string]interface{}{"type": "date"},
				"updated_at":    map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling tasks mapping to JSON: %w", err)
	}
	return string(b), nil
}

// EnsureIndex creates the index with mapping unless it already exists.
func EnsureIndex(ctx context.Context, client *ESClientWrapper, name, mapping string, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{name}}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("error checking if index %s exists: %w", name, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		log.Debug("Index already exists", zap.String("index_name", name))
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("error checking if index %s exists: status %s", name, res.Status())
	}

	createRes, err := esapi.IndicesCreateRequest{Index: name, Body: strings.NewReader(mapping)}.Do(ctx, client)
	if err != nil {
		return fmt.Errorf("error creating index %s: %w", name, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		_ = json.NewDecoder(createRes.Body).Decode(&errorBody)
		log.Error("Failed to create index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", errorBody),
			zap.String("index_name", name),
		)
		return fmt.Errorf("failed to create index %s: status %s", name, createRes.Status())
	}

	log.Info("Index created successfully", zap.String("index_name", name))
	return nil
}
