// File: internal/client/cache.go
package client

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	// TasksPath is the collection endpoint; it doubles as the cache key root.
	TasksPath = "/api/v1/tasks"
	// ListKeyPrefix marks cache keys that hold a listing page.
	ListKeyPrefix = TasksPath + "?page="

	cacheCleanupInterval = 10 * time.Minute
)

// ListParams selects one listing page. Empty filters are left out of the query.
type ListParams struct {
	Page      int
	PerPage   int
	SortBy    string
	SortOrder string
	Search    string
	Status    string
	Priority  string
	Category  string
}

func (p ListParams) withDefaults() ListParams {
	if p.Page < 1 {
		p.Page = common.DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = common.DefaultPageSize
	}
	if p.SortBy == "" {
		p.SortBy = task.DefaultSortBy
	}
	if p.SortOrder == "" {
		p.SortOrder = task.DefaultSortOrder
	}
	return p
}

// filters returns the non-empty filters in query order.
func (p ListParams) filters() [][2]string {
	var out [][2]string
	for _, f := range [][2]string{
		{"search", p.Search},
		{"status", p.Status},
		{"priority", p.Priority},
		{"category", p.Category},
	} {
		if f[1] != "" {
			out = append(out, f)
		}
	}
	return out
}

// ListKey is the request signature of a listing page, e.g.
// /api/v1/tasks?page=1&perPage=10&sortBy=created_at&sortOrder=desc&status=done.
func ListKey(p ListParams) string {
	p = p.withDefaults()
	var b strings.Builder
	fmt.Fprintf(&b, "%s%d&perPage=%d&sortBy=%s&sortOrder=%s",
		ListKeyPrefix, p.Page, p.PerPage, url.QueryEscape(p.SortBy), url.QueryEscape(p.SortOrder))
	for _, f := range p.filters() {
		fmt.Fprintf(&b, "&%s=%s", f[0], url.QueryEscape(f[1]))
	}
	return b.String()
}

// TaskKey is the request signature of a single task.
func TaskKey(id uuid.UUID) string {
	return TasksPath + "/" + id.String()
}

// IsListKey reports whether key holds a listing page.
func IsListKey(key string) bool {
	return strings.HasPrefix(key, ListKeyPrefix)
}

// Page is one cached listing response. Cached pages are replaced, never modified in place.
type Page struct {
	Tasks []Task
	Meta  common.PageMeta
}

// cloneTask copies t including the values behind its pointer fields.
func cloneTask(t Task) Task {
	if t.Description != nil {
		v := *t.Description
		t.Description = &v
	}
	if t.Category != nil {
		v := *t.Category
		t.Category = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		t.DueDate = &v
	}
	if t.Priority != nil {
		v := *t.Priority
		t.Priority = &v
	}
	if t.Status != nil {
		v := *t.Status
		t.Status = &v
	}
	return t
}

func clonePage(p *Page) *Page {
	tasks := make([]Task, len(p.Tasks))
	for i := range p.Tasks {
		tasks[i] = cloneTask(p.Tasks[i])
	}
	return &Page{Tasks: tasks, Meta: p.Meta}
}

// Cache stores fetched responses by request signature.
type Cache struct {
	store *gocache.Cache
}

// NewCache creates a cache whose entries expire after ttl; zero keeps them until removed.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Cache{store: gocache.New(ttl, cacheCleanupInterval)}
}

// Page returns a copy of the page stored under key.
func (c *Cache) Page(key string) (*Page, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Page)
	if !ok {
		return nil, false
	}
	return clonePage(p), true
}

// SetPage stores a copy of p; later changes to p do not reach the cache.
func (c *Cache) SetPage(key string, p *Page) {
	c.store.SetDefault(key, clonePage(p))
}

// Record returns a copy of the task stored under key.
func (c *Cache) Record(key string) (*Task, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	t, ok := v.(*Task)
	if !ok {
		return nil, false
	}
	cp := cloneTask(*t)
	return &cp, true
}

// SetRecord stores a copy of t.
func (c *Cache) SetRecord(key string, t *Task) {
	cp := cloneTask(*t)
	c.store.SetDefault(key, &cp)
}

func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// ListKeys returns the keys of all cached listing pages in sorted order.
func (c *Cache) ListKeys() []string {
	var keys []string
	for k := range c.store.Items() {
		if IsListKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.store.Flush()
}
