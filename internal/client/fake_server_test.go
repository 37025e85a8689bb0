package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves the task endpoints from memory, newest first.
type fakeAPI struct {
	mu       sync.Mutex
	tasks    []Task
	calls    map[string]int
	failNext *common.APIError
	token    string
}

func newFakeAPI(t *testing.T, token string) (*fakeAPI, *Client) {
	t.Helper()
	f := &fakeAPI{calls: make(map[string]int), token: token}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+TasksPath, f.list)
	mux.HandleFunc("POST "+TasksPath, f.create)
	mux.HandleFunc("GET "+TasksPath+"/{id}", f.get)
	mux.HandleFunc("PUT "+TasksPath+"/{id}", f.update)
	mux.HandleFunc("DELETE "+TasksPath+"/{id}", f.remove)

	srv := httptest.NewServer(f.guard(mux))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithTokenSource(StaticToken(token)))
	require.NoError(t, err)
	return f, c
}

func (f *fakeAPI) seed(titles ...string) []Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range titles {
		ts := base.Add(time.Duration(i) * time.Minute)
		f.tasks = append([]Task{{ID: uuid.New(), Title: title, CreatedAt: ts, UpdatedAt: ts}}, f.tasks...)
	}
	out := make([]Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *fakeAPI) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeAPI) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls[r.Method+" "+r.URL.Path]++
		fail := f.failNext
		f.failNext = nil
		f.mu.Unlock()

		if r.Header.Get(common.AuthorizationHeader) != "Bearer "+f.token {
			writeError(w, common.ErrUnauthenticated)
			return
		}
		if fail != nil {
			writeError(w, fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	status := r.URL.Query().Get("status")
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := f.tasks
	if status != "" {
		matched = nil
		for _, t := range f.tasks {
			if t.Status != nil && string(*t.Status) == status {
				matched = append(matched, t)
			}
		}
	}

	req := common.PageRequest{Page: page, PerPage: perPage}
	start := req.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	items := make([]Task, end-start)
	copy(items, matched[start:end])
	writeJSON(w, http.StatusOK, common.PageResponse{
		Status: http.StatusOK,
		Data:   items,
		Meta:   common.NewPageMeta(int64(len(matched)), req),
	})
}

func (f *fakeAPI) create(w http.ResponseWriter, r *http.Request) {
	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeError(w, common.NewValidationAPIError(map[string]string{"title": "The title field is required."}))
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	created := Task{ID: uuid.New(), Title: req.Title, Status: req.Status, CreatedAt: now, UpdatedAt: now}
	f.tasks = append([]Task{created}, f.tasks...)
	writeJSON(w, http.StatusCreated, common.SuccessResponse{Status: http.StatusCreated, Data: created})
}

func (f *fakeAPI) get(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(r.PathValue("id"))
	if i < 0 {
		writeError(w, common.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, common.SuccessResponse{Status: http.StatusOK, Data: f.tasks[i]})
}

func (f *fakeAPI) update(w http.ResponseWriter, r *http.Request) {
	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.ErrBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(r.PathValue("id"))
	if i < 0 {
		writeError(w, common.ErrForbidden)
		return
	}
	if req.Title != nil {
		f.tasks[i].Title = *req.Title
	}
	if req.Status != nil {
		st := *req.Status
		f.tasks[i].Status = &st
	}
	f.tasks[i].UpdatedAt = time.Now().UTC()
	writeJSON(w, http.StatusOK, common.SuccessResponse{Status: http.StatusOK, Data: f.tasks[i]})
}

func (f *fakeAPI) remove(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(r.PathValue("id"))
	if i < 0 {
		writeError(w, common.ErrForbidden)
		return
	}
	prior := f.tasks[i]
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	writeJSON(w, http.StatusOK, common.SuccessResponse{Status: http.StatusOK, Data: prior})
}

// find must be called with f.mu held.
func (f *fakeAPI) find(raw string) int {
	id, err := uuid.Parse(raw)
	if err != nil {
		return -1
	}
	return indexOf(f.tasks, id)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, apiErr *common.APIError) {
	writeJSON(w, apiErr.StatusCode, common.NewErrorResponse(apiErr, ""))
}
