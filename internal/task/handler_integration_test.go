package task_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/common"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/config"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/identity"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/task"
	"github.com/Ginushmal/personal-task-manager-ginushmal/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    common.PageMeta `json:"meta"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

// HandlerIntegrationTestSuite drives the task routes end to end over an in-memory database.
type HandlerIntegrationTestSuite struct {
	suite.Suite
	DB       *gorm.DB
	Router   *gin.Engine
	Verifier *identity.JWTVerifier
	Users    user.Service

	aliceToken string
	bobToken   string
	ghostToken string
}

func TestHandlerIntegration(t *testing.T) {
	suite.Run(t, new(HandlerIntegrationTestSuite))
}

func (s *HandlerIntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	common.RegisterValidation()
	logger := zap.NewNop()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&user.User{}, &task.Task{}))
	s.DB = db

	s.Users = user.NewService(user.NewGORMRepository(db), logger)
	s.Verifier, err = identity.NewJWTVerifier("integration-test-secret", logger)
	s.Require().NoError(err)
	resolver := identity.NewResolver(s.Verifier, s.Users, logger)

	cfg := &config.Config{MaxPageSize: 100}
	taskService := task.NewService(task.NewGORMRepository(db), task.NewIndexer(nil, logger), nil, cfg, logger)

	s.Router = gin.New()
	api := s.Router.Group("/api/v1")
	task.NewHandler(taskService, resolver, logger).RegisterRoutes(api)

	ctx := context.Background()
	_, err = s.Users.SyncCreated(ctx, user.Profile{ExternalID: "user_alice"})
	s.Require().NoError(err)
	_, err = s.Users.SyncCreated(ctx, user.Profile{ExternalID: "user_bob"})
	s.Require().NoError(err)

	s.aliceToken = s.issue("user_alice")
	s.bobToken = s.issue("user_bob")
	s.ghostToken = s.issue("user_ghost")
}

func (s *HandlerIntegrationTestSuite) issue(externalID string) string {
	token, err := s.Verifier.Issue(externalID, time.Hour)
	s.Require().NoError(err)
	return token
}

func (s *HandlerIntegrationTestSuite) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	var env envelope
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (s *HandlerIntegrationTestSuite) createTask(token string, body map[string]interface{}) task.TaskResponse {
	rec, env := s.do(http.MethodPost, "/api/v1/tasks", token, body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &created))
	return created
}

func (s *HandlerIntegrationTestSuite) TestCreateAndGet() {
	created := s.createTask(s.aliceToken, map[string]interface{}{
		"title":       "Write tests",
		"description": "Cover the listing path",
		"category":    "Work Stuff",
		"due_date":    "2025-06-01T12:00:00+02:00",
		"priority":    "high",
		"status":      "in-progress",
	})

	rec, env := s.do(http.MethodGet, "/api/v1/tasks/"+created.ID.String(), s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(http.StatusOK, env.Status)

	var fetched task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &fetched))
	s.Equal(created.ID, fetched.ID)
	s.Equal("Write tests", fetched.Title)
	s.Require().NotNil(fetched.Description)
	s.Equal("Cover the listing path", *fetched.Description)
	s.Require().NotNil(fetched.Category)
	s.Equal("Work Stuff", *fetched.Category)
	s.Require().NotNil(fetched.DueDate)
	s.True(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC).Equal(*fetched.DueDate), fetched.DueDate.String())
	s.Require().NotNil(fetched.Priority)
	s.Equal(task.PriorityHigh, *fetched.Priority)
	s.Require().NotNil(fetched.Status)
	s.Equal(task.StatusInProgress, *fetched.Status)

	rec, env = s.do(http.MethodGet, "/api/v1/tasks/"+created.ID.String(), s.bobToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND", env.Code)
}

func (s *HandlerIntegrationTestSuite) TestCreateAppliesDefaults() {
	created := s.createTask(s.aliceToken, map[string]interface{}{"title": "Bare"})

	rec, env := s.do(http.MethodGet, "/api/v1/tasks/"+created.ID.String(), s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var fetched task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &fetched))
	s.Equal("Bare", fetched.Title)
	s.Nil(fetched.Description)
	s.Nil(fetched.Category)
	s.Nil(fetched.DueDate)
	s.Require().NotNil(fetched.Priority)
	s.Equal(task.PriorityMedium, *fetched.Priority)
	s.Require().NotNil(fetched.Status)
	s.Equal(task.StatusTodo, *fetched.Status)
}

func (s *HandlerIntegrationTestSuite) TestCreateValidation() {
	rec, env := s.do(http.MethodPost, "/api/v1/tasks", s.aliceToken, map[string]interface{}{
		"title":    "",
		"priority": "urgent",
		"due_date": "next week",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", env.Code)

	var details map[string]string
	s.Require().NoError(json.Unmarshal(env.Details, &details))
	s.Contains(details, "title")
	s.Contains(details, "priority")
	s.Contains(details, "due_date")

	rec, _ = s.do(http.MethodPost, "/api/v1/tasks", "", map[string]interface{}{"title": "x"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerIntegrationTestSuite) TestInvalidIDCheckedBeforeAuth() {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		rec, env := s.do(method, "/api/v1/tasks/not-a-uuid", "", nil)
		s.Equal(http.StatusBadRequest, rec.Code, method)
		s.Equal("INVALID_ID", env.Code, method)
	}

	rec, env := s.do(http.MethodGet, "/api/v1/tasks/"+uuid.NewString(), "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHENTICATED", env.Code)
}

func (s *HandlerIntegrationTestSuite) TestUnknownUser() {
	rec, env := s.do(http.MethodGet, "/api/v1/tasks", s.ghostToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("USER_NOT_FOUND", env.Code)

	rec, env = s.do(http.MethodGet, "/api/v1/tasks", "forged.token.value", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("UNAUTHENTICATED", env.Code)
}

func (s *HandlerIntegrationTestSuite) TestUpdateOwnership() {
	created := s.createTask(s.aliceToken, map[string]interface{}{
		"title":       "Plan trip",
		"description": "Lisbon",
		"category":    "Travel",
		"due_date":    "2025-09-15T08:30:00Z",
		"priority":    "low",
	})
	path := "/api/v1/tasks/" + created.ID.String()

	rec, env := s.do(http.MethodPut, path, s.bobToken, map[string]interface{}{"status": "done"})
	s.Equal(http.StatusForbidden, rec.Code)
	s.Equal("FORBIDDEN", env.Code)

	rec, _ = s.do(http.MethodPut, "/api/v1/tasks/"+uuid.NewString(), s.aliceToken, map[string]interface{}{"status": "done"})
	s.Equal(http.StatusForbidden, rec.Code)

	rec, env = s.do(http.MethodPatch, path, s.aliceToken, map[string]interface{}{"status": "in-progress"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var updated task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &updated))
	s.Equal(task.StatusInProgress, *updated.Status)
	s.Equal("Plan trip", updated.Title)
	s.Require().NotNil(updated.Description)
	s.Equal("Lisbon", *updated.Description)
	s.Require().NotNil(updated.Category)
	s.Equal("Travel", *updated.Category)
	s.Require().NotNil(updated.DueDate)
	s.True(time.Date(2025, 9, 15, 8, 30, 0, 0, time.UTC).Equal(*updated.DueDate))
	s.Require().NotNil(updated.Priority)
	s.Equal(task.PriorityLow, *updated.Priority)

	// The stored record matches what the update returned.
	rec, env = s.do(http.MethodGet, path, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stored task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &stored))
	s.Equal(updated.Title, stored.Title)
	s.Equal(*updated.Description, *stored.Description)
	s.Equal(*updated.Category, *stored.Category)
	s.True(updated.DueDate.Equal(*stored.DueDate))
	s.Equal(*updated.Priority, *stored.Priority)
	s.Equal(task.StatusInProgress, *stored.Status)

	rec, env = s.do(http.MethodPut, path, s.aliceToken, map[string]interface{}{"status": "blocked"})
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", env.Code)
}

func (s *HandlerIntegrationTestSuite) TestDeleteReturnsPriorRecord() {
	created := s.createTask(s.aliceToken, map[string]interface{}{"title": "Short lived"})
	path := "/api/v1/tasks/" + created.ID.String()

	rec, _ := s.do(http.MethodDelete, path, s.bobToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec, env := s.do(http.MethodDelete, path, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var prior task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &prior))
	s.Equal(created.ID, prior.ID)
	s.Equal("Short lived", prior.Title)

	rec, _ = s.do(http.MethodGet, path, s.aliceToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec, _ = s.do(http.MethodDelete, path, s.aliceToken, nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerIntegrationTestSuite) TestListPaginationAndScope() {
	for i := 0; i < 7; i++ {
		s.createTask(s.aliceToken, map[string]interface{}{"title": fmt.Sprintf("task %d", i)})
	}
	s.createTask(s.bobToken, map[string]interface{}{"title": "bob only"})

	rec, env := s.do(http.MethodGet, "/api/v1/tasks?page=2&perPage=5&sortBy=title&sortOrder=asc", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(common.PageMeta{Total: 7, Page: 2, PerPage: 5, TotalPages: 2}, env.Meta)

	var page []task.TaskResponse
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page, 2)
	s.Equal("task 5", page[0].Title)
	s.Equal("task 6", page[1].Title)

	rec, env = s.do(http.MethodGet, "/api/v1/tasks?page=5&perPage=5", s.aliceToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(int64(7), env.Meta.Total)
	s.Equal(2, env.Meta.TotalPages)
	s.JSONEq(`[]`, string(env.Data))

	rec, env = s.do(http.MethodGet, "/api/v1/tasks?page=9223372036854775807&perPage=10", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(int64(7), env.Meta.Total)
	s.Equal(1, env.Meta.TotalPages)
	s.Equal(math.MaxInt64, env.Meta.Page)
	s.JSONEq(`[]`, string(env.Data))

	rec, env = s.do(http.MethodGet, "/api/v1/tasks?perPage=1000", s.aliceToken, nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(100, env.Meta.PerPage)
}

func (s *HandlerIntegrationTestSuite) TestListValidationBeforeAuth() {
	for _, query := range []string{"page=0", "perPage=0", "page=abc", "sortBy=password", "sortOrder=sideways"} {
		rec, env := s.do(http.MethodGet, "/api/v1/tasks?"+query, "", nil)
		s.Equal(http.StatusBadRequest, rec.Code, query)
		s.Equal(http.StatusBadRequest, env.Status, query)
	}
}
