package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"tasktracker/internal/api/handlers"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/id"
	"tasktracker/internal/metrics"
	"tasktracker/internal/models"
)

type servicesMock struct {
	mock.Mock
}

func (m *servicesMock) RegisterTelegramUser(ctx context.Context, auth models.TelegramAuth) (*models.User, bool, error) {
	args := m.Called(ctx, auth)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *servicesMock) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *servicesMock) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, update)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *servicesMock) CreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error) {
	args := m.Called(ctx, userID, name)
	category, _ := args.Get(0).(*models.Category)
	return category, args.Error(1)
}

func (m *servicesMock) ListCategories(ctx context.Context, userID int64) ([]models.Category, error) {
	args := m.Called(ctx, userID)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *servicesMock) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	return m.Called(ctx, userID, categoryID).Error(0)
}

func (m *servicesMock) CreateTask(ctx context.Context, userID int64, in models.NewTask) (*models.Task, error) {
	args := m.Called(ctx, userID, in)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *servicesMock) GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *servicesMock) ListTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	args := m.Called(ctx, userID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *servicesMock) UpdateTask(ctx context.Context, userID, taskID int64, update models.TaskUpdate) (*models.Task, error) {
	args := m.Called(ctx, userID, taskID, update)
	task, _ := args.Get(0).(*models.Task)
	return task, args.Error(1)
}

func (m *servicesMock) DeleteTask(ctx context.Context, userID, taskID int64) error {
	return m.Called(ctx, userID, taskID).Error(0)
}

func newTestServer(m *servicesMock) *httptest.Server {
	return httptest.NewServer(NewRouter(handlers.NewHandler(m, m, m, m)))
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&servicesMock{})
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestTelegramAuth(t *testing.T) {
	m := &servicesMock{}
	auth := models.TelegramAuth{TelegramID: 555, Username: "ann", LanguageCode: "ru"}
	m.On("RegisterTelegramUser", mock.Anything, auth).
		Return(&models.User{ID: 1234567890123456789, TelegramID: 555}, true, nil).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, body := do(t, srv, http.MethodPost, "/api/v1/users/telegram-auth",
		`{"telegram_id":555,"username":"ann","language_code":"ru"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	// rendered as a string so JavaScript clients keep all 64 bits
	require.Equal(t, "1234567890123456789", body["user_id"])
	m.AssertExpectations(t)
}

func TestCreateTask(t *testing.T) {
	m := &servicesMock{}
	in := models.NewTask{Title: "write report", CategoryName: "work"}
	m.On("CreateTask", mock.Anything, int64(42), in).
		Return(&models.Task{ID: 99, UserID: 42, Title: "write report", CategoryName: "work"}, nil).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, body := do(t, srv, http.MethodPost, "/api/v1/users/42/tasks",
		`{"title":"write report","category_name":"work"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, "99", body["id"])
	require.Equal(t, "work", body["category_name"])
	m.AssertExpectations(t)
}

func TestCreateTaskClockErrorIsServerError(t *testing.T) {
	m := &servicesMock{}
	clockErr := fmt.Errorf("failed to allocate task id: %w", &id.ClockError{Last: 2000, Now: 1000})
	m.On("CreateTask", mock.Anything, int64(42), mock.Anything).Return(nil, clockErr).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, body := do(t, srv, http.MethodPost, "/api/v1/users/42/tasks", `{"title":"x"}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "identifier allocation failed", body["error"])
	m.AssertExpectations(t)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("task 1: %w", apperrors.ErrNotFound), http.StatusNotFound},
		{"foreign category", fmt.Errorf("category 5: %w", apperrors.ErrForeignCategory), http.StatusBadRequest},
		{"invalid", fmt.Errorf("title: %w", apperrors.ErrInvalidInput), http.StatusBadRequest},
		{"unexpected", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := &servicesMock{}
			m.On("GetTask", mock.Anything, int64(1), int64(2)).Return(nil, tc.err).Once()

			srv := newTestServer(m)
			defer srv.Close()

			resp, _ := do(t, srv, http.MethodGet, "/api/v1/users/1/tasks/2", "")
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestCreateCategoryConflict(t *testing.T) {
	m := &servicesMock{}
	m.On("CreateCategory", mock.Anything, int64(7), "home").
		Return(nil, fmt.Errorf("category %q: %w", "home", apperrors.ErrCategoryExists)).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, _ := do(t, srv, http.MethodPost, "/api/v1/users/7/categories", `{"name":"home"}`)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestListTasksEmpty(t *testing.T) {
	m := &servicesMock{}
	m.On("ListTasks", mock.Anything, int64(3)).Return(nil, nil).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/api/v1/users/3/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()

	var tasks []models.Task
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	require.NotNil(t, tasks)
	require.Empty(t, tasks)
}

func TestUpdateTask(t *testing.T) {
	m := &servicesMock{}
	done := true
	m.On("UpdateTask", mock.Anything, int64(1), int64(2), models.TaskUpdate{IsCompleted: &done}).
		Return(&models.Task{ID: 2, IsCompleted: true}, nil).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, body := do(t, srv, http.MethodPatch, "/api/v1/users/1/tasks/2", `{"is_completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, true, body["is_completed"])
	m.AssertExpectations(t)
}

func TestDeleteTask(t *testing.T) {
	m := &servicesMock{}
	m.On("DeleteTask", mock.Anything, int64(1), int64(2)).Return(nil).Once()

	srv := newTestServer(m)
	defer srv.Close()

	resp, _ := do(t, srv, http.MethodDelete, "/api/v1/users/1/tasks/2", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	m.AssertExpectations(t)
}

func TestBadPathID(t *testing.T) {
	srv := newTestServer(&servicesMock{})
	defer srv.Close()

	resp, _ := do(t, srv, http.MethodGet, "/api/v1/users/abc/tasks", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/users/-4/tasks", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDecodeID(t *testing.T) {
	g, err := id.New(7)
	require.NoError(t, err)
	v, err := g.NextID()
	require.NoError(t, err)

	srv := newTestServer(&servicesMock{})
	defer srv.Close()

	resp, body := do(t, srv, http.MethodGet, "/api/v1/ids/"+id.Format(v), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, id.Format(v), body["id"])
	require.Equal(t, float64(7), body["machine_id"])
}

func TestPanicIsCountedAsServerError(t *testing.T) {
	// no expectation set: the mock panics inside the handler
	srv := newTestServer(&servicesMock{})
	defer srv.Close()

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/users/{user_id}/tasks", "500")
	before := testutil.ToFloat64(counter)

	resp, _ := do(t, srv, http.MethodGet, "/api/v1/users/8/tasks", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, before+1, testutil.ToFloat64(counter))
}
