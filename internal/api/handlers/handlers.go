package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"tasktracker/internal/apperrors"
	"tasktracker/internal/id"
	"tasktracker/internal/logger"
	"tasktracker/internal/models"
)

type UserRegistrar interface {
	RegisterTelegramUser(ctx context.Context, auth models.TelegramAuth) (*models.User, bool, error)
}

type UserService interface {
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.User, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, userID int64, name string) (*models.Category, error)
	ListCategories(ctx context.Context, userID int64) ([]models.Category, error)
	DeleteCategory(ctx context.Context, userID, categoryID int64) error
}

type TaskService interface {
	CreateTask(ctx context.Context, userID int64, in models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, userID, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, userID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, userID, taskID int64, update models.TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

type Handlers struct {
	registrar  UserRegistrar
	users      UserService
	categories CategoryService
	tasks      TaskService
}

func NewHandler(registrar UserRegistrar, users UserService, categories CategoryService, tasks TaskService) *Handlers {
	return &Handlers{
		registrar:  registrar,
		users:      users,
		categories: categories,
		tasks:      tasks,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Errorw("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP statuses. A clock regression in
// the id generator is reported as 500 and the write is not retried.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrForeignCategory):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrCategoryExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, id.ErrClockMovedBackwards):
		logger.L().Errorw("id allocation failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "identifier allocation failed"})
	default:
		logger.L().Errorw("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	v, err := id.Parse(mux.Vars(r)[name])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", name, apperrors.ErrInvalidInput)
	}
	return v, nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", apperrors.ErrInvalidInput)
	}
	return nil
}

func (h *Handlers) DecodeID(w http.ResponseWriter, r *http.Request) {
	v, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id.Decode(v))
}
