package handlers

import (
	"net/http"

	"tasktracker/internal/models"
)

func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.NewTask
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, err := taskPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.GetTask(r.Context(), userID, taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, err := taskPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.TaskUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), userID, taskID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, taskID, err := taskPath(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), userID, taskID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func taskPath(r *http.Request) (int64, int64, error) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		return 0, 0, err
	}
	taskID, err := pathID(r, "task_id")
	if err != nil {
		return 0, 0, err
	}
	return userID, taskID, nil
}
