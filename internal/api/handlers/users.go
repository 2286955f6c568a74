package handlers

import (
	"net/http"

	"tasktracker/internal/models"
)

type TelegramAuthResponse struct {
	UserID  int64 `json:"user_id,string"`
	Created bool  `json:"created"`
}

func (h *Handlers) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var req models.TelegramAuth
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, created, err := h.registrar.RegisterTelegramUser(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, TelegramAuthResponse{UserID: user.ID, Created: created})
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req models.ProfileUpdate
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
