package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"tasktracker/internal/api/handlers"
	"tasktracker/internal/api/middleware"
)

func NewRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/ids/{id}", h.DecodeID).Methods("GET")

	v1.HandleFunc("/users/telegram-auth", h.TelegramAuth).Methods("POST")
	v1.HandleFunc("/users/{user_id}", h.GetUser).Methods("GET")
	v1.HandleFunc("/users/{user_id}", h.UpdateProfile).Methods("PATCH")

	v1.HandleFunc("/users/{user_id}/categories", h.ListCategories).Methods("GET")
	v1.HandleFunc("/users/{user_id}/categories", h.CreateCategory).Methods("POST")
	v1.HandleFunc("/users/{user_id}/categories/{category_id}", h.DeleteCategory).Methods("DELETE")

	v1.HandleFunc("/users/{user_id}/tasks", h.ListTasks).Methods("GET")
	v1.HandleFunc("/users/{user_id}/tasks", h.CreateTask).Methods("POST")
	v1.HandleFunc("/users/{user_id}/tasks/{task_id}", h.GetTask).Methods("GET")
	v1.HandleFunc("/users/{user_id}/tasks/{task_id}", h.UpdateTask).Methods("PATCH")
	v1.HandleFunc("/users/{user_id}/tasks/{task_id}", h.DeleteTask).Methods("DELETE")

	return r
}
