// Package gateway exposes the task queue over HTTP and WebSocket for the
// dashboard.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pmorel/tasker/internal/archive"
	"github.com/pmorel/tasker/internal/events"
	"github.com/pmorel/tasker/internal/gateway/ws"
	"github.com/pmorel/tasker/internal/heartbeat"
	"github.com/pmorel/tasker/internal/queue"
)

// Server is the dashboard HTTP server.
type Server struct {
	httpServer    *http.Server
	hub           *ws.Hub
	bus           *events.Bus
	store         queue.Store
	archive       *archive.Archive
	tasks         *TaskHandler
	heartbeatPath string
}

// NewServer creates a new gateway server. archive may be nil; the status
// endpoint then omits the completed-today count.
func NewServer(store queue.Store, arch *archive.Archive, bus *events.Bus, host string, port int, heartbeatPath string) *Server {
	tasks := NewTaskHandler(store, bus)
	hub := ws.NewHub(bus, tasks)

	s := &Server{
		hub:           hub,
		bus:           bus,
		store:         store,
		archive:       arch,
		tasks:         tasks,
		heartbeatPath: heartbeatPath,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/ws", hub.ServeWS)
	r.Get("/api/events", s.handleEvents)

	r.Get("/api/tasks", s.handleListTasks)
	r.Post("/api/tasks", s.handleCreateTask)
	r.Delete("/api/tasks/{id}", s.handleDeleteTask)
	r.Put("/api/tasks/{id}/status", s.handleUpdateStatus)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Counts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"pending":     stats.Pending,
		"in_progress": stats.InProgress,
		"completed":   stats.Completed,
		"failed":      stats.Failed,
		"total":       stats.Total,
	}

	if s.archive != nil {
		if n, err := s.archive.CompletedToday(time.Now()); err == nil {
			resp["completed_today"] = n
		}
	}

	if s.heartbeatPath != "" {
		status, hb, _ := heartbeat.Check(s.heartbeatPath, 2*time.Minute)
		loop := map[string]any{"status": string(status)}
		if hb != nil {
			loop["pid"] = hb.PID
			loop["uptime"] = hb.Uptime
		}
		resp["loop"] = loop
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	history := s.bus.History(limit)
	if history == nil {
		history = []events.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	list, err := s.tasks.List(r.URL.Query().Get("status"), limit)
	if err != nil {
		if errors.Is(err, queue.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string   `json:"description"`
		Priority    int      `json:"priority"`
		Tags        []string `json:"tags"`
		Notes       string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	id, err := s.tasks.Submit(req.Description, req.Priority, req.Tags, req.Notes)
	if err != nil {
		if errors.Is(err, queue.ErrValidation) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	t, err := s.store.Get(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	deleted, err := s.tasks.Delete(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status    string `json:"status"`
		LastError string `json:"last_error"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	t, err := s.tasks.UpdateStatus(id, queue.Status(req.Status), req.LastError)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, queue.ErrValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
