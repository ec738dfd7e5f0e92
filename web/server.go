// ABOUTME: Web UI server with embedded templates
// ABOUTME: Provides read-only priority dashboard, client table, JSON priority lookup, and metrics
package web

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	clients    *db.ClientRepository
	deals      *db.DealRepository
	priorities *db.PrioritizationRepository
	reminders  *db.ReminderRepository
	userID     string
	templates  *template.Template
	logger     *zap.Logger
}

func NewServer(database *sql.DB, userID string, logger *zap.Logger) (*Server, error) {
	funcMap := template.FuncMap{
		"priority": func(p *models.PriorityLevel) string {
			if p == nil {
				return "-"
			}
			return string(*p)
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		clients:    db.NewClientRepository(database),
		deals:      db.NewDealRepository(database),
		priorities: db.NewPrioritizationRepository(database),
		reminders:  db.NewReminderRepository(database),
		userID:     userID,
		templates:  tmpl,
		logger:     logger.Named("web"),
	}, nil
}

// Handler returns the routes served by Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /clients", s.handleClients)
	mux.HandleFunc("GET /api/clients/{id}/priority", s.handleClientPriority)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("url", fmt.Sprintf("http://localhost:%d", port)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) {
	// The data map includes ContentTemplate to pick the content block inside layout.html
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type priorityCount struct {
	Level models.PriorityLevel
	Count int
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := s.priorities.CountByPriority(ctx, s.userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	total, err := s.clients.Count(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reminders, err := s.reminders.Summary(ctx, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var levels []priorityCount
	prioritized := 0
	for _, level := range []models.PriorityLevel{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		levels = append(levels, priorityCount{Level: level, Count: counts[level]})
		prioritized += counts[level]
	}

	data := map[string]any{
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
		"UserID":          s.userID,
		"Levels":          levels,
		"TotalClients":    total,
		"Unprioritized":   total - prioritized,
		"Reminders":       reminders,
	}

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	clients, err := s.clients.ListWithPriority(r.Context(), s.userID, query, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Title":           "Clients",
		"ContentTemplate": "clients-content",
		"Query":           query,
		"Clients":         clients,
	}

	s.renderTemplate(w, "layout.html", data)
}

type clientPriorityResponse struct {
	ClientID        string                 `json:"client_id"`
	ClientName      string                 `json:"client_name"`
	ActiveDealCount int                    `json:"active_deal_count"`
	Prioritization  *models.Prioritization `json:"prioritization"`
}

func (s *Server) handleClientPriority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid client ID")
		return
	}

	client, err := s.clients.Get(ctx, id)
	if errors.Is(err, db.ErrClientNotFound) {
		writeJSONError(w, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	deals, err := s.deals.ListByClient(ctx, id)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	p, err := s.priorities.FindByClientAndUser(ctx, id, s.userID)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, clientPriorityResponse{
		ClientID:        client.ID.String(),
		ClientName:      client.Name,
		ActiveDealCount: models.ActiveDealCount(deals),
		Prioritization:  p,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
