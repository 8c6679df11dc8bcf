// Package web serves the visit dashboard: a small UI plus a JSON API
// for starting CVS-to-Git visits and watching their progress, adapted
// from the teacher's migration dashboard of the same shape.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/adamf123git/cvs-archive-loader/internal/cvs"
	"github.com/adamf123git/cvs-archive-loader/internal/progress"
	"github.com/adamf123git/cvs-archive-loader/internal/visit"
)

// Server is the visit dashboard's HTTP server.
type Server struct {
	config ServerConfig
	router *chi.Mux

	mu     sync.RWMutex
	visits map[string]*VisitStatus
}

// NewServer creates a new dashboard server.
func NewServer(config ServerConfig) *Server {
	s := &Server{
		config: config,
		visits: make(map[string]*VisitStatus),
	}
	s.setupRouter()
	return s
}

// Router returns the HTTP router.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) setupRouter() {
	s.router = chi.NewRouter()

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)

	s.router.Get("/static/*", s.serveStatic)

	s.router.Get("/", s.serveIndex)
	s.router.Get("/new", s.serveNewVisit)
	s.router.Get("/visit/{id}", s.serveVisit)

	s.router.Get("/api/health", s.handleHealth)
	s.router.Get("/api/visits", s.handleListVisits)
	s.router.Post("/api/visits", s.handleStartVisit)
	s.router.Get("/api/visits/{id}", s.handleGetVisit)
	s.router.Get("/api/defaults", s.handleGetDefaults)
	s.router.Post("/api/repos/analyze", s.handleAnalyzeRepo)

	s.router.Get("/ws/progress/{id}", s.handleWebSocket)
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	fs := http.FileServer(getStaticFS())
	http.StripPrefix("/static/", fs).ServeHTTP(w, r)
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, indexHTML)
}

func (s *Server) serveNewVisit(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, newVisitHTML)
}

func (s *Server) serveVisit(w http.ResponseWriter, r *http.Request) {
	writeHTML(w, visitHTML)
}

func writeHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		log.Printf("Warning: failed to write HTML response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, resp APIResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Warning: failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	writeJSON(w, ErrorResponse(code, message))
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SuccessResponse(HealthStatus{Status: "ok", Version: "0.1.0"}))
}

// handleGetDefaults handles GET /api/defaults.
func (s *Server) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, SuccessResponse(LoaderDefaults{FuzzWindowSeconds: 300, PlaceholderDomain: "cvs.invalid"}))
}

// handleListVisits handles GET /api/visits.
func (s *Server) handleListVisits(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := make([]interface{}, 0, len(s.visits))
	for _, v := range s.visits {
		out = append(out, v)
	}
	s.mu.RUnlock()

	writeJSON(w, SuccessResponse(out))
}

// handleStartVisit handles POST /api/visits: it records a pending
// VisitStatus, launches the visit in the background, and returns
// immediately with the new visit's id, the same fire-and-watch shape
// the teacher's dashboard used for a migration.
func (s *Server) handleStartVisit(w http.ResponseWriter, r *http.Request) {
	var req StartVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if req.SourcePath == "" || req.TargetPath == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields")
		return
	}
	if req.Origin == "" {
		req.Origin = req.SourcePath
	}

	id := uuid.New().String()
	now := time.Now()
	status := &VisitStatus{
		ID:        id,
		Origin:    req.Origin,
		Status:    "pending",
		Operation: "queued",
		Errors:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.visits[id] = status
	s.mu.Unlock()

	reporter := progress.NewReporter(0)
	reporter.Subscribe(func(st progress.Status) {
		s.mu.Lock()
		defer s.mu.Unlock()
		v, ok := s.visits[id]
		if !ok {
			return
		}
		v.Operation = st.Operation
		v.ChangesetsDone = st.ChangesetsDone
		v.ChangesetsTotal = st.ChangesetsTotal
		v.Percentage = st.Percentage
		v.UpdatedAt = time.Now()
	})

	sourceKind := visit.SourceKind(req.SourceKind)
	if sourceKind == "" {
		sourceKind = visit.SourceLocal
	}
	cfg := visit.Config{
		Origin:            req.Origin,
		SourceKind:        sourceKind,
		SourcePath:        req.SourcePath,
		Module:            req.Module,
		Hostname:          req.Hostname,
		Port:              req.Port,
		Username:          req.Username,
		Password:          req.Password,
		TargetPath:        req.TargetPath,
		PlaceholderDomain: req.PlaceholderDomain,
		Progress:          reporter,
	}

	go s.runVisit(id, cfg)

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, SuccessResponse(map[string]interface{}{
		"id":      id,
		"status":  status.Status,
		"message": "visit started",
	}))
}

func (s *Server) runVisit(id string, cfg visit.Config) {
	s.mu.Lock()
	if v, ok := s.visits[id]; ok {
		v.Status = "running"
		v.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	result, err := visit.Run(context.Background(), cfg)

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visits[id]
	if !ok {
		return
	}
	v.UpdatedAt = time.Now()
	if err != nil {
		v.Status = "failed"
		v.Errors = append(v.Errors, err.Error())
		return
	}

	v.Status = string(result.Status)
	if result.Snapshot != nil {
		if b, ok := result.Snapshot.Branches["master"]; ok {
			v.SnapshotID = b.Target.String()
		}
	}
}

// handleGetVisit handles GET /api/visits/:id.
func (s *Server) handleGetVisit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	v, exists := s.visits[id]
	s.mu.RUnlock()

	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Visit not found")
		return
	}
	writeJSON(w, SuccessResponse(v))
}

// handleAnalyzeRepo handles POST /api/repos/analyze: for a local
// source it walks the repository and reports how many RCS files it
// found, without materializing anything.
func (s *Server) handleAnalyzeRepo(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if req.SourceKind == "" || req.SourcePath == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing required fields")
		return
	}

	if req.SourceKind != "local" {
		writeJSON(w, SuccessResponse(map[string]interface{}{
			"sourceKind": req.SourceKind,
			"sourcePath": req.SourcePath,
			"analyzed":   false,
		}))
		return
	}

	files, err := cvs.WalkRepository(req.SourcePath)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ANALYZE_FAILED", err.Error())
		return
	}

	revisionCount := 0
	for _, f := range files {
		revisionCount += len(f.RCS.DeltaOrder)
	}

	writeJSON(w, SuccessResponse(map[string]interface{}{
		"sourceKind": req.SourceKind,
		"sourcePath": req.SourcePath,
		"fileCount":  len(files),
		"revisions":  revisionCount,
		"analyzed":   true,
	}))
}

// Start runs the dashboard's HTTP server until it errors.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	fmt.Printf("Starting web server on %s\n", addr)
	return http.ListenAndServe(addr, s.router)
}
