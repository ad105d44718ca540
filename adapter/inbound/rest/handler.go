package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ajkula/GoBatchPrint/domain/model"
	"github.com/ajkula/GoBatchPrint/domain/port/inbound"
	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

const defaultHistoryLimit = 20

// Handler serves the print session REST API
type Handler struct {
	sessions inbound.PrintSessionService
	files    inbound.FileEnumerator
	printers outbound.PrinterResolver
	journal  outbound.JournalRepository
	watch    inbound.FolderWatchService
	stats    inbound.StatsService
	handlers inbound.SessionHandlers
	logger   outbound.Logger
}

// NewHandler wires the API. journal and watch may be nil.
func NewHandler(
	sessions inbound.PrintSessionService,
	files inbound.FileEnumerator,
	printers outbound.PrinterResolver,
	journal outbound.JournalRepository,
	watch inbound.FolderWatchService,
	handlers inbound.SessionHandlers,
	logger outbound.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		files:    files,
		printers: printers,
		journal:  journal,
		watch:    watch,
		handlers: handlers,
		logger:   logger,
	}
}

// SetStatsService enables GET /api/stats; call before SetupRoutes
func (h *Handler) SetStatsService(stats inbound.StatsService) {
	h.stats = stats
}

// SetupRoutes configures the REST API routes
func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/health", h.healthCheck).Methods("GET")
	router.HandleFunc("/api/printer", h.getPrinter).Methods("GET")
	router.HandleFunc("/api/files", h.listFiles).Methods("GET")

	router.HandleFunc("/api/sessions", h.startSession).Methods("POST")
	router.HandleFunc("/api/sessions", h.listSessions).Methods("GET")
	router.HandleFunc("/api/sessions/current", h.currentSession).Methods("GET")

	if h.watch != nil {
		router.HandleFunc("/api/watch", h.watchStatus).Methods("GET")
	}
	if h.stats != nil {
		router.HandleFunc("/api/stats", h.getStats).Methods("GET")
	}
}

type startSessionRequest struct {
	Directory string `json:"directory"`
}

type sessionResponse struct {
	*model.Session
	State model.SessionState `json:"state"`
}

type reportResponse struct {
	*model.SessionReport
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Duration  string `json:"duration"`
}

func toReportResponse(report *model.SessionReport) *reportResponse {
	if report == nil {
		return nil
	}
	return &reportResponse{
		SessionReport: report,
		Total:         len(report.Results),
		Succeeded:     report.Succeeded(),
		Failed:        len(report.Results) - report.Succeeded(),
		Duration:      report.Duration().String(),
	}
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getPrinter(w http.ResponseWriter, r *http.Request) {
	name, err := h.printers.DefaultPrinter(r.Context())
	if err != nil {
		h.logger.Warn("Default printer query failed", "error", err)
		writeError(w, http.StatusConflict, "no_printer", err.Error())
		return
	}
	if name == "" {
		writeError(w, http.StatusConflict, "no_printer", model.ErrNoPrinter.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"printer": name})
}

// listFiles enumerates for display only; a later session rescans
func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query parameter dir is required")
		return
	}

	names, err := h.files.List(r.Context(), dir)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"directory": dir,
		"files":     names,
		"count":     len(names),
	})
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.Directory == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", model.ErrDirectoryRequired.Error())
		return
	}

	session, err := h.sessions.Run(r.Context(), req.Directory, h.handlers)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	status := http.StatusAccepted
	if session.Outcome == model.OutcomeNoFiles {
		status = http.StatusOK
	}

	h.logger.Info("Print session requested over HTTP",
		"session", session.ID, "directory", session.Directory, "outcome", session.Outcome)
	writeJSON(w, status, sessionResponse{Session: session, State: h.sessions.State()})
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":      h.sessions.State(),
		"lastReport": toReportResponse(h.sessions.LastReport()),
	})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	response := make([]*reportResponse, 0)
	if h.journal != nil {
		reports, err := h.journal.List(r.Context(), limit)
		if err != nil {
			h.logger.Error("Failed to read session journal", "error", err)
			writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
			return
		}
		for _, report := range reports {
			response = append(response, toReportResponse(report))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": response,
		"count":    len(response),
	})
}

func (h *Handler) watchStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"watching": h.watch.IsWatching(),
		"folder":   h.watch.GetWatchedFolder(),
		"pending":  h.watch.PendingFiles(),
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "journal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeSessionError maps domain errors to HTTP statuses
func (h *Handler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrDirectoryRequired):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, model.ErrFilesystem):
		writeError(w, http.StatusNotFound, "filesystem_error", err.Error())
	case errors.Is(err, model.ErrNoPrinter):
		writeError(w, http.StatusConflict, "no_printer", err.Error())
	case errors.Is(err, model.ErrSessionInProgress):
		writeError(w, http.StatusConflict, "session_in_progress", err.Error())
	default:
		h.logger.Error("Unexpected print session error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
