package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ajkula/GoBatchPrint/domain/port/outbound"
)

// LevelUpdater changes the log level of a running logger
type LevelUpdater interface {
	UpdateLevel(logLvl string)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// SettingsHandler exposes the runtime settings that can change without a restart
type SettingsHandler struct {
	levels LevelUpdater
	logger outbound.Logger

	mu    sync.RWMutex
	level string
}

func NewSettingsHandler(levels LevelUpdater, currentLevel string, logger outbound.Logger) *SettingsHandler {
	return &SettingsHandler{
		levels: levels,
		logger: logger,
		level:  strings.ToLower(currentLevel),
	}
}

func (h *SettingsHandler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/settings/log-level", h.getLogLevel).Methods("GET")
	router.HandleFunc("/api/settings/log-level", h.updateLogLevel).Methods("PUT")
}

type logLevelRequest struct {
	Level string `json:"level"`
}

func (h *SettingsHandler) getLogLevel(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	writeJSON(w, http.StatusOK, map[string]string{"level": h.level})
}

func (h *SettingsHandler) updateLogLevel(w http.ResponseWriter, r *http.Request) {
	var req logLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	level := strings.ToLower(strings.TrimSpace(req.Level))
	if !validLogLevels[level] {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid log level: "+req.Level)
		return
	}

	h.mu.Lock()
	h.level = level
	h.mu.Unlock()

	h.levels.UpdateLevel(level)
	h.logger.Info("Log level updated over HTTP", "new_level", level)

	writeJSON(w, http.StatusOK, map[string]string{"level": level})
}
