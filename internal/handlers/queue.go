package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// QueueHandler manages a subject's stored action queue.
//
// Routes:
//
//	GET    /v1/queue/{subject}         - Read the stored queue envelope
//	PUT    /v1/queue/{subject}         - Replace the stored queue envelope
//	DELETE /v1/queue/{subject}         - Delete the queue
//	GET    /v1/queue/{subject}/export  - Export the queue for sharing
//	POST   /v1/queue/{subject}/import  - Import an envelope (?append=true to append)
type QueueHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewQueueHandler(storage storage.Storage, logger *slog.Logger) *QueueHandler {
	return &QueueHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *QueueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/queue")
	path = strings.Trim(path, "/")
	parts := strings.SplitN(path, "/", 2)

	subjectID := parts[0]
	if subjectID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Subject ID is required")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, subjectID)
	case sub == "" && r.Method == http.MethodPut:
		h.handleReplace(w, r, subjectID)
	case sub == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, subjectID)
	case sub == "export" && r.Method == http.MethodGet:
		h.handleExport(w, r, subjectID)
	case sub == "import" && r.Method == http.MethodPost:
		h.handleImport(w, r, subjectID)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *QueueHandler) handleRead(w http.ResponseWriter, r *http.Request, subjectID string) {
	env, err := h.storage.LoadQueue(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to load queue", "subject", subjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load queue")
		return
	}
	if env == nil {
		writeError(w, h.logger, http.StatusNotFound, "No queue stored for subject")
		return
	}

	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.Error("Failed to encode queue response", "error", err)
	}
}

func (h *QueueHandler) handleReplace(w http.ResponseWriter, r *http.Request, subjectID string) {
	var env action.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid queue envelope")
		return
	}
	if env.Version == 0 {
		env.Version = action.EnvelopeVersion
	}

	if err := h.storage.SaveQueue(r.Context(), subjectID, &env); err != nil {
		h.logger.Error("Failed to save queue", "subject", subjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save queue")
		return
	}

	h.logger.Info("Queue replaced", "subject", subjectID, "actions", len(env.Actions))
	if err := json.NewEncoder(w).Encode(&env); err != nil {
		h.logger.Error("Failed to encode queue response", "error", err)
	}
}

func (h *QueueHandler) handleDelete(w http.ResponseWriter, r *http.Request, subjectID string) {
	if err := h.storage.DeleteQueue(r.Context(), subjectID); err != nil {
		h.logger.Error("Failed to delete queue", "subject", subjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete queue")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *QueueHandler) handleExport(w http.ResponseWriter, r *http.Request, subjectID string) {
	env, err := h.storage.LoadQueue(r.Context(), subjectID)
	if err != nil {
		h.logger.Error("Failed to load queue for export", "subject", subjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load queue")
		return
	}
	if env == nil {
		writeError(w, h.logger, http.StatusNotFound, "No queue stored for subject")
		return
	}

	exported := action.Export(env.Actions)
	if err := json.NewEncoder(w).Encode(exported); err != nil {
		h.logger.Error("Failed to encode export response", "error", err)
	}
}

func (h *QueueHandler) handleImport(w http.ResponseWriter, r *http.Request, subjectID string) {
	var env action.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid queue envelope")
		return
	}

	appendMode := r.URL.Query().Get("append") == "true"

	var existing []action.Action
	if appendMode {
		current, err := h.storage.LoadQueue(r.Context(), subjectID)
		if err != nil {
			h.logger.Error("Failed to load queue for import", "subject", subjectID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to load queue")
			return
		}
		if current != nil {
			existing = current.Actions
		}
	}

	merged := action.Import(&env, existing, appendMode)
	result := action.NewEnvelope(merged)

	if err := h.storage.SaveQueue(r.Context(), subjectID, result); err != nil {
		h.logger.Error("Failed to save imported queue", "subject", subjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save queue")
		return
	}

	h.logger.Info("Queue imported",
		"subject", subjectID,
		"append", appendMode,
		"actions", len(merged))
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("Failed to encode import response", "error", err)
	}
}
