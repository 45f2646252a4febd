package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// SubjectsHandler serves the static subject spec library.
//
// Routes:
//
//	GET /v1/subjects      - List subject IDs
//	GET /v1/subjects/{id} - Read one subject spec
type SubjectsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSubjectsHandler(storage storage.Storage, logger *slog.Logger) *SubjectsHandler {
	return &SubjectsHandler{storage: storage, logger: logger}
}

func (h *SubjectsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/subjects"), "/")
	if id == "" {
		ids, err := h.storage.ListSubjects(r.Context())
		if err != nil {
			h.logger.Error("Failed to list subjects", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list subjects")
			return
		}
		if err := json.NewEncoder(w).Encode(ids); err != nil {
			h.logger.Error("Failed to encode subjects response", "error", err)
		}
		return
	}

	spec, err := h.storage.GetSubjectSpec(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Subject not found")
		return
	}
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode subject response", "error", err)
	}
}

// ItemsHandler serves the static item spec library.
//
// Routes:
//
//	GET /v1/items      - List item IDs
//	GET /v1/items/{id} - Read one item spec
type ItemsHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewItemsHandler(storage storage.Storage, logger *slog.Logger) *ItemsHandler {
	return &ItemsHandler{storage: storage, logger: logger}
}

func (h *ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/items"), "/")
	if id == "" {
		ids, err := h.storage.ListItems(r.Context())
		if err != nil {
			h.logger.Error("Failed to list items", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list items")
			return
		}
		if err := json.NewEncoder(w).Encode(ids); err != nil {
			h.logger.Error("Failed to encode items response", "error", err)
		}
		return
	}

	spec, err := h.storage.GetItemSpec(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Item not found")
		return
	}
	if err := json.NewEncoder(w).Encode(spec); err != nil {
		h.logger.Error("Failed to encode item response", "error", err)
	}
}
