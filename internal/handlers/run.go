package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/engine"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// EngineControl is the engine surface the run handler drives.
// engine.Engine satisfies it; handler tests use a fake.
type EngineControl interface {
	ExecuteQueue(ctx context.Context, subject *actor.Subject, actions []action.Action)
	Stop()
	Status() engine.Status
}

var _ EngineControl = (*engine.Engine)(nil)

type ExecuteRequest struct {
	SubjectID string `json:"subject_id"`
}

// RunHandler is the engine control surface.
//
// Routes:
//
//	POST /v1/run        - Start executing a subject's queue
//	POST /v1/run/stop   - Emergency-stop the active run
//	GET  /v1/run/status - Point-in-time engine status
type RunHandler struct {
	storage storage.Storage
	engine  EngineControl
	sceneID string
	logger  *slog.Logger
}

func NewRunHandler(storage storage.Storage, engine EngineControl, sceneID string, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		storage: storage,
		engine:  engine,
		sceneID: sceneID,
		logger:  logger,
	}
}

func (h *RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	sub := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/run"), "/")

	switch {
	case sub == "" && r.Method == http.MethodPost:
		h.handleExecute(w, r)
	case sub == "stop" && r.Method == http.MethodPost:
		h.handleStop(w, r)
	case sub == "status" && r.Method == http.MethodGet:
		h.handleStatus(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *RunHandler) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubjectID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "subject_id is required")
		return
	}

	env, err := h.storage.LoadQueue(r.Context(), req.SubjectID)
	if err != nil {
		h.logger.Error("Failed to load queue for run", "subject", req.SubjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load queue")
		return
	}
	if env == nil || len(env.Actions) == 0 {
		writeError(w, h.logger, http.StatusNotFound, "No queue stored for subject")
		return
	}
	if !env.Enabled {
		writeError(w, h.logger, http.StatusConflict, "Queue is disabled")
		return
	}

	spec, err := h.resolveSpec(r.Context(), req.SubjectID)
	if err != nil {
		h.logger.Error("Failed to resolve subject", "subject", req.SubjectID, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "Subject not found")
		return
	}

	subject, err := actor.NewSubjectFromSpec(spec)
	if err != nil {
		h.logger.Error("Failed to build subject", "subject", req.SubjectID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to build subject")
		return
	}

	// The run outlives the request; concurrent triggers are dropped by
	// the engine's single-flight guard.
	go h.engine.ExecuteQueue(context.Background(), subject, env.Actions)

	h.logger.Info("Run triggered", "subject", req.SubjectID, "actions", len(env.Actions))
	w.WriteHeader(http.StatusAccepted)
	if err := json.NewEncoder(w).Encode(h.engine.Status()); err != nil {
		h.logger.Error("Failed to encode run response", "error", err)
	}
}

func (h *RunHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.engine.Stop()
	if err := json.NewEncoder(w).Encode(h.engine.Status()); err != nil {
		h.logger.Error("Failed to encode stop response", "error", err)
	}
}

func (h *RunHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := json.NewEncoder(w).Encode(h.engine.Status()); err != nil {
		h.logger.Error("Failed to encode status response", "error", err)
	}
}

// resolveSpec prefers the live scene combatant over the static spec.
func (h *RunHandler) resolveSpec(ctx context.Context, subjectID string) (*actor.SubjectSpec, error) {
	if h.sceneID != "" {
		sc, err := h.storage.LoadScene(ctx, h.sceneID)
		if err == nil && sc != nil {
			if spec, ok := sc.Combatant(subjectID); ok {
				return spec, nil
			}
		}
	}
	return h.storage.GetSubjectSpec(ctx, subjectID)
}
