package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/engine"
	"github.com/jwebster45206/turn-engine/pkg/scene"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

// fakeEngine records control calls from the run handler.
type fakeEngine struct {
	mu       sync.Mutex
	executed chan string
	stopped  bool
	status   engine.Status
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{executed: make(chan string, 4)}
}

func (f *fakeEngine) ExecuteQueue(ctx context.Context, subject *actor.Subject, actions []action.Action) {
	f.executed <- subject.ID()
}

func (f *fakeEngine) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeEngine) Status() engine.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeEngine) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

func goblinSpec() *actor.SubjectSpec {
	return &actor.SubjectSpec{
		ID: "goblin-1", Name: "Snag", Disposition: actor.DispositionHostile,
		HP: 7, MaxHP: 7, AC: 13, Speed: 30, Visible: true,
	}
}

func TestRunHandler_Execute(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddSubjectSpec("goblin-1", goblinSpec())
	if err := mockStorage.SaveQueue(context.Background(), "goblin-1", sampleEnvelope()); err != nil {
		t.Fatalf("Failed to seed queue: %v", err)
	}
	eng := newFakeEngine()
	handler := NewRunHandler(mockStorage, eng, "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{"subject_id":"goblin-1"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Response body: %s", rr.Code, rr.Body.String())
	}

	select {
	case id := <-eng.executed:
		if id != "goblin-1" {
			t.Errorf("Expected a run for goblin-1, got %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for the engine call")
	}
}

func TestRunHandler_ExecutePrefersSceneCombatant(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	if err := mockStorage.SaveQueue(context.Background(), "goblin-1", sampleEnvelope()); err != nil {
		t.Fatalf("Failed to seed queue: %v", err)
	}
	// The subject exists only as a scene combatant, not as a spec file.
	sc := &scene.Scene{ID: "ambush", Combatants: []*actor.SubjectSpec{goblinSpec()}}
	if err := mockStorage.SaveScene(context.Background(), sc); err != nil {
		t.Fatalf("Failed to seed scene: %v", err)
	}
	eng := newFakeEngine()
	handler := NewRunHandler(mockStorage, eng, "ambush", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{"subject_id":"goblin-1"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
}

func TestRunHandler_ExecuteNoQueue(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddSubjectSpec("goblin-1", goblinSpec())
	handler := NewRunHandler(mockStorage, newFakeEngine(), "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{"subject_id":"goblin-1"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestRunHandler_ExecuteDisabledQueue(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddSubjectSpec("goblin-1", goblinSpec())
	env := sampleEnvelope()
	env.Enabled = false
	if err := mockStorage.SaveQueue(context.Background(), "goblin-1", env); err != nil {
		t.Fatalf("Failed to seed queue: %v", err)
	}
	handler := NewRunHandler(mockStorage, newFakeEngine(), "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{"subject_id":"goblin-1"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rr.Code)
	}
}

func TestRunHandler_ExecuteMissingSubjectID(t *testing.T) {
	handler := NewRunHandler(storage.NewMockStorage(), newFakeEngine(), "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestRunHandler_ExecuteUnknownSubject(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	if err := mockStorage.SaveQueue(context.Background(), "ghost", sampleEnvelope()); err != nil {
		t.Fatalf("Failed to seed queue: %v", err)
	}
	handler := NewRunHandler(mockStorage, newFakeEngine(), "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run", strings.NewReader(`{"subject_id":"ghost"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestRunHandler_Stop(t *testing.T) {
	eng := newFakeEngine()
	handler := NewRunHandler(storage.NewMockStorage(), eng, "", testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/run/stop", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if !eng.wasStopped() {
		t.Error("Expected the engine to be stopped")
	}
}

func TestRunHandler_Status(t *testing.T) {
	eng := newFakeEngine()
	eng.status = engine.Status{Executing: true, SubjectID: "goblin-1", ActionsCompleted: 2}
	handler := NewRunHandler(storage.NewMockStorage(), eng, "", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/run/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var status engine.Status
	if err := json.NewDecoder(rr.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if !status.Executing || status.SubjectID != "goblin-1" || status.ActionsCompleted != 2 {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestRunHandler_MethodNotAllowed(t *testing.T) {
	handler := NewRunHandler(storage.NewMockStorage(), newFakeEngine(), "", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/run", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
