package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/item"
	"github.com/jwebster45206/turn-engine/pkg/storage"
)

func TestSubjectsHandler_List(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddSubjectSpec("fighter", &actor.SubjectSpec{ID: "fighter"})
	mockStorage.AddSubjectSpec("goblin-1", &actor.SubjectSpec{ID: "goblin-1"})
	handler := NewSubjectsHandler(mockStorage, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/subjects", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var ids []string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ids))
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "fighter")
	assert.Contains(t, ids, "goblin-1")
}

func TestSubjectsHandler_Get(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddSubjectSpec("goblin-1", &actor.SubjectSpec{
		ID: "goblin-1", Name: "Snag", HP: 7, MaxHP: 7, AC: 13,
	})
	handler := NewSubjectsHandler(mockStorage, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/subjects/goblin-1", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var spec actor.SubjectSpec
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&spec))
	assert.Equal(t, "Snag", spec.Name)
	assert.Equal(t, 13, spec.AC)
}

func TestSubjectsHandler_GetNotFound(t *testing.T) {
	handler := NewSubjectsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/subjects/nobody", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubjectsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSubjectsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/subjects", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestItemsHandler_ListAndGet(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddItemSpec("longsword", &item.Spec{
		ID: "longsword", Name: "Longsword", Kind: item.KindWeapon, DamageDice: "1d8+3",
	})
	handler := NewItemsHandler(mockStorage, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var ids []string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&ids))
	assert.Equal(t, []string{"longsword"}, ids)

	req = httptest.NewRequest(http.MethodGet, "/v1/items/longsword", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var spec item.Spec
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&spec))
	assert.Equal(t, "1d8+3", spec.DamageDice)
}

func TestItemsHandler_GetNotFound(t *testing.T) {
	handler := NewItemsHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/items/vorpal-sword", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
