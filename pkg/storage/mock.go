package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/jwebster45206/turn-engine/pkg/action"
	"github.com/jwebster45206/turn-engine/pkg/actor"
	"github.com/jwebster45206/turn-engine/pkg/item"
	"github.com/jwebster45206/turn-engine/pkg/scene"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	queues    map[string]*action.Envelope
	scenes    map[string]*scene.Scene
	subjects  map[string]*actor.SubjectSpec
	items     map[string]*item.Spec
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		queues:   make(map[string]*action.Envelope),
		scenes:   make(map[string]*scene.Scene),
		subjects: make(map[string]*actor.SubjectSpec),
		items:    make(map[string]*item.Spec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveQueue mocks saving a queue envelope
func (m *MockStorage) SaveQueue(ctx context.Context, subjectID string, env *action.Envelope) error {
	if env == nil {
		return errors.New("envelope cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[subjectID] = env
	return nil
}

// LoadQueue mocks loading a queue envelope
func (m *MockStorage) LoadQueue(ctx context.Context, subjectID string) (*action.Envelope, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	env, exists := m.queues[subjectID]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return env, nil
}

// DeleteQueue mocks deleting a queue
func (m *MockStorage) DeleteQueue(ctx context.Context, subjectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queues, subjectID)
	return nil
}

// SaveScene mocks saving a scene
func (m *MockStorage) SaveScene(ctx context.Context, sc *scene.Scene) error {
	if sc == nil {
		return errors.New("scene cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scenes[sc.ID] = sc
	return nil
}

// LoadScene mocks loading a scene
func (m *MockStorage) LoadScene(ctx context.Context, id string) (*scene.Scene, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sc, exists := m.scenes[id]
	if !exists {
		return nil, nil
	}
	return sc, nil
}

// GetSubjectSpec mocks getting a subject spec by ID
func (m *MockStorage) GetSubjectSpec(ctx context.Context, subjectID string) (*actor.SubjectSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, exists := m.subjects[subjectID]
	if !exists {
		return nil, errors.New("subject spec not found")
	}
	return spec, nil
}

// ListSubjects mocks listing subjects
func (m *MockStorage) ListSubjects(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, 0, len(m.subjects))
	for id := range m.subjects {
		result = append(result, id)
	}
	return result, nil
}

// AddSubjectSpec adds a subject spec to the mock storage (for testing)
func (m *MockStorage) AddSubjectSpec(subjectID string, spec *actor.SubjectSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[subjectID] = spec
}

// GetItemSpec mocks getting an item spec by ID
func (m *MockStorage) GetItemSpec(ctx context.Context, itemID string) (*item.Spec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, exists := m.items[itemID]
	if !exists {
		return nil, errors.New("item spec not found")
	}
	return spec, nil
}

// ListItems mocks listing items
func (m *MockStorage) ListItems(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]string, 0, len(m.items))
	for id := range m.items {
		result = append(result, id)
	}
	return result, nil
}

// AddItemSpec adds an item spec to the mock storage (for testing)
func (m *MockStorage) AddItemSpec(itemID string, spec *item.Spec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemID] = spec
}
