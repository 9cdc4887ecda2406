package filestore

import (
	"context"
	"sync"

	dErrors "dealdesk/pkg/domain-errors"
)

// Memory is an in-process blob store for tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]map[string][]byte)}
}

func (m *Memory) Upload(_ context.Context, ownerID, storedName string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	container, ok := m.blobs[ownerID]
	if !ok {
		container = make(map[string][]byte)
		m.blobs[ownerID] = container
	}
	container[storedName] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Download(_ context.Context, ownerID, storedName string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	container, ok := m.blobs[ownerID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeBlobContainerNotFound, "no files stored for entity")
	}
	data, ok := container[storedName]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "stored file not found")
	}
	return append([]byte(nil), data...), nil
}

func (m *Memory) Delete(_ context.Context, ownerID, storedName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	container, ok := m.blobs[ownerID]
	if !ok {
		return dErrors.New(dErrors.CodeBlobContainerNotFound, "no files stored for entity")
	}
	delete(container, storedName)
	return nil
}
