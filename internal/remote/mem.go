package remote

import (
	"context"
	"fmt"
	"sync"
)

// MemClient — in-memory заглушка хранилища (dev-режим без base_url и тесты).
type MemClient struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

func NewMemClient() *MemClient {
	return &MemClient{collections: make(map[string][]Document)}
}

// Seed заменяет содержимое коллекции.
func (m *MemClient) Seed(collection string, docs []Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Document, len(docs))
	copy(cp, docs)
	m.collections[collection] = cp
}

// Add добавляет документ в коллекцию.
func (m *MemClient) Add(collection string, doc Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], doc)
}

func (m *MemClient) FetchAll(_ context.Context, collection string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.collections[collection]
	out := make([]Document, len(docs))
	copy(out, docs)
	return out, nil
}

func (m *MemClient) FetchWhere(_ context.Context, collection, field, op string, value any) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for _, doc := range m.collections[collection] {
		match, err := matches(doc, field, op, value)
		if err != nil {
			return nil, err
		}
		if match {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemClient) FetchByID(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idFields := []string{"_id", "hubId", "deviceId", "roomId"}
	for _, doc := range m.collections[collection] {
		for _, f := range idFields {
			if doc.Str(f) == id {
				return doc, nil
			}
		}
	}
	return nil, ErrNotFound
}

func matches(doc Document, field, op string, value any) (bool, error) {
	switch op {
	case "==":
		return fmt.Sprint(doc[field]) == fmt.Sprint(value), nil
	case "array-contains":
		list, _ := doc[field].([]any)
		for _, item := range list {
			if fmt.Sprint(item) == fmt.Sprint(value) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("remote: unsupported operator %q", op)
	}
}
