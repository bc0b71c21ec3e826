// mock_records.go - In-memory conversion history for testing
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cobol-converter/backend/internal/models"
	"github.com/cobol-converter/backend/internal/records"
)

// MockRecords implements records.Store in memory.
type MockRecords struct {
	mu    sync.RWMutex
	items map[string]*models.Conversion

	// InsertErr, when set, is returned by Insert.
	InsertErr error
}

// NewMockRecords creates an empty record store.
func NewMockRecords() *MockRecords {
	return &MockRecords{items: make(map[string]*models.Conversion)}
}

var _ records.Store = (*MockRecords)(nil)

func (m *MockRecords) Insert(ctx context.Context, c *models.Conversion) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = fmt.Sprintf("conv-%d", len(m.items)+1)
	}
	if c.UploadedAt.IsZero() {
		c.UploadedAt = time.Now()
	}
	cp := *c
	m.items[c.ID] = &cp
	return nil
}

func (m *MockRecords) Get(ctx context.Context, id string) (*models.Conversion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.items[id]
	if !ok {
		return nil, records.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MockRecords) List(ctx context.Context, limit int) ([]models.ConversionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]models.ConversionSummary, 0, len(m.items))
	for _, c := range m.items {
		list = append(list, c.Summary())
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockRecords) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return records.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// Count returns the number of stored conversions.
func (m *MockRecords) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
