package storage

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	config "github.com/thirdweb-dev/ledger-indexer/configs"
	"github.com/thirdweb-dev/ledger-indexer/internal/common"
)

// MemoryConnector keeps checkpoints in process memory. Used by tests and dry runs.
type MemoryConnector struct {
	cache *lru.Cache[common.Category, []byte]
}

func NewMemoryConnector(cfg *config.MemoryConfig) (*MemoryConnector, error) {
	// sized well above the number of categories so nothing is ever evicted
	cache, err := lru.New[common.Category, []byte](4 * len(common.AllCategories))
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &MemoryConnector{cache: cache}, nil
}

func (m *MemoryConnector) Read(ctx context.Context, category common.Category) ([]byte, error) {
	value, ok := m.cache.Get(category)
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryConnector) Write(ctx context.Context, category common.Category, data []byte) error {
	value := make([]byte, len(data))
	copy(value, data)
	m.cache.Add(category, value)
	return nil
}

func (m *MemoryConnector) Close() error {
	m.cache.Purge()
	return nil
}
