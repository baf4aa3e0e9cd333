package discord

import (
	"context"
	"sync"
	"time"

	"github.com/jose-valero/infinity-music-bot/internal/domain"
)

// MemoryRefStore is the RefStore used when no database is configured.
type MemoryRefStore struct {
	mu   sync.Mutex
	refs map[domain.SurfaceKey]domain.SurfaceRef
}

func NewMemoryRefStore() *MemoryRefStore {
	return &MemoryRefStore{refs: map[domain.SurfaceKey]domain.SurfaceRef{}}
}

func (m *MemoryRefStore) LoadSurfaces(context.Context) ([]domain.SurfaceRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SurfaceRef, 0, len(m.refs))
	for _, r := range m.refs {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryRefStore) SaveSurface(_ context.Context, ref domain.SurfaceRef) error {
	if ref.UpdatedAt.IsZero() {
		ref.UpdatedAt = time.Now()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[ref.SurfaceKey] = ref
	return nil
}

func (m *MemoryRefStore) DeleteSurface(_ context.Context, key domain.SurfaceKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refs, key)
	return nil
}

func (m *MemoryRefStore) ForgetChannels(_ context.Context, channelIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channelIDs {
		for k := range m.refs {
			if k.ChannelID == ch {
				delete(m.refs, k)
			}
		}
	}
	return nil
}
