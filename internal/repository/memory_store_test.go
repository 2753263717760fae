package repository

import (
	"context"
	"sync"
	"testing"

	"signage_server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemoryStore() })
}

func TestMemoryStoreConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()
	f := seed(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Playlists().AppendItem(ctx, f.playlist.ID, f.mediaA.ID))
		}()
	}
	wg.Wait()

	ids, err := store.Playlists().ItemMediaIDs(ctx, f.playlist.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 50)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	f := seed(t, store)
	ctx := context.Background()

	got, err := store.Devices().GetByID(ctx, f.device.ID)
	require.NoError(t, err)
	got.Name = "mutated"

	again, _ := store.Devices().GetByID(ctx, f.device.ID)
	assert.Equal(t, "Lobby", again.Name)

	logs := []models.DeviceLog{{ID: 1, Timestamp: at(10, 0)}, {ID: 2, Timestamp: at(10, 0)}}
	assert.Equal(t, uint(2), newestFirst(logs, 1)[0].ID)
}
