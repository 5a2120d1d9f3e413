package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := NewMemoryStoreWithClock(func() time.Time { return now }).(*inMemory)

	for i := range 10 {
		require.NoError(t, st.Set(ctx, fmt.Sprintf("search/%d", i), []byte("v"), time.Second))
	}
	require.NoError(t, st.Set(ctx, "token", []byte("t"), 0))
	assert.Len(t, st.storage, 11)

	// expired, but not swept before the interval
	now = now.Add(30 * time.Second)
	require.NoError(t, st.Set(ctx, "k1", []byte("v"), time.Hour))
	assert.Len(t, st.storage, 12)

	// the expired items are removed without being read
	now = now.Add(sweepInterval)
	require.NoError(t, st.Set(ctx, "k2", []byte("v"), time.Hour))
	assert.Len(t, st.storage, 3)
	assert.Contains(t, st.storage, "token")
	assert.Contains(t, st.storage, "k1")
	assert.Contains(t, st.storage, "k2")
	assert.Equal(t, now, st.lastSweep)
}
