package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/nutritionai/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	st := store.NewMemoryStoreWithClock(func() time.Time { return now })

	_, err := st.Get(ctx, "k1")
	assert.True(t, errors.Is(err, store.ErrNotFound))
	require.NoError(t, st.Delete(ctx, "k1"))

	val := []byte("v1")
	require.NoError(t, st.Set(ctx, "k1", val, time.Minute))
	require.NoError(t, st.Set(ctx, "k2", []byte("v2"), 0))
	// the stored value is a copy
	val[0] = 'x'

	got, err := st.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	now = now.Add(time.Minute)
	_, err = st.Get(ctx, "k1")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	// no expiration
	now = now.Add(24 * time.Hour)
	got, err = st.Get(ctx, "k2")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))

	require.NoError(t, st.Delete(ctx, "k2"))
	_, err = st.Get(ctx, "k2")
	assert.True(t, errors.Is(err, store.ErrNotFound))

	assert.EqualError(t, st.Set(ctx, "k3", nil, -time.Second), "invalid TTL: -1s")
}

func Test_MemoryStore_Default(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, "k", []byte("v"), time.Hour))
	got, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
