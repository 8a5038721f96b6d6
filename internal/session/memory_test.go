package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	sid, err := s.Create(ctx, 7)
	require.NoError(t, err)
	require.NotEmpty(t, sid)

	userID, err := s.Get(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)

	require.NoError(t, s.Destroy(ctx, sid))
	_, err = s.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound)

	// Destroying twice is not an error.
	assert.NoError(t, s.Destroy(ctx, sid))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(-time.Second)

	sid, err := s.Create(ctx, 7)
	require.NoError(t, err)

	_, err = s.Get(ctx, sid)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFlashes(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)

	sid, err := s.Create(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, s.AddFlash(ctx, sid, Flash{Level: "error", Message: "nope"}))
	require.NoError(t, s.AddFlash(ctx, sid, Flash{Level: "info", Message: "hi"}))

	flashes, err := s.PopFlashes(ctx, sid)
	require.NoError(t, err)
	require.Len(t, flashes, 2)
	assert.Equal(t, "nope", flashes[0].Message)

	// Popped once; the second read is empty.
	flashes, err = s.PopFlashes(ctx, sid)
	require.NoError(t, err)
	assert.Empty(t, flashes)
}
