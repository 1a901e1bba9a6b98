package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda/internal/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

func TestInitialize_InvalidURL(t *testing.T) {
	_, err := Initialize("not a url")
	assert.Error(t, err)
}

// Integration Tests

func setupStore(t *testing.T) *IdempotencyStore {
	url := os.Getenv("COMANDA_TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/15"
	}
	store, err := Initialize(url)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIdempotencyStore_Lifecycle(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	key := "test:" + uuid.New().String()

	existing, started, err := store.Begin(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, started)
	assert.Nil(t, existing)

	existing, started, err = store.Begin(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Nil(t, existing)

	require.NoError(t, store.Complete(ctx, key, idempotency.Response{
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(`{"updated":2}`),
	}, time.Minute))

	existing, started, err = store.Begin(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, started)
	require.NotNil(t, existing)
	assert.Equal(t, 200, existing.Status)
	assert.Equal(t, `{"updated":2}`, string(existing.Body))

	require.NoError(t, store.Abort(ctx, key))
	_, started, err = store.Begin(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, started)
	require.NoError(t, store.Abort(ctx, key))
}
