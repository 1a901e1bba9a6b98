package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comanda/internal/domain"
)

func settledStore(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore(nil)
	svc, _ := newPaymentService(store)

	for _, table := range []uint{2, 4} {
		ids := store.addOrder(table, dish("Burger", "32.00", 1, domain.OriginKitchen))
		store.setStatus(ids[0], domain.ItemStatusReady)
		_, err := svc.PayTable(context.Background(), table)
		require.NoError(t, err)
	}
	require.Len(t, store.outbox, 2)
	return store
}

func TestRelayOnce_DeliversAndMarksDone(t *testing.T) {
	store := settledStore(t)
	artifacts := newFakeArtifacts(new([]string))
	pub := &fakePublisher{}
	relay := NewOutboxRelay(&fakeTx{}, store, artifacts, pub, 10, time.Second, zap.NewNop())

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, artifacts.receipts, 2)
	assert.Equal(t, []string{store.records[0].ID, store.records[1].ID}, pub.published)

	for _, e := range store.outbox {
		assert.Equal(t, domain.OutboxDone, e.Status)
	}

	n, err = relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayOnce_PublishFailureKeepsEntryPending(t *testing.T) {
	store := settledStore(t)
	pub := &fakePublisher{err: errors.New("broker down")}
	relay := NewOutboxRelay(&fakeTx{}, store, newFakeArtifacts(new([]string)), pub, 10, time.Second, zap.NewNop())

	n, err := relay.RelayOnce(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
	for _, e := range store.outbox {
		assert.Equal(t, domain.OutboxPending, e.Status)
	}
}

func TestRelayOnce_RespectsBatchSize(t *testing.T) {
	store := settledStore(t)
	relay := NewOutboxRelay(&fakeTx{}, store, newFakeArtifacts(new([]string)), &fakePublisher{}, 1, time.Second, zap.NewNop())

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.OutboxDone, store.outbox[0].Status)
	assert.Equal(t, domain.OutboxPending, store.outbox[1].Status)
}

func TestRelayOnce_DropsMalformedEntry(t *testing.T) {
	store := newMemStore(nil)
	require.NoError(t, store.CreateOutbox(context.Background(), "bad", []byte(`not json`)))
	relay := NewOutboxRelay(&fakeTx{}, store, newFakeArtifacts(new([]string)), &fakePublisher{}, 10, time.Second, zap.NewNop())

	n, err := relay.RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.OutboxDone, store.outbox[0].Status)
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := settledStore(t)
	pub := &fakePublisher{}
	relay := NewOutboxRelay(&fakeTx{}, store, newFakeArtifacts(new([]string)), pub, 10, 5*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		pending, _ := store.GetPendingOutbox(context.Background(), 10)
		return len(pending) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestFlush_DrainsEveryBatch(t *testing.T) {
	store := settledStore(t)
	artifacts := newFakeArtifacts(new([]string))
	pub := &fakePublisher{}
	relay := NewOutboxRelay(&fakeTx{}, store, artifacts, pub, 1, time.Second, zap.NewNop())

	n, err := relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, artifacts.receipts, 2)
	assert.Len(t, pub.published, 2)

	n, err = relay.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFlush_StopsOnFailure(t *testing.T) {
	store := settledStore(t)
	relay := NewOutboxRelay(&fakeTx{}, store, newFakeArtifacts(new([]string)), &fakePublisher{err: errors.New("broker down")}, 1, time.Second, zap.NewNop())

	n, err := relay.Flush(context.Background())
	require.Error(t, err)
	assert.Zero(t, n)
}
