package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkchain/internal/models"
)

type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
	exp  map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, exp: map[string]time.Duration{}}
}

func (f *fakeKV) GetWithContext(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.data[key], nil
}

func (f *fakeKV) SetWithContext(_ context.Context, key string, val []byte, exp time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = val
	f.exp[key] = exp
	return nil
}

func (f *fakeKV) DeleteWithContext(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	delete(f.exp, key)
	return nil
}

func (f *fakeKV) Close() error { return nil }

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	s := NewWithKV(kv)

	got, err := s.GetAwaiting(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.AwaitingNone, got)

	require.NoError(t, s.SetAwaiting(ctx, "42", models.AwaitingLinkedInEdit, 15*time.Minute))
	assert.Equal(t, []byte("linkedin_edit"), kv.data["linkchain:awaiting:42"])
	assert.Equal(t, 15*time.Minute, kv.exp["linkchain:awaiting:42"])

	got, err = s.GetAwaiting(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, models.AwaitingLinkedInEdit, got)

	require.NoError(t, s.SetAwaiting(ctx, "42", models.AwaitingNone, time.Minute))
	assert.NotContains(t, kv.data, "linkchain:awaiting:42")
}

func TestStore_InvalidValue(t *testing.T) {
	kv := newFakeKV()
	kv.data["linkchain:awaiting:7"] = []byte("dancing")

	_, err := NewWithKV(kv).GetAwaiting(context.Background(), "7")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStore_BackendError(t *testing.T) {
	kv := newFakeKV()
	kv.err = errors.New("connection refused")

	_, err := NewWithKV(kv).GetAwaiting(context.Background(), "7")
	assert.ErrorContains(t, err, "connection refused")
}
