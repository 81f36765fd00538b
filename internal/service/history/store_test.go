package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalyzer/support/backend/internal/logging"
	"github.com/finalyzer/support/backend/internal/model/chat"
	"github.com/finalyzer/support/backend/internal/service/history"
	"github.com/finalyzer/support/backend/internal/storage"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newStore(t *testing.T) (*history.Store, storage.KV) {
	t.Helper()
	kv := storage.Scoped(storage.NewMemoryStore(), "v1")
	c := &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return history.NewStore(kv, logging.Discard(), c.now), kv
}

func messages(texts ...string) []chat.Message {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]chat.Message, 0, len(texts))
	for _, text := range texts {
		out = append(out, chat.NewMessage(chat.SenderUser, text, now))
	}
	return out
}

func TestLoadAllEmpty(t *testing.T) {
	store, _ := newStore(t)
	sessions := store.LoadAll(context.Background())
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestLoadAllCorruptIsEmpty(t *testing.T) {
	ctx := context.Background()
	store, kv := newStore(t)
	require.NoError(t, kv.Set(ctx, "chatSessions", "[{"))

	assert.Empty(t, store.LoadAll(ctx))
}

func TestUpsertAppendsThenReplaces(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	require.NoError(t, store.Upsert(ctx, "s-1", messages("a")))
	require.NoError(t, store.Upsert(ctx, "s-2", messages("b")))
	require.NoError(t, store.Upsert(ctx, "s-1", messages("a", "c")))

	sessions := store.LoadAll(ctx)
	require.Len(t, sessions, 2)
	assert.Equal(t, "s-1", sessions[0].ID)
	assert.Len(t, sessions[0].Messages, 2)
	assert.Equal(t, "s-2", sessions[1].ID)
}

func TestUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	msgs := messages("hello", "world")

	require.NoError(t, store.Upsert(ctx, "s-1", msgs))
	first, ok := store.Find(ctx, "s-1")
	require.True(t, ok)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Upsert(ctx, "s-1", msgs))
	}

	sessions := store.LoadAll(ctx)
	require.Len(t, sessions, 1)
	assert.Equal(t, first.CreatedAt, sessions[0].CreatedAt, "createdAt is set once")
	assert.Equal(t, first.Messages, sessions[0].Messages)
}

func TestTimestampsSurviveRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)
	msgs := messages("hello")

	require.NoError(t, store.Upsert(ctx, "s-1", msgs))

	got, ok := store.Find(ctx, "s-1")
	require.True(t, ok)
	assert.True(t, msgs[0].Timestamp.Equal(got.Messages[0].Timestamp))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCurrentSessionPointer(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	_, ok := store.CurrentSessionID(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SetCurrentSessionID(ctx, "s-9"))
	id, ok := store.CurrentSessionID(ctx)
	assert.True(t, ok)
	assert.Equal(t, "s-9", id)

	require.NoError(t, store.ClearCurrentSessionID(ctx))
	_, ok = store.CurrentSessionID(ctx)
	assert.False(t, ok)
}

func TestSortByRecency(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	sorted := history.SortByRecency([]chat.Session{
		{ID: "t2", CreatedAt: t2},
		{ID: "t1", CreatedAt: t1},
		{ID: "t3", CreatedAt: t3},
		{ID: "t2-tie", CreatedAt: t2},
	})

	ids := make([]string, 0, len(sorted))
	for _, s := range sorted {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"t3", "t2", "t2-tie", "t1"}, ids)
}
