package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/robotics-league/internal/apperror"
	"github.com/sakif/robotics-league/internal/model"
	"github.com/sakif/robotics-league/internal/storage"
)

func newTestLog(max int) (*NotificationLog, *recordingPublisher) {
	pub := &recordingPublisher{}
	l := NewNotificationLog(max, pub, discardLogger())
	tick := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	return l, pub
}

func TestNotificationLog_AppendNewestFirst(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLog(0)
	local := storage.NewLocal(storage.NewMemory(), "p1")

	l.Append(ctx, local, model.NotificationWelcome, "first", "")
	l.Append(ctx, local, model.NotificationLogin, "second", "")

	list, err := l.List(ctx, local)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Title)
	assert.Equal(t, "first", list[1].Title)
	assert.True(t, list[0].Timestamp.After(list[1].Timestamp))
	assert.NotEqual(t, list[0].ID, list[1].ID)
	assert.False(t, list[0].Read)
	assert.Equal(t, 2, pub.count("p1"))
}

func TestNotificationLog_Cap(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(3)
	local := storage.NewLocal(storage.NewMemory(), "p1")

	for i := 1; i <= 5; i++ {
		l.Append(ctx, local, model.NotificationProfile, fmt.Sprintf("n%d", i), "")
	}

	list, _ := l.List(ctx, local)
	require.Len(t, list, 3)
	assert.Equal(t, "n5", list[0].Title)
	assert.Equal(t, "n3", list[2].Title, "oldest entries are evicted")
}

func TestNotificationLog_IDsUniqueWithFrozenClock(t *testing.T) {
	ctx := context.Background()
	l := NewNotificationLog(0, nil, discardLogger())
	l.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	local := storage.NewLocal(storage.NewMemory(), "p1")

	for i := 0; i < 10; i++ {
		l.Append(ctx, local, model.NotificationLogin, "x", "")
	}
	list, _ := l.List(ctx, local)
	seen := map[string]bool{}
	for _, n := range list {
		assert.False(t, seen[n.ID], "duplicate id %s", n.ID)
		seen[n.ID] = true
	}
}

func TestNotificationLog_MarkRead(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(0)
	local := storage.NewLocal(storage.NewMemory(), "p1")
	l.Append(ctx, local, model.NotificationWelcome, "a", "")
	l.Append(ctx, local, model.NotificationLogin, "b", "")

	n, _ := l.UnreadCount(ctx, local)
	assert.Equal(t, 2, n)

	list, _ := l.List(ctx, local)
	require.NoError(t, l.MarkRead(ctx, local, list[1].ID))
	require.NoError(t, l.MarkRead(ctx, local, list[1].ID), "marking twice is fine")
	n, _ = l.UnreadCount(ctx, local)
	assert.Equal(t, 1, n)

	err := l.MarkRead(ctx, local, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	require.NoError(t, l.MarkAllRead(ctx, local))
	n, _ = l.UnreadCount(ctx, local)
	assert.Equal(t, 0, n)
}

func TestNotificationLog_CorruptLogIsReplaced(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLog(0)
	local := storage.NewLocal(storage.NewMemory(), "p1")
	require.NoError(t, local.SetItem(ctx, storage.KeyNotifications, "not json"))

	l.Append(ctx, local, model.NotificationLogin, "fresh", "")

	list, err := l.List(ctx, local)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "fresh", list[0].Title)
}

func TestNotificationLog_WriteFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	l, pub := newTestLog(0)
	backend := &failingBackend{Backend: storage.NewMemory(), failKey: storage.KeyNotifications}
	local := storage.NewLocal(backend, "p1")

	assert.NotPanics(t, func() {
		l.Append(ctx, local, model.NotificationLogin, "lost", "")
	})
	assert.Equal(t, 0, pub.count("p1"))
}
