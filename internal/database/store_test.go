package database_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/spamwatch/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func testEvent(userID int64) *database.ModerationEvent {
	return &database.ModerationEvent{
		ChatID:      -100123,
		MessageID:   55,
		UserID:      userID,
		DisplayName: "Slot Agency",
		Handle:      "slotagency",
		MessageText: "dm me for slots",
		FiredSignal: "text-substring",
		Banned:      true,
		Reported:    true,
		MessageTime: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSaveAndFetchModerationEvent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	event := testEvent(777)
	require.NoError(t, store.SaveModerationEvent(ctx, event))
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	events, err := store.RecentModerationEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(777), events[0].UserID)
	assert.Equal(t, "Slot Agency", events[0].DisplayName)
	assert.Equal(t, "text-substring", events[0].FiredSignal)
	assert.True(t, events[0].Banned)
	assert.True(t, events[0].Reported)
}

func TestSaveModerationEventValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveModerationEvent(ctx, nil))
	assert.Error(t, store.SaveModerationEvent(ctx, &database.ModerationEvent{}))
}

func TestRecentModerationEventsOrderAndLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.SaveModerationEvent(ctx, testEvent(i)))
	}

	events, err := store.RecentModerationEvents(ctx, 3)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, int64(5), events[0].UserID)
	assert.Equal(t, int64(4), events[1].UserID)
	assert.Equal(t, int64(3), events[2].UserID)
}

func TestRunMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.NoError(t, store.RunMaintenance(context.Background()))
}

func TestPing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
