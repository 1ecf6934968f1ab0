package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akshith040/EcoScan1/internal/domain"
)

func createTestUser(t *testing.T, s *UserStore, email string) *domain.User {
	t.Helper()
	u, err := s.Create(context.Background(), "Test", email, "hash")
	require.NoError(t, err)
	return u
}

func TestHistoryStoreCreate(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, NewUserStore(d), "a@example.com")
	store := NewHistoryStore(d)

	entry, err := store.Create(context.Background(), &domain.HistoryEntry{
		UserID:                user.ID,
		ImageKey:              "photo_1.jpg",
		MimeType:              "image/jpeg",
		ImageURL:              "https://cdn.example.com/box.jpg",
		WasteType:             "Cardboard",
		Confidence:            0.93,
		Details:               "Corrugated box",
		RecyclingInstructions: "1. Flatten it",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	got, err := store.GetForUser(context.Background(), user.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cardboard", got.WasteType)
	assert.InDelta(t, 0.93, got.Confidence, 1e-9)
	assert.Equal(t, "Corrugated box", got.Details)
	assert.Equal(t, "1. Flatten it", got.RecyclingInstructions)
	assert.Equal(t, "photo_1.jpg", got.ImageKey)
	assert.Equal(t, "https://cdn.example.com/box.jpg", got.ImageURL)
}

func TestHistoryStoreListByUserNewestFirst(t *testing.T) {
	d := openTestDB(t)
	user := createTestUser(t, NewUserStore(d), "a@example.com")
	store := NewHistoryStore(d)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, wasteType := range []string{"Paper", "Glass Bottle", "Aluminum Can"} {
		_, err := store.Create(ctx, &domain.HistoryEntry{
			UserID:     user.ID,
			WasteType:  wasteType,
			Confidence: 0.9,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := store.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Aluminum Can", entries[0].WasteType)
	assert.Equal(t, "Glass Bottle", entries[1].WasteType)
	assert.Equal(t, "Paper", entries[2].WasteType)
	assert.True(t, entries[0].CreatedAt.Equal(base.Add(2*time.Minute)))
}

func TestHistoryStoreListByUserIsScoped(t *testing.T) {
	d := openTestDB(t)
	users := NewUserStore(d)
	alice := createTestUser(t, users, "alice@example.com")
	bob := createTestUser(t, users, "bob@example.com")
	store := NewHistoryStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, &domain.HistoryEntry{UserID: alice.ID, WasteType: "Paper", Confidence: 0.9})
	require.NoError(t, err)

	entries, err := store.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryStoreGetForUserOtherUser(t *testing.T) {
	d := openTestDB(t)
	users := NewUserStore(d)
	alice := createTestUser(t, users, "alice@example.com")
	bob := createTestUser(t, users, "bob@example.com")
	store := NewHistoryStore(d)
	ctx := context.Background()

	entry, err := store.Create(ctx, &domain.HistoryEntry{UserID: alice.ID, WasteType: "Paper", Confidence: 0.9})
	require.NoError(t, err)

	_, err = store.GetForUser(ctx, bob.ID, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHistoryStoreCreateUnknownUser(t *testing.T) {
	store := NewHistoryStore(openTestDB(t))

	_, err := store.Create(context.Background(), &domain.HistoryEntry{UserID: "ghost", WasteType: "Paper"})
	assert.Error(t, err)
}
