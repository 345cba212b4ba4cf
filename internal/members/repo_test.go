package members

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/motorclubhq/clubhub-backend/pkg/db/models"
	"github.com/motorclubhq/clubhub-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Member{}))
	return conn
}

func seedMember(t *testing.T, conn *gorm.DB, clubID uuid.UUID, email, subscriptionID string) *models.Member {
	t.Helper()
	member := &models.Member{
		ID:                   uuid.New(),
		ClubID:               clubID,
		Email:                email,
		DisplayName:          "Test Rider",
		PayPalSubscriptionID: subscriptionID,
		SubscriptionStatus:   enums.SubscriptionStatusActive,
	}
	require.NoError(t, conn.Create(member).Error)
	return member
}

func TestFindByClubAndEmailNormalizes(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	clubID := uuid.New()
	want := seedMember(t, conn, clubID, "rider@example.com", "")

	found, err := repo.FindByClubAndEmail(ctx, clubID, "  Rider@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, want.ID, found.ID)

	_, err = repo.FindByClubAndEmail(ctx, uuid.New(), "rider@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCancelBySubscriptionScopesToClub(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	clubA := uuid.New()
	clubB := uuid.New()
	target := seedMember(t, conn, clubA, "a@example.com", "I-SHARED")
	other := seedMember(t, conn, clubB, "b@example.com", "I-SHARED")

	affected, err := repo.CancelBySubscription(ctx, clubA, "I-SHARED")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var cancelled models.Member
	require.NoError(t, conn.First(&cancelled, "id = ?", target.ID).Error)
	assert.Equal(t, enums.SubscriptionStatusCancelled, cancelled.SubscriptionStatus)

	var untouched models.Member
	require.NoError(t, conn.First(&untouched, "id = ?", other.ID).Error)
	assert.Equal(t, enums.SubscriptionStatusActive, untouched.SubscriptionStatus)
}

func TestCancelBySubscriptionNoMatch(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	affected, err := repo.CancelBySubscription(context.Background(), uuid.New(), "I-MISSING")
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestCreateNormalizesEmail(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	member := &models.Member{
		ID:                 uuid.New(),
		ClubID:             uuid.New(),
		Email:              " Rider@Example.COM ",
		SubscriptionStatus: enums.SubscriptionStatusPending,
	}
	require.NoError(t, repo.Create(ctx, member))
	assert.Equal(t, "rider@example.com", member.Email)
}
