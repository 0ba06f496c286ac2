//go:build integration

package integration

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
)

func createUser(t *testing.T) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, application.Store.Users().Create(ctx(), &models.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		Name:         "Propriétaire",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}))
	return id
}

func newProperty(owner uuid.UUID) *models.Property {
	return &models.Property{
		ID:           uuid.New(),
		UserID:       owner,
		Name:         "T2 Intégration",
		Address:      "1 rue de la Paix",
		City:         "Paris",
		PostalCode:   "75002",
		PropertyType: "appartement",
		RentAmount:   900,
		Charges:      50,
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPGOwnerScoping(t *testing.T) {
	alice, bob := createUser(t), createUser(t)
	p := newProperty(alice)
	require.NoError(t, application.Store.ForOwner(alice).Properties().Create(ctx(), p))

	got, err := application.Store.ForOwner(bob).Properties().GetByID(ctx(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = application.Store.ForOwner(bob).Properties().Delete(ctx(), p.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestPGMarkOccupiedConditional(t *testing.T) {
	owner := createUser(t)
	repo := application.Store.ForOwner(owner).Properties()
	p := newProperty(owner)
	require.NoError(t, repo.Create(ctx(), p))

	first, second := uuid.New(), uuid.New()
	require.NoError(t, repo.MarkOccupied(ctx(), p.ID, first, true))
	assert.ErrorIs(t, repo.MarkOccupied(ctx(), p.ID, second, true), repositories.ErrConditionFailed)

	got, err := repo.GetByID(ctx(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOccupied)
	assert.Equal(t, first, *got.CurrentTenantID)
}

func TestPGWithTxRollsBack(t *testing.T) {
	owner := createUser(t)
	p := newProperty(owner)
	require.NoError(t, application.Store.ForOwner(owner).Properties().Create(ctx(), p))

	boom := errors.New("boom")
	err := application.Store.WithTx(ctx(), func(tx repositories.Store) error {
		repos := tx.ForOwner(owner)
		if err := repos.Properties().MarkOccupied(ctx(), p.ID, uuid.New(), false); err != nil {
			return err
		}
		if err := repos.Leases().Create(ctx(), &models.Lease{
			ID:         uuid.New(),
			UserID:     owner,
			PropertyID: p.ID,
			TenantID:   uuid.New(),
			StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			PaymentDay: 1,
			IsActive:   true,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := application.Store.ForOwner(owner).Properties().GetByID(ctx(), p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOccupied)

	leases, err := application.Store.ForOwner(owner).Leases().List(ctx())
	require.NoError(t, err)
	assert.Empty(t, leases)
}

func TestPGDuplicateEmail(t *testing.T) {
	id := createUser(t)
	err := application.Store.Users().Create(ctx(), &models.User{
		ID:           uuid.New(),
		Email:        id.String() + "@example.com",
		Name:         "Doublon",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}
