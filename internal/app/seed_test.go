package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	utils.SilenceLogger()
	utils.PasswordHashCost = 4

	ctx := context.Background()
	store, err := repositories.NewMemoryStore()
	require.NoError(t, err)
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, SeedDemoData(ctx, store, now))
	require.NoError(t, SeedDemoData(ctx, store, now))

	user, err := store.Users().GetByEmail(ctx, SeedUserEmail)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, utils.CheckPasswordHash(SeedUserPassword, user.PasswordHash))

	repos := store.ForOwner(user.ID)
	props, err := repos.Properties().List(ctx)
	require.NoError(t, err)
	assert.Len(t, props, 2)

	vacancies, err := repos.Vacancies().List(ctx)
	require.NoError(t, err)
	require.Len(t, vacancies, 1)
	assert.Equal(t, time.February, vacancies[0].StartDate.Month())
}
