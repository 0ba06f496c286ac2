package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-middleware"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func TestAuthRegisterLogin(t *testing.T) {
	utils.PasswordHashCost = 4
	f := newFixture(t)
	auth := NewAuthService(f.cfg, f.store)

	reg, err := auth.Register(f.ctx, dtos.RegisterRequest{Email: " New@Example.com ", Password: "secret1", Name: "Nina"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", reg.TokenType)
	assert.Equal(t, "new@example.com", reg.User.Email)

	sub, err := middleware.ValidateToken(reg.AccessToken, f.cfg.RSAPublicKey)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), sub)

	settings, err := f.store.ForOwner(reg.User.ID).Settings().Get(f.ctx)
	require.NoError(t, err)
	assert.NotNil(t, settings, "registration seeds notification settings")

	_, err = auth.Register(f.ctx, dtos.RegisterRequest{Email: "new@example.com", Password: "other12", Name: "Dup"})
	assert.ErrorIs(t, err, internal_utils.ErrEmailExists)

	_, err = auth.Login(f.ctx, dtos.LoginRequest{Email: "new@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidCredentials)
	_, err = auth.Login(f.ctx, dtos.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidCredentials)

	login, err := auth.Login(f.ctx, dtos.LoginRequest{Email: "NEW@example.com", Password: "secret1"})
	require.NoError(t, err)
	me, err := auth.Me(f.ctx, login.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nina", me.Name)
}
