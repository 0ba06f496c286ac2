package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func (f *fixture) user(t *testing.T, email, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, f.store.Users().Create(f.ctx, &models.User{
		ID: id, Email: email, Name: name, CreatedAt: time.Now().UTC(),
	}))
	return id
}

func TestTeamLifecycle(t *testing.T) {
	f := newFixture(t)
	teams := NewTeamService(f.store, f.audit, f.clock)
	bob := f.user(t, "bob@example.com", "Bob")
	eve := f.user(t, "eve@example.com", "Eve")

	team, err := teams.Create(f.ctx, f.owner, dtos.CreateTeamRequest{Name: "Gestion Lyon"})
	require.NoError(t, err)

	list, err := teams.List(f.ctx, f.owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].MemberCount)
	assert.Equal(t, models.TeamRoleOwner, list[0].MyRole)

	t.Run("non members are forbidden", func(t *testing.T) {
		_, err := teams.Get(f.ctx, eve, team.ID)
		assert.ErrorIs(t, err, internal_utils.ErrForbidden)
		_, err = teams.Get(f.ctx, f.owner, uuid.New())
		assert.ErrorIs(t, err, internal_utils.ErrNotFound)
	})

	inv, err := teams.Invite(f.ctx, f.owner, team.ID, dtos.InviteRequest{Email: "Bob@Example.com", Role: "viewer"})
	require.NoError(t, err)
	require.NotEmpty(t, inv.InvitationToken)

	pending, err := teams.PendingInvitations(f.ctx, f.owner, team.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob@example.com", pending[0].Email)

	t.Run("accepting requires the invited email", func(t *testing.T) {
		_, err := teams.AcceptInvitation(f.ctx, eve, inv.InvitationToken)
		assert.ErrorIs(t, err, internal_utils.ErrInvitationMismatch)
		_, err = teams.AcceptInvitation(f.ctx, bob, "bogus")
		assert.ErrorIs(t, err, internal_utils.ErrInvitationInvalid)
	})

	member, err := teams.AcceptInvitation(f.ctx, bob, inv.InvitationToken)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleViewer, member.Role)

	_, err = teams.AcceptInvitation(f.ctx, bob, inv.InvitationToken)
	assert.ErrorIs(t, err, internal_utils.ErrInvitationInvalid, "invitations are single use")

	details, err := teams.Get(f.ctx, bob, team.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TeamRoleViewer, details.MyRole)
	assert.Len(t, details.Members, 2)

	t.Run("viewers cannot manage", func(t *testing.T) {
		_, err := teams.Update(f.ctx, bob, team.ID, dtos.UpdateTeamRequest{Name: utils.Ptr("x")})
		assert.ErrorIs(t, err, internal_utils.ErrForbidden)
		_, err = teams.Invite(f.ctx, bob, team.ID, dtos.InviteRequest{Email: "eve@example.com", Role: "member"})
		assert.ErrorIs(t, err, internal_utils.ErrForbidden)
		assert.ErrorIs(t, teams.Delete(f.ctx, bob, team.ID), internal_utils.ErrForbidden)
	})

	t.Run("existing members cannot be invited again", func(t *testing.T) {
		_, err := teams.Invite(f.ctx, f.owner, team.ID, dtos.InviteRequest{Email: "bob@example.com", Role: "admin"})
		assert.ErrorIs(t, err, internal_utils.ErrAlreadyMember)
	})

	updated, err := teams.Update(f.ctx, f.owner, team.ID, dtos.UpdateTeamRequest{Name: utils.Ptr("Gestion Rhône")})
	require.NoError(t, err)
	assert.Equal(t, "Gestion Rhône", updated.Name)

	require.NoError(t, teams.Delete(f.ctx, f.owner, team.ID))
	_, err = teams.Get(f.ctx, f.owner, team.ID)
	assert.ErrorIs(t, err, internal_utils.ErrNotFound)

	logs, err := f.audit.List(f.ctx, f.owner, models.EntityTeam, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}

func TestTeamInvitationExpiry(t *testing.T) {
	f := newFixture(t)
	teams := NewTeamService(f.store, f.audit, f.clock)
	bob := f.user(t, "bob@example.com", "Bob")

	team, err := teams.Create(f.ctx, f.owner, dtos.CreateTeamRequest{Name: "T"})
	require.NoError(t, err)
	inv, err := teams.Invite(f.ctx, f.owner, team.ID, dtos.InviteRequest{Email: "bob@example.com", Role: "member"})
	require.NoError(t, err)

	f.clock.Set(f.clock.Now().Add(8 * 24 * time.Hour))
	_, err = teams.AcceptInvitation(f.ctx, bob, inv.InvitationToken)
	require.ErrorIs(t, err, internal_utils.ErrInvitationInvalid)

	stored, err := f.store.Teams().GetInvitationByToken(f.ctx, inv.InvitationToken)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationExpired, stored.Status)
}
