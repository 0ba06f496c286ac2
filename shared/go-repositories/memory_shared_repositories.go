package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type memUserRepo struct {
	s *MemoryStore
}

func (r *memUserRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.s.write(func(txn *memdb.Txn) error {
		existing, err := txn.First(tableUsers, indexKey, u.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicate
		}
		return memPut(txn, tableUsers, u.ID, "", u.Email, u)
	})
}

func (r *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (out *models.User, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.User](txn, tableUsers, id, "")
		return err
	})
	return out, err
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (out *models.User, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memFirst[models.User](txn, tableUsers, indexKey, normalizeEmail(email))
		return err
	})
	return out, err
}

// Memberships are keyed by team (OwnerID) and member user (Key);
// invitations by team and token.
type memTeamRepo struct {
	s *MemoryStore
}

func (r *memTeamRepo) CreateTeam(ctx context.Context, t *models.Team) error {
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableTeams, t.ID, t.OwnerID.String(), "", t)
	})
}

func (r *memTeamRepo) GetTeam(ctx context.Context, id uuid.UUID) (out *models.Team, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memGet[models.Team](txn, tableTeams, id, "")
		return err
	})
	return out, err
}

func (r *memTeamRepo) UpdateTeam(ctx context.Context, t *models.Team) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.Team](txn, tableTeams, t.ID, "")
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		cur.Name = t.Name
		cur.Description = t.Description
		return memPut(txn, tableTeams, cur.ID, cur.OwnerID.String(), "", cur)
	})
}

func (r *memTeamRepo) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return r.s.write(func(txn *memdb.Txn) error {
		for _, table := range []string{tableTeamMembers, tableTeamInvitations} {
			if _, err := txn.DeleteAll(table, indexOwner, id.String()); err != nil {
				return err
			}
		}
		return memDelete(txn, tableTeams, id, "")
	})
}

func (r *memTeamRepo) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	var out []*models.Team
	err := r.s.read(func(txn *memdb.Txn) error {
		members, err := memAll[models.TeamMember](txn, tableTeamMembers, indexKey, userID.String())
		if err != nil {
			return err
		}
		for _, m := range members {
			t, err := memGet[models.Team](txn, tableTeams, m.TeamID, "")
			if err != nil {
				return err
			}
			if t != nil {
				out = append(out, t)
			}
		}
		return nil
	})
	sortByCreated(out, func(t *models.Team) time.Time { return t.CreatedAt })
	return out, err
}

func (r *memTeamRepo) AddMember(ctx context.Context, m *models.TeamMember) error {
	return r.s.write(func(txn *memdb.Txn) error {
		members, err := memAll[models.TeamMember](txn, tableTeamMembers, indexOwner, m.TeamID.String())
		if err != nil {
			return err
		}
		for _, existing := range members {
			if existing.UserID == m.UserID {
				return ErrDuplicate
			}
		}
		return memPut(txn, tableTeamMembers, m.ID, m.TeamID.String(), m.UserID.String(), m)
	})
}

func (r *memTeamRepo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	members, err := r.ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return m, nil
		}
	}
	return nil, nil
}

func (r *memTeamRepo) ListMembers(ctx context.Context, teamID uuid.UUID) (out []*models.TeamMember, err error) {
	err = r.s.read(func(txn *memdb.Txn) error {
		out, err = memAll[models.TeamMember](txn, tableTeamMembers, indexOwner, teamID.String())
		return err
	})
	sortByCreated(out, func(m *models.TeamMember) time.Time { return m.JoinedAt })
	return out, err
}

func (r *memTeamRepo) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	inv.Email = normalizeEmail(inv.Email)
	return r.s.write(func(txn *memdb.Txn) error {
		return memPut(txn, tableTeamInvitations, inv.ID, inv.TeamID.String(), inv.Token, inv)
	})
}

func (r *memTeamRepo) ListPendingInvitations(ctx context.Context, teamID uuid.UUID) ([]*models.TeamInvitation, error) {
	var all []*models.TeamInvitation
	err := r.s.read(func(txn *memdb.Txn) (err error) {
		all, err = memAll[models.TeamInvitation](txn, tableTeamInvitations, indexOwner, teamID.String())
		return err
	})
	if err != nil {
		return nil, err
	}
	var out []*models.TeamInvitation
	for _, inv := range all {
		if inv.Status == models.InvitationPending {
			out = append(out, inv)
		}
	}
	sortByCreated(out, func(i *models.TeamInvitation) time.Time { return i.CreatedAt })
	return out, nil
}

func (r *memTeamRepo) GetInvitationByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	var out *models.TeamInvitation
	err := r.s.read(func(txn *memdb.Txn) error {
		// The key index is case-insensitive; confirm the exact token.
		candidates, err := memAll[models.TeamInvitation](txn, tableTeamInvitations, indexKey, token)
		if err != nil {
			return err
		}
		for _, inv := range candidates {
			if inv.Token == token {
				out = inv
			}
		}
		return nil
	})
	return out, err
}

func (r *memTeamRepo) SetInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error {
	return r.s.write(func(txn *memdb.Txn) error {
		cur, err := memGet[models.TeamInvitation](txn, tableTeamInvitations, id, "")
		if err != nil {
			return err
		}
		if cur == nil {
			return ErrNotFound
		}
		cur.Status = status
		return memPut(txn, tableTeamInvitations, cur.ID, cur.TeamID.String(), cur.Token, cur)
	})
}
