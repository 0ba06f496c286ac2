package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

// TeamService manages shared workspaces. Every call checks the caller's
// membership role before touching the team.
type TeamService struct {
	store repositories.Store
	audit *AuditService
	clock utils.Clock
}

func NewTeamService(store repositories.Store, audit *AuditService, clock utils.Clock) *TeamService {
	return &TeamService{store: store, audit: audit, clock: clock}
}

// membership loads the team and the caller's member row. A missing team is
// ErrNotFound; a non-member gets ErrForbidden.
func membership(ctx context.Context, st repositories.Store, teamID, userID uuid.UUID) (*models.Team, *models.TeamMember, error) {
	team, err := st.Teams().GetTeam(ctx, teamID)
	if err != nil {
		return nil, nil, err
	}
	if team == nil {
		return nil, nil, missing(internal_utils.ErrNotFound, teamID)
	}
	member, err := st.Teams().GetMember(ctx, teamID, userID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, internal_utils.ErrForbidden
	}
	return team, member, nil
}

func (s *TeamService) Create(ctx context.Context, userID uuid.UUID, req dtos.CreateTeamRequest) (*models.Team, error) {
	now := s.clock.Now().UTC()
	team := &models.Team{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		OwnerID:     userID,
		CreatedAt:   now,
	}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Teams().CreateTeam(ctx, team); err != nil {
			return err
		}
		if err := tx.Teams().AddMember(ctx, &models.TeamMember{
			ID:        uuid.New(),
			TeamID:    team.ID,
			UserID:    userID,
			Role:      models.TeamRoleOwner,
			InvitedBy: userID,
			JoinedAt:  now,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, userID, AuditEntry{
			Action:     models.AuditCreate,
			EntityType: models.EntityTeam,
			EntityID:   team.ID,
			EntityName: team.Name,
		})
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) List(ctx context.Context, userID uuid.UUID) ([]dtos.TeamSummary, error) {
	teams, err := s.store.Teams().ListTeamsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]dtos.TeamSummary, 0, len(teams))
	for _, t := range teams {
		members, err := s.store.Teams().ListMembers(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		summary := dtos.TeamSummary{Team: t, MemberCount: len(members)}
		for _, m := range members {
			if m.UserID == userID {
				summary.MyRole = m.Role
			}
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *TeamService) Get(ctx context.Context, userID, teamID uuid.UUID) (*dtos.TeamDetails, error) {
	team, me, err := membership(ctx, s.store, teamID, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.Teams().ListMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	details := &dtos.TeamDetails{Team: team, MyRole: me.Role, Members: make([]dtos.TeamMemberView, 0, len(members))}
	for _, m := range members {
		view := dtos.TeamMemberView{TeamMember: m}
		u, err := s.store.Users().GetByID(ctx, m.UserID)
		if err != nil {
			return nil, err
		}
		if u != nil {
			view.Name, view.Email = u.Name, u.Email
		}
		details.Members = append(details.Members, view)
	}
	return details, nil
}

func (s *TeamService) Update(ctx context.Context, userID, teamID uuid.UUID, req dtos.UpdateTeamRequest) (*models.Team, error) {
	var out *models.Team
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		team, me, err := membership(ctx, tx, teamID, userID)
		if err != nil {
			return err
		}
		if !me.Role.CanManage() {
			return internal_utils.ErrForbidden
		}
		before := map[string]any{"name": team.Name, "description": derefString(team.Description)}
		if req.Name != nil {
			team.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			team.Description = req.Description
		}
		if err := tx.Teams().UpdateTeam(ctx, team); err != nil {
			return notFound(err, internal_utils.ErrNotFound, teamID)
		}
		out = team
		after := map[string]any{"name": team.Name, "description": derefString(team.Description)}
		changes := diffFields(before, after)
		if len(changes) == 0 {
			return nil
		}
		return s.audit.Record(ctx, tx, userID, AuditEntry{
			Action:     models.AuditUpdate,
			EntityType: models.EntityTeam,
			EntityID:   team.ID,
			EntityName: team.Name,
			Changes:    changes,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TeamService) Delete(ctx context.Context, userID, teamID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		team, me, err := membership(ctx, tx, teamID, userID)
		if err != nil {
			return err
		}
		if me.Role != models.TeamRoleOwner {
			return internal_utils.ErrForbidden
		}
		if err := tx.Teams().DeleteTeam(ctx, teamID); err != nil {
			return notFound(err, internal_utils.ErrNotFound, teamID)
		}
		return s.audit.Record(ctx, tx, userID, AuditEntry{
			Action:     models.AuditDelete,
			EntityType: models.EntityTeam,
			EntityID:   teamID,
			EntityName: team.Name,
		})
	})
}

func (s *TeamService) Invite(ctx context.Context, userID, teamID uuid.UUID, req dtos.InviteRequest) (*dtos.InviteResponse, error) {
	token, err := utils.RandomToken(constants.InvitationTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("invitation token: %w", err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	now := s.clock.Now().UTC()

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		_, me, err := membership(ctx, tx, teamID, userID)
		if err != nil {
			return err
		}
		if !me.Role.CanManage() {
			return internal_utils.ErrForbidden
		}
		invitee, err := tx.Users().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		if invitee != nil {
			existing, err := tx.Teams().GetMember(ctx, teamID, invitee.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				return internal_utils.ErrAlreadyMember
			}
		}
		return tx.Teams().CreateInvitation(ctx, &models.TeamInvitation{
			ID:        uuid.New(),
			TeamID:    teamID,
			Email:     email,
			Role:      models.TeamRole(req.Role),
			InvitedBy: userID,
			Status:    models.InvitationPending,
			Token:     token,
			ExpiresAt: now.Add(constants.InvitationTTL),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &dtos.InviteResponse{Message: "Invitation envoyée à " + email, InvitationToken: token}, nil
}

func (s *TeamService) PendingInvitations(ctx context.Context, userID, teamID uuid.UUID) ([]*models.TeamInvitation, error) {
	if _, _, err := membership(ctx, s.store, teamID, userID); err != nil {
		return nil, err
	}
	invs, err := s.store.Teams().ListPendingInvitations(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if invs == nil {
		invs = []*models.TeamInvitation{}
	}
	return invs, nil
}

// AcceptInvitation joins the caller to the team. The invitation must be
// pending, unexpired and addressed to the caller's email.
func (s *TeamService) AcceptInvitation(ctx context.Context, userID uuid.UUID, token string) (*models.TeamMember, error) {
	var member *models.TeamMember
	expired := false
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		inv, err := tx.Teams().GetInvitationByToken(ctx, token)
		if err != nil {
			return err
		}
		if inv == nil || inv.Status != models.InvitationPending {
			return internal_utils.ErrInvitationInvalid
		}
		now := s.clock.Now().UTC()
		if now.After(inv.ExpiresAt) {
			expired = true
			return internal_utils.ErrInvitationInvalid
		}
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil || !strings.EqualFold(user.Email, inv.Email) {
			return internal_utils.ErrInvitationMismatch
		}

		member = &models.TeamMember{
			ID:        uuid.New(),
			TeamID:    inv.TeamID,
			UserID:    userID,
			Role:      inv.Role,
			InvitedBy: inv.InvitedBy,
			JoinedAt:  now,
		}
		if err := tx.Teams().AddMember(ctx, member); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return internal_utils.ErrAlreadyMember
			}
			return err
		}
		return tx.Teams().SetInvitationStatus(ctx, inv.ID, models.InvitationAccepted)
	})
	if expired {
		s.expire(ctx, token)
	}
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *TeamService) expire(ctx context.Context, token string) {
	inv, err := s.store.Teams().GetInvitationByToken(ctx, token)
	if err == nil && inv != nil && inv.Status == models.InvitationPending {
		err = s.store.Teams().SetInvitationStatus(ctx, inv.ID, models.InvitationExpired)
	}
	if err != nil {
		utils.Logger.WithError(err).Warn("Failed to mark invitation expired")
	}
}
