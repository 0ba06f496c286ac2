package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

// TeamRepository is membership scoped rather than owner scoped; the team
// service checks roles before every call.
type TeamRepository interface {
	CreateTeam(ctx context.Context, t *models.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	UpdateTeam(ctx context.Context, t *models.Team) error
	// DeleteTeam removes the team with its members and invitations.
	DeleteTeam(ctx context.Context, id uuid.UUID) error
	ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error)

	AddMember(ctx context.Context, m *models.TeamMember) error
	GetMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error)
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error)

	CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error
	ListPendingInvitations(ctx context.Context, teamID uuid.UUID) ([]*models.TeamInvitation, error)
	GetInvitationByToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	SetInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error
}

type teamRepo struct {
	db DB
}

func newTeamRepository(db DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) CreateTeam(ctx context.Context, t *models.Team) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO teams (id, name, description, owner_id, created_at)
        VALUES ($1,$2,$3,$4,$5)
    `, t.ID, t.Name, t.Description, t.OwnerID, t.CreatedAt)
	return err
}

func (r *teamRepo) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.db.QueryRow(ctx, baseSelectTeam()+" WHERE id=$1", id)
	return noRows(scanTeam(row))
}

func (r *teamRepo) UpdateTeam(ctx context.Context, t *models.Team) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE teams SET name=$1, description=$2 WHERE id=$3`, t.Name, t.Description, t.ID)
	return affectedOne(tag, err, ErrNotFound)
}

func (r *teamRepo) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM team_invitations WHERE team_id=$1`, id); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE team_id=$1`, id); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id)
	return affectedOne(tag, err, ErrNotFound)
}

func (r *teamRepo) ListTeamsForUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	rows, err := r.db.Query(ctx, `
        SELECT t.id, t.name, t.description, t.owner_id, t.created_at
        FROM teams t JOIN team_members m ON m.team_id = t.id
        WHERE m.user_id=$1
        ORDER BY t.created_at
    `, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTeam)
}

func (r *teamRepo) AddMember(ctx context.Context, m *models.TeamMember) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO team_members (id, team_id, user_id, role, invited_by, joined_at)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, m.ID, m.TeamID, m.UserID, string(m.Role), m.InvitedBy, m.JoinedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *teamRepo) GetMember(ctx context.Context, teamID, userID uuid.UUID) (*models.TeamMember, error) {
	row := r.db.QueryRow(ctx, baseSelectMember()+" WHERE team_id=$1 AND user_id=$2", teamID, userID)
	return noRows(scanMember(row))
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	rows, err := r.db.Query(ctx, baseSelectMember()+" WHERE team_id=$1 ORDER BY joined_at", teamID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMember)
}

func (r *teamRepo) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO team_invitations (
            id, team_id, email, role, invited_by, status, token, expires_at, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    `,
		inv.ID, inv.TeamID, normalizeEmail(inv.Email), string(inv.Role), inv.InvitedBy,
		string(inv.Status), inv.Token, inv.ExpiresAt, inv.CreatedAt,
	)
	return err
}

func (r *teamRepo) ListPendingInvitations(ctx context.Context, teamID uuid.UUID) ([]*models.TeamInvitation, error) {
	rows, err := r.db.Query(ctx,
		baseSelectInvitation()+" WHERE team_id=$1 AND status=$2 ORDER BY created_at",
		teamID, string(models.InvitationPending))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanInvitation)
}

func (r *teamRepo) GetInvitationByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	row := r.db.QueryRow(ctx, baseSelectInvitation()+" WHERE token=$1", token)
	return noRows(scanInvitation(row))
}

func (r *teamRepo) SetInvitationStatus(ctx context.Context, id uuid.UUID, status models.InvitationStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE team_invitations SET status=$1 WHERE id=$2`, string(status), id)
	return affectedOne(tag, err, ErrNotFound)
}

func baseSelectTeam() string {
	return `SELECT id, name, description, owner_id, created_at FROM teams`
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.OwnerID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func baseSelectMember() string {
	return `SELECT id, team_id, user_id, role, invited_by, joined_at FROM team_members`
}

func scanMember(row pgx.Row) (*models.TeamMember, error) {
	var (
		m    models.TeamMember
		role string
	)
	if err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &role, &m.InvitedBy, &m.JoinedAt); err != nil {
		return nil, err
	}
	m.Role = models.TeamRole(role)
	return &m, nil
}

func baseSelectInvitation() string {
	return `
        SELECT id, team_id, email, role, invited_by, status, token, expires_at, created_at
        FROM team_invitations
    `
}

func scanInvitation(row pgx.Row) (*models.TeamInvitation, error) {
	var (
		inv    models.TeamInvitation
		role   string
		status string
	)
	err := row.Scan(
		&inv.ID, &inv.TeamID, &inv.Email, &role, &inv.InvitedBy,
		&status, &inv.Token, &inv.ExpiresAt, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.Role = models.TeamRole(role)
	inv.Status = models.InvitationStatus(status)
	return &inv, nil
}
