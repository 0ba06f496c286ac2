package models

import (
	"time"

	"github.com/google/uuid"
)

type TeamRole string

const (
	TeamRoleOwner  TeamRole = "owner"
	TeamRoleAdmin  TeamRole = "admin"
	TeamRoleMember TeamRole = "member"
	TeamRoleViewer TeamRole = "viewer"
)

// CanManage reports whether the role may edit the team and invite people.
func (r TeamRole) CanManage() bool {
	return r == TeamRoleOwner || r == TeamRoleAdmin
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

type Team struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type TeamMember struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      TeamRole  `json:"role"`
	InvitedBy uuid.UUID `json:"invited_by"`
	JoinedAt  time.Time `json:"joined_at"`
}

type TeamInvitation struct {
	ID        uuid.UUID        `json:"id"`
	TeamID    uuid.UUID        `json:"team_id"`
	Email     string           `json:"email"`
	Role      TeamRole         `json:"role"`
	InvitedBy uuid.UUID        `json:"invited_by"`
	Status    InvitationStatus `json:"status"`
	Token     string           `json:"-"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}
