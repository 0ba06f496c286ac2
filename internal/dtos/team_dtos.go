package dtos

import (
	"github.com/Patator33/Gestion-locative/shared/go-models"
)

type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description"`
}

type UpdateTeamRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
}

type InviteRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin member viewer"`
}

type InviteResponse struct {
	Message         string `json:"message"`
	InvitationToken string `json:"invitation_token"`
}

type TeamSummary struct {
	*models.Team
	MemberCount int             `json:"member_count"`
	MyRole      models.TeamRole `json:"my_role"`
}

type TeamMemberView struct {
	*models.TeamMember
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TeamDetails struct {
	*models.Team
	MyRole  models.TeamRole  `json:"my_role"`
	Members []TeamMemberView `json:"members"`
}
