package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

type AuditEntityType string

const (
	EntityProperty AuditEntityType = "property"
	EntityTenant   AuditEntityType = "tenant"
	EntityLease    AuditEntityType = "lease"
	EntityPayment  AuditEntityType = "payment"
	EntityVacancy  AuditEntityType = "vacancy"
	EntityDocument AuditEntityType = "document"
	EntityTeam     AuditEntityType = "team"
)

// FieldChange is one before/after pair of an update.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

type AuditLog struct {
	ID         uuid.UUID              `json:"id"`
	UserID     uuid.UUID              `json:"user_id"`
	UserName   string                 `json:"user_name"`
	TeamID     *uuid.UUID             `json:"team_id"`
	Action     AuditAction            `json:"action"`
	EntityType AuditEntityType        `json:"entity_type"`
	EntityID   uuid.UUID              `json:"entity_id"`
	EntityName string                 `json:"entity_name"`
	Changes    map[string]FieldChange `json:"changes,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}
