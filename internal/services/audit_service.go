package services

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/constants"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
)

// AuditService writes and reads the change history of owned entities.
type AuditService struct {
	store repositories.Store
}

func NewAuditService(store repositories.Store) *AuditService {
	return &AuditService{store: store}
}

// AuditEntry describes one change. Changes is only set for updates.
type AuditEntry struct {
	Action     models.AuditAction
	EntityType models.AuditEntityType
	EntityID   uuid.UUID
	EntityName string
	Changes    map[string]models.FieldChange
}

// Record stores entry through st, which may be a transaction so the log
// commits or rolls back with the change it describes.
func (s *AuditService) Record(ctx context.Context, st repositories.Store, ownerID uuid.UUID, entry AuditEntry) error {
	userName := ""
	user, err := st.Users().GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if user != nil {
		userName = user.Name
	}
	return st.ForOwner(ownerID).AuditLogs().Create(ctx, &models.AuditLog{
		ID:         uuid.New(),
		UserName:   userName,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Changes:    entry.Changes,
		CreatedAt:  time.Now().UTC(),
	})
}

// List returns the newest entries first; limit falls back to the default
// when out of range.
func (s *AuditService) List(ctx context.Context, ownerID uuid.UUID, entityType models.AuditEntityType, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > constants.AuditLogsMaxLimit {
		limit = constants.AuditLogsDefaultLimit
	}
	logs, err := s.store.ForOwner(ownerID).AuditLogs().List(ctx, entityType, limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return logs, nil
}

func (s *AuditService) ListForEntity(ctx context.Context, ownerID uuid.UUID, entityType models.AuditEntityType, entityID uuid.UUID) ([]*models.AuditLog, error) {
	logs, err := s.store.ForOwner(ownerID).AuditLogs().ListForEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.AuditLog{}
	}
	return logs, nil
}

// diffFields keeps the tracked fields whose value changed.
func diffFields(before, after map[string]any) map[string]models.FieldChange {
	changes := make(map[string]models.FieldChange)
	for field, oldVal := range before {
		newVal := after[field]
		if !reflect.DeepEqual(oldVal, newVal) {
			changes[field] = models.FieldChange{Old: oldVal, New: newVal}
		}
	}
	return changes
}

func propertyAuditFields(p *models.Property) map[string]any {
	return map[string]any{
		"name":          p.Name,
		"address":       p.Address,
		"city":          p.City,
		"postal_code":   p.PostalCode,
		"property_type": p.PropertyType,
		"surface":       p.Surface,
		"rooms":         p.Rooms,
		"rent_amount":   p.RentAmount,
		"charges":       p.Charges,
		"description":   derefString(p.Description),
	}
}

func tenantAuditFields(t *models.Tenant) map[string]any {
	return map[string]any{
		"first_name":        t.FirstName,
		"last_name":         t.LastName,
		"email":             t.Email,
		"phone":             t.Phone,
		"profession":        derefString(t.Profession),
		"emergency_contact": derefString(t.EmergencyContact),
		"notes":             derefString(t.Notes),
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
