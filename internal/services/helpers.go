package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
)

func propertySummary(p *models.Property) *dtos.PropertySummary {
	if p == nil {
		return nil
	}
	return &dtos.PropertySummary{ID: p.ID, Name: p.Name, Address: p.Address}
}

func tenantSummary(t *models.Tenant) *dtos.TenantSummary {
	if t == nil {
		return nil
	}
	return &dtos.TenantSummary{ID: t.ID, FirstName: t.FirstName, LastName: t.LastName, Email: t.Email}
}

// notFound maps a repository miss onto the domain sentinel.
func notFound(err error, sentinel error, id uuid.UUID) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}

func missing(sentinel error, id uuid.UUID) error {
	return fmt.Errorf("%w: %s", sentinel, id)
}

// isDomainError reports errors that are expected outcomes rather than
// failures worth an error-level log line.
func isDomainError(err error) bool {
	for _, e := range []error{
		internal_utils.ErrNotFound,
		internal_utils.ErrPropertyNotFound,
		internal_utils.ErrTenantNotFound,
		internal_utils.ErrLeaseNotFound,
		internal_utils.ErrPropertyOccupied,
		internal_utils.ErrForbidden,
		internal_utils.ErrInvalidPayload,
		internal_utils.ErrEmailExists,
		internal_utils.ErrInvalidCredentials,
		internal_utils.ErrSMTPNotConfigured,
		internal_utils.ErrSMTPCredentialsMissing,
		internal_utils.ErrDeliveryFailed,
		internal_utils.ErrFileTooLarge,
		internal_utils.ErrInvitationInvalid,
		internal_utils.ErrInvitationMismatch,
		internal_utils.ErrAlreadyMember,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

type propertyIndex map[uuid.UUID]*models.Property
type tenantIndex map[uuid.UUID]*models.Tenant
type leaseIndex map[uuid.UUID]*models.Lease

func indexProperties(ps []*models.Property) propertyIndex {
	out := make(propertyIndex, len(ps))
	for _, p := range ps {
		out[p.ID] = p
	}
	return out
}

func indexTenants(ts []*models.Tenant) tenantIndex {
	out := make(tenantIndex, len(ts))
	for _, t := range ts {
		out[t.ID] = t
	}
	return out
}

func indexLeases(ls []*models.Lease) leaseIndex {
	out := make(leaseIndex, len(ls))
	for _, l := range ls {
		out[l.ID] = l
	}
	return out
}

func tenantName(t *models.Tenant) string {
	if t == nil {
		return ""
	}
	return t.FullName()
}

func propertyName(p *models.Property) string {
	if p == nil {
		return ""
	}
	return p.Name
}
