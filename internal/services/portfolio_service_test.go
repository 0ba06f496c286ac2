package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/internal/dtos"
	internal_utils "github.com/Patator33/Gestion-locative/internal/utils"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func TestUpdatePropertyKeepsOccupancy(t *testing.T) {
	f := newFixture(t)
	p := f.property(t, "T2", 700, 40)
	tn := f.tenant(t, "Jean", "Dupont", "")
	f.lease(t, p, tn, "2025-01-01")

	updated, err := f.properties.UpdateProperty(f.ctx, f.owner, p.ID, dtos.PropertyRequest{
		Name:         "T2 rénové",
		Address:      p.Address,
		City:         p.City,
		PostalCode:   p.PostalCode,
		PropertyType: p.PropertyType,
		Surface:      p.Surface,
		Rooms:        p.Rooms,
		RentAmount:   750,
		Charges:      p.Charges,
	})
	require.NoError(t, err)
	assert.Equal(t, "T2 rénové", updated.Name)
	assert.True(t, updated.IsOccupied)
	assert.Equal(t, tn.ID, *updated.CurrentTenantID)

	logs, err := f.audit.ListForEntity(f.ctx, f.owner, models.EntityProperty, p.ID)
	require.NoError(t, err)
	var changes map[string]models.FieldChange
	for _, e := range logs {
		if e.Action == models.AuditUpdate {
			changes = e.Changes
		}
	}
	require.NotNil(t, changes)
	assert.Len(t, changes, 2)
	assert.Equal(t, "T2", changes["name"].Old)
	assert.Equal(t, 750.0, changes["rent_amount"].New)

	_, err = f.properties.UpdateProperty(f.ctx, f.owner, uuid.New(), dtos.PropertyRequest{Name: "x"})
	assert.ErrorIs(t, err, internal_utils.ErrPropertyNotFound)
}

func TestTenantCRUD(t *testing.T) {
	f := newFixture(t)
	tn, err := f.tenants.CreateTenant(f.ctx, f.owner, dtos.TenantRequest{
		FirstName: "Jean",
		LastName:  "Dupont",
		BirthDate: utils.Ptr("1990-04-12"),
	})
	require.NoError(t, err)
	require.NotNil(t, tn.BirthDate)
	assert.Equal(t, 1990, tn.BirthDate.Year())

	_, err = f.tenants.CreateTenant(f.ctx, f.owner, dtos.TenantRequest{
		FirstName: "Bad", LastName: "Date", BirthDate: utils.Ptr("12/04/1990"),
	})
	assert.ErrorIs(t, err, internal_utils.ErrInvalidPayload)

	updated, err := f.tenants.UpdateTenant(f.ctx, f.owner, tn.ID, dtos.TenantRequest{
		FirstName: "Jean",
		LastName:  "Dupont",
		Email:     "jean@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "jean@example.com", updated.Email)

	list, err := f.tenants.ListTenants(f.ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.tenants.DeleteTenant(f.ctx, f.owner, tn.ID))
	_, err = f.tenants.GetTenant(f.ctx, f.owner, tn.ID)
	assert.ErrorIs(t, err, internal_utils.ErrTenantNotFound)
}

func TestAuditListLimit(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		f.property(t, "P", 100, 0)
	}
	logs, err := f.audit.List(f.ctx, f.owner, "", 2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = f.audit.List(f.ctx, f.owner, models.EntityTenant, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}
