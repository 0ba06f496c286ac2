package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/Patator33/Gestion-locative/shared/go-models"
	"github.com/Patator33/Gestion-locative/shared/go-repositories"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

const (
	SeedUserEmail    = "demo@gestion-locative.fr"
	SeedUserPassword = "demo1234"
)

var (
	seedUserID      = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000001")
	seedPropertyA   = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000101")
	seedPropertyB   = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000102")
	seedTenantA     = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000201")
	seedTenantB     = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000202")
	seedLeaseA      = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000301")
	seedVacancyB    = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000401")
	seedLastPayment = uuid.MustParse("6b1f0c3e-9a57-4d8e-b1a2-5f3c00000501")
)

// SeedDemoData creates a demo landlord with one occupied and one vacant
// property. It is idempotent: an existing demo user skips the whole seed.
func SeedDemoData(ctx context.Context, store repositories.Store, now time.Time) error {
	hash, err := utils.HashPassword(SeedUserPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	today := utils.DateOnly(now)
	leaseStart := time.Date(today.Year()-1, today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastMonth := today.AddDate(0, -1, 0)

	err = store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Users().Create(ctx, &models.User{
			ID:           seedUserID,
			Email:        SeedUserEmail,
			Name:         "Compte Démo",
			PasswordHash: hash,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		repos := tx.ForOwner(seedUserID)
		if err := repos.Settings().Upsert(ctx, models.DefaultNotificationSettings(seedUserID)); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}

		properties := []*models.Property{
			{
				ID:              seedPropertyA,
				UserID:          seedUserID,
				Name:            "T3 Croix-Rousse",
				Address:         "12 rue d'Austerlitz",
				City:            "Lyon",
				PostalCode:      "69004",
				PropertyType:    "appartement",
				Surface:         68,
				Rooms:           3,
				RentAmount:      950,
				Charges:         80,
				IsOccupied:      true,
				CurrentTenantID: utils.Ptr(seedTenantA),
				CreatedAt:       now,
			},
			{
				ID:           seedPropertyB,
				UserID:       seedUserID,
				Name:         "Studio Presqu'île",
				Address:      "3 rue Mercière",
				City:         "Lyon",
				PostalCode:   "69002",
				PropertyType: "studio",
				Surface:      24,
				Rooms:        1,
				RentAmount:   520,
				Charges:      40,
				CreatedAt:    now,
			},
		}
		for _, p := range properties {
			if err := repos.Properties().Create(ctx, p); err != nil {
				return fmt.Errorf("seed property %s: %w", p.Name, err)
			}
		}

		tenants := []*models.Tenant{
			{
				ID:                seedTenantA,
				UserID:            seedUserID,
				FirstName:         "Camille",
				LastName:          "Martin",
				Email:             "camille.martin@example.com",
				Phone:             "+33612345678",
				CurrentPropertyID: utils.Ptr(seedPropertyA),
				CreatedAt:         now,
			},
			{
				ID:        seedTenantB,
				UserID:    seedUserID,
				FirstName: "Hugo",
				LastName:  "Bernard",
				Email:     "hugo.bernard@example.com",
				CreatedAt: now,
			},
		}
		for _, t := range tenants {
			if err := repos.Tenants().Create(ctx, t); err != nil {
				return fmt.Errorf("seed tenant %s: %w", t.FullName(), err)
			}
		}

		if err := repos.Leases().Create(ctx, &models.Lease{
			ID:         seedLeaseA,
			UserID:     seedUserID,
			PropertyID: seedPropertyA,
			TenantID:   seedTenantA,
			StartDate:  leaseStart,
			RentAmount: 950,
			Charges:    80,
			Deposit:    950,
			PaymentDay: 5,
			IsActive:   true,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("seed lease: %w", err)
		}

		if err := repos.Vacancies().Create(ctx, &models.Vacancy{
			ID:         seedVacancyB,
			UserID:     seedUserID,
			PropertyID: seedPropertyB,
			StartDate:  time.Date(lastMonth.Year(), lastMonth.Month(), 1, 0, 0, 0, 0, time.UTC),
			Reason:     utils.Ptr("Départ du locataire"),
			IsActive:   true,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("seed vacancy: %w", err)
		}

		if err := repos.Payments().Create(ctx, &models.Payment{
			ID:            seedLastPayment,
			UserID:        seedUserID,
			LeaseID:       seedLeaseA,
			Amount:        1030,
			PaymentDate:   time.Date(lastMonth.Year(), lastMonth.Month(), 5, 0, 0, 0, 0, time.UTC),
			PeriodMonth:   int(lastMonth.Month()),
			PeriodYear:    lastMonth.Year(),
			PaymentMethod: models.PaymentMethodTransfer,
			Status:        models.PaymentStatusPaid,
			CreatedAt:     now,
		}); err != nil {
			return fmt.Errorf("seed payment: %w", err)
		}
		return nil
	})

	if errors.Is(err, repositories.ErrDuplicate) {
		utils.Logger.Infof("Demo account already present (id=%s); skipping.", seedUserID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	utils.Logger.Infof("Seeded demo account %s (id=%s).", SeedUserEmail, seedUserID)
	return nil
}
