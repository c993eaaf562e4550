package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/mafirs/campus-reserve/internal/domain"
	"github.com/mafirs/campus-reserve/internal/testutil"
)

func TestCatalogRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewCatalogRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("venue round-trip", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venue := domain.Venue{
			ID:          "7ac45b1e-2c8a-4d36-9d47-0a2b2f3f5a10",
			Name:        "Auditorium",
			Location:    "Main Building",
			Capacity:    300,
			Description: "Tiered seating",
			Equipment:   []string{"projector", "sound system"},
			Status:      domain.VenueStatusAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateVenue(ctx, venue); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.GetVenue(ctx, venue.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Name != venue.Name || got.Capacity != 300 || len(got.Equipment) != 2 {
			t.Fatalf("unexpected venue: %+v", got)
		}

		got.Status = domain.VenueStatusMaintenance
		got.UpdatedAt = now.Add(time.Hour)
		if err := repo.UpdateVenue(ctx, got); err != nil {
			t.Fatalf("update: %v", err)
		}

		updated, err := repo.GetVenue(ctx, venue.ID)
		if err != nil {
			t.Fatalf("get after update: %v", err)
		}
		if updated.Status != domain.VenueStatusMaintenance {
			t.Fatalf("expected maintenance, got %s", updated.Status)
		}

		if _, err := repo.GetVenue(ctx, "00000000-0000-0000-0000-000000000001"); err != domain.ErrVenueNotFound {
			t.Fatalf("expected ErrVenueNotFound, got %v", err)
		}
		if _, err := repo.GetVenue(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}

		missing := venue
		missing.ID = "00000000-0000-0000-0000-000000000001"
		if err := repo.UpdateVenue(ctx, missing); err != domain.ErrVenueNotFound {
			t.Fatalf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("ListVenues orders by name", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		testutil.InsertVenue(t, ctx, pool, "Zeta Room", 10, domain.VenueStatusAvailable)
		testutil.InsertVenue(t, ctx, pool, "Alpha Room", 10, domain.VenueStatusMaintenance)

		venues, err := repo.ListVenues(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(venues) != 2 || venues[0].Name != "Alpha Room" {
			t.Fatalf("unexpected listing: %+v", venues)
		}
	})

	t.Run("material round-trip with lock", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		material := domain.Material{
			ID:                "7ac45b1e-2c8a-4d36-9d47-0a2b2f3f5a11",
			Name:              "Microphone",
			Category:          "audio",
			TotalQuantity:     12,
			AvailableQuantity: 12,
			Unit:              "pcs",
			Status:            domain.MaterialStatusAvailable,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := repo.CreateMaterial(ctx, material); err != nil {
			t.Fatalf("create: %v", err)
		}

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			got, err := repo.GetMaterialForUpdate(txCtx, material.ID)
			if err != nil {
				t.Fatalf("lock: %v", err)
			}
			got.TotalQuantity = 20
			got.AvailableQuantity = 20
			got.UpdatedAt = now.Add(time.Hour)
			return repo.UpdateMaterial(txCtx, got)
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		got, err := repo.GetMaterial(ctx, material.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.TotalQuantity != 20 || got.AvailableQuantity != 20 {
			t.Fatalf("unexpected material: %+v", got)
		}

		if _, err := repo.GetMaterial(ctx, "00000000-0000-0000-0000-000000000002"); err != domain.ErrMaterialNotFound {
			t.Fatalf("expected ErrMaterialNotFound, got %v", err)
		}
	})

	t.Run("ListMaterials returns all rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		testutil.InsertMaterial(t, ctx, pool, "Cables", 100, 80, domain.MaterialStatusAvailable)
		testutil.InsertMaterial(t, ctx, pool, "Banners", 10, 10, domain.MaterialStatusUnavailable)

		materials, err := repo.ListMaterials(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(materials) != 2 || materials[0].Name != "Banners" {
			t.Fatalf("unexpected listing: %+v", materials)
		}
	})
}
