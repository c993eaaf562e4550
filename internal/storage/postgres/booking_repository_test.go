package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mafirs/campus-reserve/internal/domain"
	"github.com/mafirs/campus-reserve/internal/testutil"
)

func TestBookingRepository(t *testing.T) {
	pool := testutil.NewTestPool(t)
	repo := NewBookingRepository(pool)
	testutil.ApplyMigrations(t, context.Background(), pool)

	hour := func(h int) time.Time {
		return time.Date(2025, 6, 10, h, 0, 0, 0, time.UTC)
	}

	t.Run("GetVenueForUpdate returns venue and ErrVenueNotFound", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Lecture Hall", 80, domain.VenueStatusAvailable)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			venue, err := repo.GetVenueForUpdate(txCtx, venueID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if venue.ID != venueID || venue.Capacity != 80 {
				t.Fatalf("unexpected venue: %+v", venue)
			}

			missingID := "00000000-0000-0000-0000-000000000001"
			if _, err := repo.GetVenueForUpdate(txCtx, missingID); err != domain.ErrVenueNotFound {
				t.Fatalf("expected ErrVenueNotFound, got %v", err)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}

		if _, err := repo.GetVenueForUpdate(ctx, "not-a-uuid"); err != domain.ErrInvalidID {
			t.Fatalf("expected ErrInvalidID, got %v", err)
		}
	})

	t.Run("GetMaterialsForUpdate returns rows in id order", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		first := testutil.InsertMaterial(t, ctx, pool, "Chairs", 50, 50, domain.MaterialStatusAvailable)
		second := testutil.InsertMaterial(t, ctx, pool, "Tables", 20, 20, domain.MaterialStatusAvailable)

		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			materials, err := repo.GetMaterialsForUpdate(txCtx, []string{first, second})
			if err != nil {
				t.Fatalf("lock materials: %v", err)
			}
			if len(materials) != 2 {
				t.Fatalf("expected 2 materials, got %d", len(materials))
			}
			if materials[0].ID > materials[1].ID {
				t.Fatalf("expected ascending id order, got %s then %s", materials[0].ID, materials[1].ID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("tx failed: %v", err)
		}
	})

	t.Run("FindBlockingApplication honors half-open windows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Studio", 20, domain.VenueStatusAvailable)
		blockerID := testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID:  "user-1",
			VenueID:      venueID,
			ActivityName: "Rehearsal",
			StartsAt:     hour(10),
			EndsAt:       hour(12),
			Status:       domain.StatusPendingReviewer,
		})

		got, err := repo.FindBlockingApplication(ctx, venueID, hour(11), hour(13), "")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != blockerID {
			t.Fatalf("expected %s, got %q", blockerID, got)
		}

		// Touching endpoints do not conflict.
		got, err = repo.FindBlockingApplication(ctx, venueID, hour(12), hour(14), "")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != "" {
			t.Fatalf("expected no blocker at shared endpoint, got %q", got)
		}

		// The application itself can be excluded.
		got, err = repo.FindBlockingApplication(ctx, venueID, hour(10), hour(12), blockerID)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != "" {
			t.Fatalf("expected exclusion to apply, got %q", got)
		}
	})

	t.Run("FindBlockingApplication ignores terminal inactive statuses", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Studio", 20, domain.VenueStatusAvailable)
		for _, status := range []domain.ApplicationStatus{domain.StatusCancelled, domain.StatusRejected} {
			testutil.InsertApplication(t, ctx, pool, domain.Application{
				RequesterID:  "user-1",
				VenueID:      venueID,
				ActivityName: "Dropped booking",
				StartsAt:     hour(10),
				EndsAt:       hour(12),
				Status:       status,
			})
		}

		got, err := repo.FindBlockingApplication(ctx, venueID, hour(10), hour(12), "")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got != "" {
			t.Fatalf("expected cancelled/rejected rows to free the window, got %q", got)
		}
	})

	t.Run("CreateApplication then GetApplication round-trips line items", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Hall", 100, domain.VenueStatusAvailable)
		chairID := testutil.InsertMaterial(t, ctx, pool, "Chairs", 50, 50, domain.MaterialStatusAvailable)
		tableID := testutil.InsertMaterial(t, ctx, pool, "Tables", 20, 20, domain.MaterialStatusAvailable)

		app := domain.Application{
			ID:                  "4dc45b1e-2c8a-4d36-9d47-0a2b2f3f5a01",
			RequesterID:         "user-7",
			ActivityName:        "Orientation day",
			ActivityDescription: "New student welcome",
			VenueID:             venueID,
			StartsAt:            hour(9),
			EndsAt:              hour(17),
			Items: []domain.LineItem{
				{MaterialID: tableID, Quantity: 4},
				{MaterialID: chairID, Quantity: 30},
			},
			Status:    domain.StatusPendingReviewer,
			CreatedAt: hour(8),
			UpdatedAt: hour(8),
		}
		if err := repo.CreateApplication(ctx, app); err != nil {
			t.Fatalf("create: %v", err)
		}

		got, err := repo.GetApplication(ctx, app.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.ActivityName != "Orientation day" || got.Status != domain.StatusPendingReviewer {
			t.Fatalf("unexpected application: %+v", got)
		}
		if len(got.Items) != 2 || got.Items[0].MaterialID != tableID || got.Items[1].Quantity != 30 {
			t.Fatalf("line items out of order or missing: %+v", got.Items)
		}
	})

	t.Run("CreateApplication maps foreign key violations", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		missing := "00000000-0000-0000-0000-000000000002"
		err := repo.CreateApplication(ctx, domain.Application{
			ID:           "4dc45b1e-2c8a-4d36-9d47-0a2b2f3f5a02",
			RequesterID:  "user-1",
			ActivityName: "Ghost booking",
			VenueID:      missing,
			StartsAt:     hour(9),
			EndsAt:       hour(10),
			Status:       domain.StatusPendingReviewer,
			CreatedAt:    hour(8),
			UpdatedAt:    hour(8),
		})
		if !errors.Is(err, domain.ErrVenueNotFound) {
			t.Fatalf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("SaveApplicationStatus updates review fields", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Hall", 100, domain.VenueStatusAvailable)
		appID := testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID:  "user-1",
			VenueID:      venueID,
			ActivityName: "Seminar",
			StartsAt:     hour(9),
			EndsAt:       hour(11),
			Status:       domain.StatusPendingAdmin,
		})

		reviewer := "admin-1"
		reason := "double booked"
		reviewedAt := hour(12)
		err := repo.SaveApplicationStatus(ctx, domain.Application{
			ID:              appID,
			Status:          domain.StatusRejected,
			ReviewerID:      &reviewer,
			RejectionReason: &reason,
			ReviewedAt:      &reviewedAt,
			UpdatedAt:       hour(12),
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := repo.GetApplication(ctx, appID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Status != domain.StatusRejected || got.ReviewerID == nil || *got.ReviewerID != reviewer {
			t.Fatalf("unexpected application: %+v", got)
		}
		if got.RejectionReason == nil || *got.RejectionReason != reason {
			t.Fatalf("expected rejection reason persisted, got %+v", got.RejectionReason)
		}

		err = repo.SaveApplicationStatus(ctx, domain.Application{
			ID:        "00000000-0000-0000-0000-000000000003",
			Status:    domain.StatusApproved,
			UpdatedAt: hour(12),
		})
		if err != domain.ErrApplicationNotFound {
			t.Fatalf("expected ErrApplicationNotFound, got %v", err)
		}
	})

	t.Run("ListApplicationsByRequester filters by status", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Hall", 100, domain.VenueStatusAvailable)
		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-1", VenueID: venueID, ActivityName: "A",
			StartsAt: hour(9), EndsAt: hour(10), Status: domain.StatusPendingReviewer,
		})
		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-1", VenueID: venueID, ActivityName: "B",
			StartsAt: hour(11), EndsAt: hour(12), Status: domain.StatusApproved,
		})
		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-2", VenueID: venueID, ActivityName: "C",
			StartsAt: hour(13), EndsAt: hour(14), Status: domain.StatusApproved,
		})

		all, err := repo.ListApplicationsByRequester(ctx, "user-1", nil)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 applications, got %d", len(all))
		}

		approved := domain.StatusApproved
		filtered, err := repo.ListApplicationsByRequester(ctx, "user-1", &approved)
		if err != nil {
			t.Fatalf("list filtered: %v", err)
		}
		if len(filtered) != 1 || filtered[0].ActivityName != "B" {
			t.Fatalf("unexpected filtered result: %+v", filtered)
		}
	})

	t.Run("ListApplicationsByStatus returns the review queue", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		venueID := testutil.InsertVenue(t, ctx, pool, "Hall", 100, domain.VenueStatusAvailable)
		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-1", VenueID: venueID, ActivityName: "Pending",
			StartsAt: hour(9), EndsAt: hour(10), Status: domain.StatusPendingAdmin,
		})
		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-2", VenueID: venueID, ActivityName: "Done",
			StartsAt: hour(11), EndsAt: hour(12), Status: domain.StatusApproved,
		})

		queue, err := repo.ListApplicationsByStatus(ctx, domain.StatusPendingAdmin)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(queue) != 1 || queue[0].ActivityName != "Pending" {
			t.Fatalf("unexpected queue: %+v", queue)
		}
	})

	t.Run("ListAvailableVenues excludes busy and maintenance venues", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		freeID := testutil.InsertVenue(t, ctx, pool, "Free Hall", 40, domain.VenueStatusAvailable)
		busyID := testutil.InsertVenue(t, ctx, pool, "Busy Hall", 40, domain.VenueStatusAvailable)
		testutil.InsertVenue(t, ctx, pool, "Closed Hall", 40, domain.VenueStatusMaintenance)

		testutil.InsertApplication(t, ctx, pool, domain.Application{
			RequesterID: "user-1", VenueID: busyID, ActivityName: "Blocker",
			StartsAt: hour(10), EndsAt: hour(12), Status: domain.StatusApproved,
		})

		venues, err := repo.ListAvailableVenues(ctx, hour(11), hour(13))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(venues) != 1 || venues[0].ID != freeID {
			t.Fatalf("expected only the free venue, got %+v", venues)
		}

		// The busy venue reappears once the requested window clears its booking.
		venues, err = repo.ListAvailableVenues(ctx, hour(12), hour(14))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(venues) != 2 {
			t.Fatalf("expected 2 venues, got %+v", venues)
		}
	})

	t.Run("SaveMaterialQuantity persists and reports missing rows", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		materialID := testutil.InsertMaterial(t, ctx, pool, "Chairs", 50, 50, domain.MaterialStatusAvailable)

		err := repo.SaveMaterialQuantity(ctx, domain.Material{
			ID:                materialID,
			AvailableQuantity: 38,
			UpdatedAt:         hour(10),
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}

		var available int
		if err := pool.QueryRow(ctx, `SELECT available_quantity FROM materials WHERE id = $1`, materialID).Scan(&available); err != nil {
			t.Fatalf("query: %v", err)
		}
		if available != 38 {
			t.Fatalf("expected 38, got %d", available)
		}

		err = repo.SaveMaterialQuantity(ctx, domain.Material{
			ID:        "00000000-0000-0000-0000-000000000004",
			UpdatedAt: hour(10),
		})
		if err != domain.ErrMaterialNotFound {
			t.Fatalf("expected ErrMaterialNotFound, got %v", err)
		}
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		ctx := context.Background()
		testutil.TruncateAll(t, ctx, pool)

		materialID := testutil.InsertMaterial(t, ctx, pool, "Chairs", 50, 50, domain.MaterialStatusAvailable)

		sentinel := errors.New("boom")
		err := repo.WithTx(ctx, func(txCtx context.Context) error {
			if err := repo.SaveMaterialQuantity(txCtx, domain.Material{
				ID:                materialID,
				AvailableQuantity: 1,
				UpdatedAt:         hour(10),
			}); err != nil {
				t.Fatalf("save in tx: %v", err)
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}

		var available int
		if err := pool.QueryRow(ctx, `SELECT available_quantity FROM materials WHERE id = $1`, materialID).Scan(&available); err != nil {
			t.Fatalf("query: %v", err)
		}
		if available != 50 {
			t.Fatalf("expected rollback to 50, got %d", available)
		}
	})
}
