package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mafirs/campus-reserve/internal/domain"
)

// fakeBookingRepo keeps everything in maps and simulates transaction
// rollback by snapshotting state around WithTx.
type fakeBookingRepo struct {
	venues       map[string]domain.Venue
	materials    map[string]domain.Material
	applications map[string]domain.Application
	created      []string
}

func newFakeBookingRepo(venues []domain.Venue, materials []domain.Material) *fakeBookingRepo {
	repo := &fakeBookingRepo{
		venues:       make(map[string]domain.Venue),
		materials:    make(map[string]domain.Material),
		applications: make(map[string]domain.Application),
	}
	for _, v := range venues {
		repo.venues[v.ID] = v
	}
	for _, m := range materials {
		repo.materials[m.ID] = m
	}
	return repo
}

func (f *fakeBookingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	venues := cloneMap(f.venues)
	materials := cloneMap(f.materials)
	applications := cloneMap(f.applications)
	created := append([]string(nil), f.created...)

	if err := fn(ctx); err != nil {
		f.venues = venues
		f.materials = materials
		f.applications = applications
		f.created = created
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (f *fakeBookingRepo) GetVenueForUpdate(_ context.Context, venueID string) (domain.Venue, error) {
	v, ok := f.venues[venueID]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return v, nil
}

func (f *fakeBookingRepo) GetMaterialsForUpdate(_ context.Context, materialIDs []string) ([]domain.Material, error) {
	out := make([]domain.Material, 0, len(materialIDs))
	for _, id := range materialIDs {
		if m, ok := f.materials[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) SaveMaterialQuantity(_ context.Context, m domain.Material) error {
	stored, ok := f.materials[m.ID]
	if !ok {
		return domain.ErrMaterialNotFound
	}
	stored.AvailableQuantity = m.AvailableQuantity
	stored.UpdatedAt = m.UpdatedAt
	f.materials[m.ID] = stored
	return nil
}

func (f *fakeBookingRepo) FindBlockingApplication(_ context.Context, venueID string, start, end time.Time, excludeID string) (string, error) {
	for _, id := range f.created {
		a := f.applications[id]
		if a.VenueID != venueID || a.ID == excludeID || !a.IsActive() {
			continue
		}
		if a.Overlaps(start, end) {
			return a.ID, nil
		}
	}
	return "", nil
}

func (f *fakeBookingRepo) CreateApplication(_ context.Context, a domain.Application) error {
	if _, exists := f.applications[a.ID]; exists {
		return fmt.Errorf("duplicate application id %s", a.ID)
	}
	f.applications[a.ID] = a
	f.created = append(f.created, a.ID)
	return nil
}

func (f *fakeBookingRepo) GetApplication(_ context.Context, id string) (domain.Application, error) {
	a, ok := f.applications[id]
	if !ok {
		return domain.Application{}, domain.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeBookingRepo) GetApplicationForUpdate(ctx context.Context, id string) (domain.Application, error) {
	return f.GetApplication(ctx, id)
}

func (f *fakeBookingRepo) SaveApplicationStatus(_ context.Context, a domain.Application) error {
	stored, ok := f.applications[a.ID]
	if !ok {
		return domain.ErrApplicationNotFound
	}
	stored.Status = a.Status
	stored.ReviewerID = a.ReviewerID
	stored.RejectionReason = a.RejectionReason
	stored.ReviewedAt = a.ReviewedAt
	stored.UpdatedAt = a.UpdatedAt
	f.applications[a.ID] = stored
	return nil
}

func (f *fakeBookingRepo) ListApplicationsByRequester(_ context.Context, requesterID string, status *domain.ApplicationStatus) ([]domain.Application, error) {
	var out []domain.Application
	for _, id := range f.created {
		a := f.applications[id]
		if a.RequesterID != requesterID {
			continue
		}
		if status != nil && a.Status != *status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeBookingRepo) ListApplicationsByStatus(_ context.Context, status domain.ApplicationStatus) ([]domain.Application, error) {
	var out []domain.Application
	for _, id := range f.created {
		if a := f.applications[id]; a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListAvailableVenues(_ context.Context, start, end time.Time) ([]domain.Venue, error) {
	var out []domain.Venue
	for _, v := range f.venues {
		if !v.IsAvailable() {
			continue
		}
		blocked := false
		for _, id := range f.created {
			a := f.applications[id]
			if a.VenueID == v.ID && a.IsActive() && a.Overlaps(start, end) {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// fakeCatalogRepo backs CatalogService tests.
type fakeCatalogRepo struct {
	venues    map[string]domain.Venue
	materials map[string]domain.Material
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		venues:    make(map[string]domain.Venue),
		materials: make(map[string]domain.Material),
	}
}

func (f *fakeCatalogRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	venues := cloneMap(f.venues)
	materials := cloneMap(f.materials)
	if err := fn(ctx); err != nil {
		f.venues = venues
		f.materials = materials
		return err
	}
	return nil
}

func (f *fakeCatalogRepo) CreateVenue(_ context.Context, v domain.Venue) error {
	f.venues[v.ID] = v
	return nil
}

func (f *fakeCatalogRepo) GetVenue(_ context.Context, id string) (domain.Venue, error) {
	v, ok := f.venues[id]
	if !ok {
		return domain.Venue{}, domain.ErrVenueNotFound
	}
	return v, nil
}

func (f *fakeCatalogRepo) GetVenueForUpdate(ctx context.Context, id string) (domain.Venue, error) {
	return f.GetVenue(ctx, id)
}

func (f *fakeCatalogRepo) UpdateVenue(_ context.Context, v domain.Venue) error {
	if _, ok := f.venues[v.ID]; !ok {
		return domain.ErrVenueNotFound
	}
	f.venues[v.ID] = v
	return nil
}

func (f *fakeCatalogRepo) ListVenues(_ context.Context) ([]domain.Venue, error) {
	out := make([]domain.Venue, 0, len(f.venues))
	for _, v := range f.venues {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeCatalogRepo) CreateMaterial(_ context.Context, m domain.Material) error {
	f.materials[m.ID] = m
	return nil
}

func (f *fakeCatalogRepo) GetMaterial(_ context.Context, id string) (domain.Material, error) {
	m, ok := f.materials[id]
	if !ok {
		return domain.Material{}, domain.ErrMaterialNotFound
	}
	return m, nil
}

func (f *fakeCatalogRepo) GetMaterialForUpdate(ctx context.Context, id string) (domain.Material, error) {
	return f.GetMaterial(ctx, id)
}

func (f *fakeCatalogRepo) UpdateMaterial(_ context.Context, m domain.Material) error {
	if _, ok := f.materials[m.ID]; !ok {
		return domain.ErrMaterialNotFound
	}
	f.materials[m.ID] = m
	return nil
}

func (f *fakeCatalogRepo) ListMaterials(_ context.Context) ([]domain.Material, error) {
	out := make([]domain.Material, 0, len(f.materials))
	for _, m := range f.materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
