package app

import (
	"context"
	"strings"

	"github.com/mafirs/campus-reserve/internal/clock"
	"github.com/mafirs/campus-reserve/internal/domain"
)

// CatalogRepository is the persistence contract for venue and material
// administration.
type CatalogRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateVenue(ctx context.Context, v domain.Venue) error
	GetVenue(ctx context.Context, id string) (domain.Venue, error)
	GetVenueForUpdate(ctx context.Context, id string) (domain.Venue, error)
	UpdateVenue(ctx context.Context, v domain.Venue) error
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	CreateMaterial(ctx context.Context, m domain.Material) error
	GetMaterial(ctx context.Context, id string) (domain.Material, error)
	GetMaterialForUpdate(ctx context.Context, id string) (domain.Material, error)
	UpdateMaterial(ctx context.Context, m domain.Material) error
	ListMaterials(ctx context.Context) ([]domain.Material, error)
}

// CatalogService manages the venue and material catalog. Mutations are
// narrow typed requests; nothing here touches available_quantity except
// AdjustTotalQuantity, which re-validates the inventory bound under lock.
type CatalogService struct {
	repo  CatalogRepository
	clock clock.Clock
}

func NewCatalogService(repo CatalogRepository, clk clock.Clock) *CatalogService {
	return &CatalogService{repo: repo, clock: clk}
}

type CreateVenueInput struct {
	Name        string
	Location    string
	Capacity    int
	Description string
	Equipment   []string
}

func (s *CatalogService) CreateVenue(ctx context.Context, in CreateVenueInput) (domain.Venue, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Venue{}, domain.ErrVenueNameRequired
	}
	if in.Capacity <= 0 {
		return domain.Venue{}, domain.ErrInvalidCapacity
	}

	now := s.clock.Now()
	venue := domain.Venue{
		ID:          newID(),
		Name:        strings.TrimSpace(in.Name),
		Location:    in.Location,
		Capacity:    in.Capacity,
		Description: in.Description,
		Equipment:   in.Equipment,
		Status:      domain.VenueStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateVenue(ctx, venue); err != nil {
		return domain.Venue{}, err
	}
	return venue, nil
}

type UpdateVenueInput struct {
	ID          string
	Name        string
	Location    string
	Capacity    int
	Description string
	Equipment   []string
}

func (s *CatalogService) UpdateVenue(ctx context.Context, in UpdateVenueInput) (domain.Venue, error) {
	if in.ID == "" {
		return domain.Venue{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.Venue{}, domain.ErrVenueNameRequired
	}
	if in.Capacity <= 0 {
		return domain.Venue{}, domain.ErrInvalidCapacity
	}

	var result domain.Venue
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		venue, err := s.repo.GetVenueForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}
		venue.Name = strings.TrimSpace(in.Name)
		venue.Location = in.Location
		venue.Capacity = in.Capacity
		venue.Description = in.Description
		venue.Equipment = in.Equipment
		venue.UpdatedAt = s.clock.Now()

		if err := s.repo.UpdateVenue(txCtx, venue); err != nil {
			return err
		}
		result = venue
		return nil
	})
	if err != nil {
		return domain.Venue{}, err
	}
	return result, nil
}

// SetVenueStatus flips a venue between available and maintenance. Existing
// applications are untouched; maintenance only blocks new bookings and
// final approvals.
func (s *CatalogService) SetVenueStatus(ctx context.Context, id string, status domain.VenueStatus) (domain.Venue, error) {
	if id == "" {
		return domain.Venue{}, domain.ErrInvalidID
	}
	if status != domain.VenueStatusAvailable && status != domain.VenueStatusMaintenance {
		return domain.Venue{}, domain.ErrInvalidStatus
	}

	var result domain.Venue
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		venue, err := s.repo.GetVenueForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		venue.Status = status
		venue.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateVenue(txCtx, venue); err != nil {
			return err
		}
		result = venue
		return nil
	})
	if err != nil {
		return domain.Venue{}, err
	}
	return result, nil
}

func (s *CatalogService) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	if id == "" {
		return domain.Venue{}, domain.ErrInvalidID
	}
	return s.repo.GetVenue(ctx, id)
}

func (s *CatalogService) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return s.repo.ListVenues(ctx)
}

type CreateMaterialInput struct {
	Name          string
	Category      string
	TotalQuantity int
	Unit          string
	Description   string
}

func (s *CatalogService) CreateMaterial(ctx context.Context, in CreateMaterialInput) (domain.Material, error) {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Material{}, domain.ErrMaterialNameRequired
	}
	if in.TotalQuantity <= 0 {
		return domain.Material{}, domain.ErrInvalidTotalQuantity
	}

	now := s.clock.Now()
	material := domain.Material{
		ID:                newID(),
		Name:              strings.TrimSpace(in.Name),
		Category:          in.Category,
		TotalQuantity:     in.TotalQuantity,
		AvailableQuantity: in.TotalQuantity,
		Unit:              in.Unit,
		Description:       in.Description,
		Status:            domain.MaterialStatusAvailable,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.CreateMaterial(ctx, material); err != nil {
		return domain.Material{}, err
	}
	return material, nil
}

type UpdateMaterialInput struct {
	ID          string
	Name        string
	Category    string
	Unit        string
	Description string
}

func (s *CatalogService) UpdateMaterial(ctx context.Context, in UpdateMaterialInput) (domain.Material, error) {
	if in.ID == "" {
		return domain.Material{}, domain.ErrInvalidID
	}
	if strings.TrimSpace(in.Name) == "" {
		return domain.Material{}, domain.ErrMaterialNameRequired
	}

	var result domain.Material
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		material, err := s.repo.GetMaterialForUpdate(txCtx, in.ID)
		if err != nil {
			return err
		}
		material.Name = strings.TrimSpace(in.Name)
		material.Category = in.Category
		material.Unit = in.Unit
		material.Description = in.Description
		material.UpdatedAt = s.clock.Now()

		if err := s.repo.UpdateMaterial(txCtx, material); err != nil {
			return err
		}
		result = material
		return nil
	})
	if err != nil {
		return domain.Material{}, err
	}
	return result, nil
}

func (s *CatalogService) SetMaterialStatus(ctx context.Context, id string, status domain.MaterialStatus) (domain.Material, error) {
	if id == "" {
		return domain.Material{}, domain.ErrInvalidID
	}
	if status != domain.MaterialStatusAvailable && status != domain.MaterialStatusUnavailable {
		return domain.Material{}, domain.ErrInvalidStatus
	}

	var result domain.Material
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		material, err := s.repo.GetMaterialForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		material.Status = status
		material.UpdatedAt = s.clock.Now()
		if err := s.repo.UpdateMaterial(txCtx, material); err != nil {
			return err
		}
		result = material
		return nil
	})
	if err != nil {
		return domain.Material{}, err
	}
	return result, nil
}

// AdjustTotalQuantity changes a material's ceiling. The new total must
// still cover stock reserved by active applications; available stock
// shifts by the same delta so the conservation property holds.
func (s *CatalogService) AdjustTotalQuantity(ctx context.Context, id string, newTotal int) (domain.Material, error) {
	if id == "" {
		return domain.Material{}, domain.ErrInvalidID
	}
	if newTotal <= 0 {
		return domain.Material{}, domain.ErrInvalidTotalQuantity
	}

	var result domain.Material
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		material, err := s.repo.GetMaterialForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if newTotal < material.ReservedQuantity() {
			return domain.ErrInvalidTotalQuantity
		}

		delta := newTotal - material.TotalQuantity
		material.TotalQuantity = newTotal
		material.AvailableQuantity += delta
		material.UpdatedAt = s.clock.Now()

		if err := s.repo.UpdateMaterial(txCtx, material); err != nil {
			return err
		}
		result = material
		return nil
	})
	if err != nil {
		return domain.Material{}, err
	}
	return result, nil
}

func (s *CatalogService) GetMaterial(ctx context.Context, id string) (domain.Material, error) {
	if id == "" {
		return domain.Material{}, domain.ErrInvalidID
	}
	return s.repo.GetMaterial(ctx, id)
}

func (s *CatalogService) ListMaterials(ctx context.Context) ([]domain.Material, error) {
	return s.repo.ListMaterials(ctx)
}
