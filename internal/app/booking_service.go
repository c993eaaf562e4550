package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mafirs/campus-reserve/internal/clock"
	"github.com/mafirs/campus-reserve/internal/domain"
	"github.com/mafirs/campus-reserve/internal/inventory"
	"github.com/mafirs/campus-reserve/internal/workflow"
)

// BookingRepository is the persistence contract for the reservation
// coordinator. Every *ForUpdate method must lock the row for the duration
// of the enclosing transaction.
type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetVenueForUpdate(ctx context.Context, venueID string) (domain.Venue, error)
	GetMaterialsForUpdate(ctx context.Context, materialIDs []string) ([]domain.Material, error)
	SaveMaterialQuantity(ctx context.Context, m domain.Material) error
	FindBlockingApplication(ctx context.Context, venueID string, start, end time.Time, excludeID string) (string, error)
	CreateApplication(ctx context.Context, app domain.Application) error
	GetApplication(ctx context.Context, id string) (domain.Application, error)
	GetApplicationForUpdate(ctx context.Context, id string) (domain.Application, error)
	SaveApplicationStatus(ctx context.Context, app domain.Application) error
	ListApplicationsByRequester(ctx context.Context, requesterID string, status *domain.ApplicationStatus) ([]domain.Application, error)
	ListApplicationsByStatus(ctx context.Context, status domain.ApplicationStatus) ([]domain.Application, error)
	ListAvailableVenues(ctx context.Context, start, end time.Time) ([]domain.Venue, error)
}

// BookingService is the reservation coordinator: the only component with
// transactional authority over applications, venue holds and inventory.
type BookingService struct {
	repo      BookingRepository
	conflicts *ConflictDetector
	ledger    *inventory.Ledger
	clock     clock.Clock
}

func NewBookingService(repo BookingRepository, clk clock.Clock) *BookingService {
	return &BookingService{
		repo:      repo,
		conflicts: NewConflictDetector(repo),
		ledger:    inventory.NewLedger(clk),
		clock:     clk,
	}
}

type CreateApplicationInput struct {
	RequesterID         string
	RequesterRole       domain.Role
	ActivityName        string
	ActivityDescription string
	VenueID             string
	StartsAt            time.Time
	EndsAt              time.Time
	Items               []domain.LineItem
}

func (in CreateApplicationInput) validate(now time.Time) error {
	if in.RequesterID == "" || in.VenueID == "" {
		return domain.ErrInvalidID
	}
	if !in.RequesterRole.Valid() {
		return domain.ErrInvalidRole
	}
	if strings.TrimSpace(in.ActivityName) == "" {
		return domain.ErrActivityNameRequired
	}
	if !in.StartsAt.Before(in.EndsAt) {
		return domain.ErrInvalidInterval
	}
	if !in.StartsAt.After(now) {
		return domain.ErrStartTimeInPast
	}
	if len(in.Items) == 0 {
		return domain.ErrNoLineItems
	}
	seen := make(map[string]struct{}, len(in.Items))
	for _, item := range in.Items {
		if item.MaterialID == "" {
			return domain.ErrInvalidID
		}
		if item.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if _, dup := seen[item.MaterialID]; dup {
			return domain.ErrDuplicateLineItem
		}
		seen[item.MaterialID] = struct{}{}
	}
	return nil
}

// CreateApplication validates the request against the conflict detector and
// the inventory ledger, then commits venue hold, inventory reservation and
// application creation as one atomic unit. Any failure rolls the whole
// attempt back.
func (s *BookingService) CreateApplication(ctx context.Context, in CreateApplicationInput) (domain.Application, error) {
	now := s.clock.Now()
	if err := in.validate(now); err != nil {
		return domain.Application{}, err
	}

	var result domain.Application
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		venue, err := s.repo.GetVenueForUpdate(txCtx, in.VenueID)
		if err != nil {
			return err
		}
		if !venue.IsAvailable() {
			return domain.ErrVenueUnavailable
		}

		if err := s.conflicts.Check(txCtx, in.VenueID, in.StartsAt, in.EndsAt, ""); err != nil {
			return err
		}

		materials, err := s.lockMaterials(txCtx, in.Items)
		if err != nil {
			return err
		}
		for _, item := range in.Items {
			if err := s.ledger.Reserve(materials[item.MaterialID], item.Quantity); err != nil {
				return err
			}
		}
		for _, m := range materials {
			if err := s.repo.SaveMaterialQuantity(txCtx, *m); err != nil {
				return err
			}
		}

		application := domain.Application{
			ID:                  newID(),
			RequesterID:         in.RequesterID,
			ActivityName:        strings.TrimSpace(in.ActivityName),
			ActivityDescription: in.ActivityDescription,
			VenueID:             in.VenueID,
			StartsAt:            in.StartsAt,
			EndsAt:              in.EndsAt,
			Items:               in.Items,
			Status:              workflow.InitialStatus(in.RequesterRole),
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.repo.CreateApplication(txCtx, application); err != nil {
			return err
		}

		result = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}
	return result, nil
}

type TransitionInput struct {
	ApplicationID string
	ActorID       string
	ActorRole     domain.Role
	Action        workflow.Action
	Reason        string
}

// Transition drives one approval-workflow step. The application row is
// locked first so racing transitions serialize; the loser sees the new
// status and fails the workflow precondition.
func (s *BookingService) Transition(ctx context.Context, in TransitionInput) (domain.Application, error) {
	if in.ApplicationID == "" || in.ActorID == "" {
		return domain.Application{}, domain.ErrInvalidID
	}
	reason := strings.TrimSpace(in.Reason)
	if in.Action == workflow.ActionReject && reason == "" {
		return domain.Application{}, domain.ErrReasonRequired
	}

	var result domain.Application
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		application, err := s.repo.GetApplicationForUpdate(txCtx, in.ApplicationID)
		if err != nil {
			return err
		}

		rule, err := workflow.Step(application, in.ActorID, in.ActorRole, in.Action)
		if err != nil {
			return err
		}

		// The final admin approval re-checks venue and material state so a
		// booking granted long after submission still reflects reality.
		if in.Action == workflow.ActionApprove && rule.Next == domain.StatusApproved {
			if err := s.recheckResources(txCtx, application); err != nil {
				return err
			}
		}

		if rule.Effect == workflow.EffectRelease {
			materials, err := s.lockMaterials(txCtx, application.Items)
			if err != nil {
				return err
			}
			for _, item := range application.Items {
				s.ledger.Release(materials[item.MaterialID], item.Quantity)
			}
			for _, m := range materials {
				if err := s.repo.SaveMaterialQuantity(txCtx, *m); err != nil {
					return err
				}
			}
		}

		now := s.clock.Now()
		application.Status = rule.Next
		application.UpdatedAt = now
		switch in.Action {
		case workflow.ActionApprove:
			application.ReviewerID = &in.ActorID
			application.ReviewedAt = &now
		case workflow.ActionReject:
			application.ReviewerID = &in.ActorID
			application.ReviewedAt = &now
			application.RejectionReason = &reason
		}

		if err := s.repo.SaveApplicationStatus(txCtx, application); err != nil {
			return err
		}
		result = application
		return nil
	})
	if err != nil {
		return domain.Application{}, err
	}
	return result, nil
}

func (s *BookingService) Approve(ctx context.Context, applicationID, actorID string, role domain.Role) (domain.Application, error) {
	return s.Transition(ctx, TransitionInput{
		ApplicationID: applicationID,
		ActorID:       actorID,
		ActorRole:     role,
		Action:        workflow.ActionApprove,
	})
}

func (s *BookingService) Reject(ctx context.Context, applicationID, actorID string, role domain.Role, reason string) (domain.Application, error) {
	return s.Transition(ctx, TransitionInput{
		ApplicationID: applicationID,
		ActorID:       actorID,
		ActorRole:     role,
		Action:        workflow.ActionReject,
		Reason:        reason,
	})
}

func (s *BookingService) Cancel(ctx context.Context, applicationID, actorID string, role domain.Role) (domain.Application, error) {
	return s.Transition(ctx, TransitionInput{
		ApplicationID: applicationID,
		ActorID:       actorID,
		ActorRole:     role,
		Action:        workflow.ActionCancel,
	})
}

func (s *BookingService) GetApplication(ctx context.Context, id string) (domain.Application, error) {
	if id == "" {
		return domain.Application{}, domain.ErrInvalidID
	}
	return s.repo.GetApplication(ctx, id)
}

func (s *BookingService) ListApplicationsByRequester(ctx context.Context, requesterID string, status *domain.ApplicationStatus) ([]domain.Application, error) {
	if requesterID == "" {
		return nil, domain.ErrInvalidID
	}
	return s.repo.ListApplicationsByRequester(ctx, requesterID, status)
}

// ListPendingForRole returns the review queue for the actor's tier:
// reviewers see pending_reviewer, admins see pending_admin.
func (s *BookingService) ListPendingForRole(ctx context.Context, role domain.Role) ([]domain.Application, error) {
	switch role {
	case domain.RoleReviewer:
		return s.repo.ListApplicationsByStatus(ctx, domain.StatusPendingReviewer)
	case domain.RoleAdmin:
		return s.repo.ListApplicationsByStatus(ctx, domain.StatusPendingAdmin)
	}
	return nil, domain.ErrPermissionDenied
}

// QueryAvailableVenues lists venues that are available-flagged and free of
// active bookings over [start, end).
func (s *BookingService) QueryAvailableVenues(ctx context.Context, start, end time.Time) ([]domain.Venue, error) {
	if !start.Before(end) {
		return nil, domain.ErrInvalidInterval
	}
	return s.repo.ListAvailableVenues(ctx, start, end)
}

// lockMaterials locks the rows for every line item's material in ascending
// id order, so concurrent multi-material creations cannot deadlock.
func (s *BookingService) lockMaterials(ctx context.Context, items []domain.LineItem) (map[string]*domain.Material, error) {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MaterialID)
	}
	sort.Strings(ids)

	materials, err := s.repo.GetMaterialsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Material, len(materials))
	for i := range materials {
		byID[materials[i].ID] = &materials[i]
	}
	for _, item := range items {
		if _, ok := byID[item.MaterialID]; !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, item.MaterialID)
		}
	}
	return byID, nil
}

func (s *BookingService) recheckResources(ctx context.Context, application domain.Application) error {
	venue, err := s.repo.GetVenueForUpdate(ctx, application.VenueID)
	if err != nil {
		return err
	}
	if !venue.IsAvailable() {
		return domain.ErrVenueUnavailable
	}

	if err := s.conflicts.Check(ctx, application.VenueID, application.StartsAt, application.EndsAt, application.ID); err != nil {
		return err
	}

	materials, err := s.lockMaterials(ctx, application.Items)
	if err != nil {
		return err
	}
	for _, item := range application.Items {
		if !materials[item.MaterialID].IsAvailable() {
			return fmt.Errorf("%w: %s", domain.ErrMaterialUnavailable, item.MaterialID)
		}
	}
	return nil
}
