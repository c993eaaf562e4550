package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mafirs/campus-reserve/internal/app"
	"github.com/mafirs/campus-reserve/internal/domain"
)

// ApplicationCreator is the minimal interface needed to submit a reservation.
type ApplicationCreator interface {
	CreateApplication(ctx context.Context, in app.CreateApplicationInput) (domain.Application, error)
}

// HandleCreateApplication returns an HTTP handler for submitting reservation
// applications.
func HandleCreateApplication(svc ApplicationCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createApplicationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		actor := actorFromContext(r.Context())
		items := make([]domain.LineItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, domain.LineItem{MaterialID: item.MaterialID, Quantity: item.Quantity})
		}

		application, err := svc.CreateApplication(r.Context(), app.CreateApplicationInput{
			RequesterID:         actor.ID,
			RequesterRole:       actor.Role,
			ActivityName:        req.ActivityName,
			ActivityDescription: req.ActivityDescription,
			VenueID:             req.VenueID,
			StartsAt:            req.StartsAt,
			EndsAt:              req.EndsAt,
			Items:               items,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toApplicationResponse(application))
	}
}

// ApplicationReader reads applications for display.
type ApplicationReader interface {
	GetApplication(ctx context.Context, id string) (domain.Application, error)
}

// HandleGetApplication returns a single application. Members only see their
// own; reviewers and admins see everything.
func HandleGetApplication(svc ApplicationReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		application, err := svc.GetApplication(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		actor := actorFromContext(r.Context())
		if !actor.Role.Privileged() && application.RequesterID != actor.ID {
			writeError(w, http.StatusForbidden, codePermissionDenied, "permission denied")
			return
		}

		writeJSON(w, http.StatusOK, toApplicationResponse(application))
	}
}

// ApplicationLister lists a requester's own applications.
type ApplicationLister interface {
	ListApplicationsByRequester(ctx context.Context, requesterID string, status *domain.ApplicationStatus) ([]domain.Application, error)
}

// HandleListApplications lists the caller's applications, optionally
// filtered by ?status=.
func HandleListApplications(svc ApplicationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *domain.ApplicationStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			s := domain.ApplicationStatus(raw)
			switch s {
			case domain.StatusPendingReviewer, domain.StatusPendingAdmin,
				domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled:
				status = &s
			default:
				writeError(w, http.StatusBadRequest, codeInvalidStatus, "unknown status")
				return
			}
		}

		actor := actorFromContext(r.Context())
		applications, err := svc.ListApplicationsByRequester(r.Context(), actor.ID, status)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toApplicationListResponse(applications))
	}
}

// ApplicationReviewer drives approval-workflow transitions.
type ApplicationReviewer interface {
	Approve(ctx context.Context, applicationID, actorID string, role domain.Role) (domain.Application, error)
	Reject(ctx context.Context, applicationID, actorID string, role domain.Role, reason string) (domain.Application, error)
	Cancel(ctx context.Context, applicationID, actorID string, role domain.Role) (domain.Application, error)
}

// HandleApproveApplication advances an application one approval tier.
func HandleApproveApplication(svc ApplicationReviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r.Context())
		application, err := svc.Approve(r.Context(), chi.URLParam(r, "id"), actor.ID, actor.Role)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(application))
	}
}

// HandleRejectApplication rejects an application with a mandatory reason.
func HandleRejectApplication(svc ApplicationReviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rejectApplicationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		actor := actorFromContext(r.Context())
		application, err := svc.Reject(r.Context(), chi.URLParam(r, "id"), actor.ID, actor.Role, req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(application))
	}
}

// HandleCancelApplication cancels the caller's own application.
func HandleCancelApplication(svc ApplicationReviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r.Context())
		application, err := svc.Cancel(r.Context(), chi.URLParam(r, "id"), actor.ID, actor.Role)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationResponse(application))
	}
}

// PendingLister returns the review queue for the caller's tier.
type PendingLister interface {
	ListPendingForRole(ctx context.Context, role domain.Role) ([]domain.Application, error)
}

// HandlePendingApprovals lists applications awaiting the caller's tier.
func HandlePendingApprovals(svc PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r.Context())
		applications, err := svc.ListPendingForRole(r.Context(), actor.Role)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toApplicationListResponse(applications))
	}
}

type createApplicationRequest struct {
	ActivityName        string            `json:"activity_name"`
	ActivityDescription string            `json:"activity_description"`
	VenueID             string            `json:"venue_id"`
	StartsAt            time.Time         `json:"starts_at"`
	EndsAt              time.Time         `json:"ends_at"`
	Items               []lineItemPayload `json:"items"`
}

type rejectApplicationRequest struct {
	Reason string `json:"reason"`
}

type lineItemPayload struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

type applicationResponse struct {
	ID                  string            `json:"id"`
	RequesterID         string            `json:"requester_id"`
	ActivityName        string            `json:"activity_name"`
	ActivityDescription string            `json:"activity_description"`
	VenueID             string            `json:"venue_id"`
	StartsAt            time.Time         `json:"starts_at"`
	EndsAt              time.Time         `json:"ends_at"`
	Items               []lineItemPayload `json:"items"`
	Status              string            `json:"status"`
	ReviewerID          *string           `json:"reviewer_id,omitempty"`
	RejectionReason     *string           `json:"rejection_reason,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	ReviewedAt          *time.Time        `json:"reviewed_at,omitempty"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func toApplicationResponse(a domain.Application) applicationResponse {
	items := make([]lineItemPayload, 0, len(a.Items))
	for _, item := range a.Items {
		items = append(items, lineItemPayload{MaterialID: item.MaterialID, Quantity: item.Quantity})
	}
	return applicationResponse{
		ID:                  a.ID,
		RequesterID:         a.RequesterID,
		ActivityName:        a.ActivityName,
		ActivityDescription: a.ActivityDescription,
		VenueID:             a.VenueID,
		StartsAt:            a.StartsAt,
		EndsAt:              a.EndsAt,
		Items:               items,
		Status:              string(a.Status),
		ReviewerID:          a.ReviewerID,
		RejectionReason:     a.RejectionReason,
		CreatedAt:           a.CreatedAt,
		ReviewedAt:          a.ReviewedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func toApplicationListResponse(apps []domain.Application) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, toApplicationResponse(a))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
