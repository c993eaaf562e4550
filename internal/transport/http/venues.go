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

// VenueAvailabilityQuerier finds venues free over a window.
type VenueAvailabilityQuerier interface {
	QueryAvailableVenues(ctx context.Context, start, end time.Time) ([]domain.Venue, error)
}

// HandleAvailableVenues lists venues free of active bookings over
// ?start=&end= (RFC 3339).
func HandleAvailableVenues(svc VenueAvailabilityQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidInterval, "start must be RFC 3339")
			return
		}
		end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidInterval, "end must be RFC 3339")
			return
		}

		venues, err := svc.QueryAvailableVenues(r.Context(), start, end)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueListResponse(venues))
	}
}

// VenueCatalog manages venue records.
type VenueCatalog interface {
	CreateVenue(ctx context.Context, in app.CreateVenueInput) (domain.Venue, error)
	UpdateVenue(ctx context.Context, in app.UpdateVenueInput) (domain.Venue, error)
	SetVenueStatus(ctx context.Context, id string, status domain.VenueStatus) (domain.Venue, error)
	GetVenue(ctx context.Context, id string) (domain.Venue, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)
}

func HandleCreateVenue(svc VenueCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req venuePayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		venue, err := svc.CreateVenue(r.Context(), app.CreateVenueInput{
			Name:        req.Name,
			Location:    req.Location,
			Capacity:    req.Capacity,
			Description: req.Description,
			Equipment:   req.Equipment,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toVenueResponse(venue))
	}
}

func HandleUpdateVenue(svc VenueCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req venuePayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		venue, err := svc.UpdateVenue(r.Context(), app.UpdateVenueInput{
			ID:          chi.URLParam(r, "id"),
			Name:        req.Name,
			Location:    req.Location,
			Capacity:    req.Capacity,
			Description: req.Description,
			Equipment:   req.Equipment,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueResponse(venue))
	}
}

func HandleSetVenueStatus(svc VenueCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusPayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		venue, err := svc.SetVenueStatus(r.Context(), chi.URLParam(r, "id"), domain.VenueStatus(req.Status))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueResponse(venue))
	}
}

func HandleGetVenue(svc VenueCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venue, err := svc.GetVenue(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueResponse(venue))
	}
}

func HandleListVenues(svc VenueCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venues, err := svc.ListVenues(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVenueListResponse(venues))
	}
}

type venuePayload struct {
	Name        string   `json:"name"`
	Location    string   `json:"location"`
	Capacity    int      `json:"capacity"`
	Description string   `json:"description"`
	Equipment   []string `json:"equipment"`
}

type statusPayload struct {
	Status string `json:"status"`
}

type venueResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	Equipment   []string  `json:"equipment"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toVenueResponse(v domain.Venue) venueResponse {
	equipment := v.Equipment
	if equipment == nil {
		equipment = []string{}
	}
	return venueResponse{
		ID:          v.ID,
		Name:        v.Name,
		Location:    v.Location,
		Capacity:    v.Capacity,
		Description: v.Description,
		Equipment:   equipment,
		Status:      string(v.Status),
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func toVenueListResponse(venues []domain.Venue) []venueResponse {
	out := make([]venueResponse, 0, len(venues))
	for _, v := range venues {
		out = append(out, toVenueResponse(v))
	}
	return out
}
