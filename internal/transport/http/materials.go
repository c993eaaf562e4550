package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mafirs/campus-reserve/internal/app"
	"github.com/mafirs/campus-reserve/internal/domain"
)

// MaterialCatalog manages material records and their stock ceiling.
type MaterialCatalog interface {
	CreateMaterial(ctx context.Context, in app.CreateMaterialInput) (domain.Material, error)
	UpdateMaterial(ctx context.Context, in app.UpdateMaterialInput) (domain.Material, error)
	SetMaterialStatus(ctx context.Context, id string, status domain.MaterialStatus) (domain.Material, error)
	AdjustTotalQuantity(ctx context.Context, id string, newTotal int) (domain.Material, error)
	GetMaterial(ctx context.Context, id string) (domain.Material, error)
	ListMaterials(ctx context.Context) ([]domain.Material, error)
}

func HandleCreateMaterial(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req materialPayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		material, err := svc.CreateMaterial(r.Context(), app.CreateMaterialInput{
			Name:          req.Name,
			Category:      req.Category,
			TotalQuantity: req.TotalQuantity,
			Unit:          req.Unit,
			Description:   req.Description,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMaterialResponse(material))
	}
}

func HandleUpdateMaterial(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req materialPayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		material, err := svc.UpdateMaterial(r.Context(), app.UpdateMaterialInput{
			ID:          chi.URLParam(r, "id"),
			Name:        req.Name,
			Category:    req.Category,
			Unit:        req.Unit,
			Description: req.Description,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMaterialResponse(material))
	}
}

func HandleSetMaterialStatus(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusPayload
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		material, err := svc.SetMaterialStatus(r.Context(), chi.URLParam(r, "id"), domain.MaterialStatus(req.Status))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMaterialResponse(material))
	}
}

func HandleAdjustMaterialQuantity(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adjustQuantityRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		material, err := svc.AdjustTotalQuantity(r.Context(), chi.URLParam(r, "id"), req.TotalQuantity)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMaterialResponse(material))
	}
}

func HandleGetMaterial(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		material, err := svc.GetMaterial(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMaterialResponse(material))
	}
}

// HandleListMaterials lists the catalog. With ?requested=N each entry is
// annotated with how well current stock covers that amount.
func HandleListMaterials(svc MaterialCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var requested int
		if raw := r.URL.Query().Get("requested"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, codeInvalidQuantity, "requested must be a positive integer")
				return
			}
			requested = n
		}

		materials, err := svc.ListMaterials(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		out := make([]materialResponse, 0, len(materials))
		for _, m := range materials {
			resp := toMaterialResponse(m)
			if requested > 0 {
				status := string(m.StockStatus(requested))
				resp.StockStatus = &status
			}
			out = append(out, resp)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type materialPayload struct {
	Name          string `json:"name"`
	Category      string `json:"category"`
	TotalQuantity int    `json:"total_quantity"`
	Unit          string `json:"unit"`
	Description   string `json:"description"`
}

type adjustQuantityRequest struct {
	TotalQuantity int `json:"total_quantity"`
}

type materialResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Category          string    `json:"category"`
	TotalQuantity     int       `json:"total_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	Unit              string    `json:"unit"`
	Description       string    `json:"description"`
	Status            string    `json:"status"`
	StockStatus       *string   `json:"stock_status,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toMaterialResponse(m domain.Material) materialResponse {
	return materialResponse{
		ID:                m.ID,
		Name:              m.Name,
		Category:          m.Category,
		TotalQuantity:     m.TotalQuantity,
		AvailableQuantity: m.AvailableQuantity,
		Unit:              m.Unit,
		Description:       m.Description,
		Status:            string(m.Status),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
