package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mafirs/campus-reserve/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidID             = "invalid_id"
	codeInvalidRole           = "invalid_role"
	codeUnauthenticated       = "unauthenticated"
	codePermissionDenied      = "permission_denied"
	codeActivityNameRequired  = "activity_name_required"
	codeInvalidInterval       = "invalid_interval"
	codeStartTimeInPast       = "start_time_in_past"
	codeNoLineItems           = "no_line_items"
	codeInvalidQuantity       = "invalid_quantity"
	codeDuplicateLineItem     = "duplicate_line_item"
	codeReasonRequired        = "reason_required"
	codeVenueNameRequired     = "venue_name_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeMaterialNameRequired  = "material_name_required"
	codeInvalidStatus         = "invalid_status"
	codeInvalidTotalQuantity  = "invalid_total_quantity"
	codeVenueNotFound         = "venue_not_found"
	codeMaterialNotFound      = "material_not_found"
	codeApplicationNotFound   = "application_not_found"
	codeVenueUnavailable      = "venue_unavailable"
	codeMaterialUnavailable   = "material_unavailable"
	codeSchedulingConflict    = "scheduling_conflict"
	codeInsufficientInventory = "insufficient_inventory"
	codeInvalidTransition     = "invalid_state_transition"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeServiceError maps domain errors onto HTTP statuses and stable codes.
// Validation failures are 400, missing resources 404, permission failures
// 403 and state conflicts 409; anything unrecognized is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, codeInvalidRole, err.Error())
	case errors.Is(err, domain.ErrActivityNameRequired):
		writeError(w, http.StatusBadRequest, codeActivityNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, codeInvalidInterval, err.Error())
	case errors.Is(err, domain.ErrStartTimeInPast):
		writeError(w, http.StatusBadRequest, codeStartTimeInPast, err.Error())
	case errors.Is(err, domain.ErrNoLineItems):
		writeError(w, http.StatusBadRequest, codeNoLineItems, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrDuplicateLineItem):
		writeError(w, http.StatusBadRequest, codeDuplicateLineItem, err.Error())
	case errors.Is(err, domain.ErrReasonRequired):
		writeError(w, http.StatusBadRequest, codeReasonRequired, err.Error())
	case errors.Is(err, domain.ErrVenueNameRequired):
		writeError(w, http.StatusBadRequest, codeVenueNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidCapacity):
		writeError(w, http.StatusBadRequest, codeInvalidCapacity, err.Error())
	case errors.Is(err, domain.ErrMaterialNameRequired):
		writeError(w, http.StatusBadRequest, codeMaterialNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, codeInvalidStatus, err.Error())
	case errors.Is(err, domain.ErrInvalidTotalQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidTotalQuantity, err.Error())
	case errors.Is(err, domain.ErrVenueNotFound):
		writeError(w, http.StatusNotFound, codeVenueNotFound, err.Error())
	case errors.Is(err, domain.ErrMaterialNotFound):
		writeError(w, http.StatusNotFound, codeMaterialNotFound, err.Error())
	case errors.Is(err, domain.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, codeApplicationNotFound, err.Error())
	case errors.Is(err, domain.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, codePermissionDenied, err.Error())
	case errors.Is(err, domain.ErrVenueUnavailable):
		writeError(w, http.StatusConflict, codeVenueUnavailable, err.Error())
	case errors.Is(err, domain.ErrMaterialUnavailable):
		writeError(w, http.StatusConflict, codeMaterialUnavailable, err.Error())
	case errors.Is(err, domain.ErrSchedulingConflict):
		writeError(w, http.StatusConflict, codeSchedulingConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientInventory):
		writeError(w, http.StatusConflict, codeInsufficientInventory, err.Error())
	case errors.Is(err, domain.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, codeInvalidTransition, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
