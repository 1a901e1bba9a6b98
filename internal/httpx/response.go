package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "comanda/internal/errors"
)

type ErrorResponse struct {
	TraceID   string                       `json:"traceId"`
	Status    int                          `json:"status"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	ItemIDs   []uint64                     `json:"itemIds,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

// Responder writes JSON bodies and maps domain errors onto status codes.
type Responder struct {
	logger *zap.Logger
}

func NewResponder(logger *zap.Logger) *Responder {
	return &Responder{logger: logger}
}

func NewTraceID() string {
	return uuid.New().String()
}

func (rs *Responder) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (rs *Responder) Validation(w http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	rs.JSON(w, http.StatusBadRequest, ErrorResponse{
		TraceID:   traceID,
		Status:    http.StatusBadRequest,
		Code:      "VALIDATION_ERROR",
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	})
}

func (rs *Responder) Error(w http.ResponseWriter, traceID string, err error) {
	resp := ErrorResponse{
		TraceID:   traceID,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
	}
	resp.Status, resp.Code = StatusFor(err)

	logger := rs.logger.With(zap.String("traceId", traceID))

	if ve, ok := apperrors.IsValidationError(err); ok {
		resp.Message = ve.Message
		resp.Details = ve.Details
	}
	if npe, ok := apperrors.IsNotPayableError(err); ok {
		resp.ItemIDs = npe.ItemIDs
	}

	switch resp.Status {
	case http.StatusInternalServerError:
		logger.Error("unexpected error", zap.Error(err))
		resp.Message = "an unexpected error occurred"
	case http.StatusServiceUnavailable:
		logger.Error("store failure", zap.Error(err))
		resp.Message = "store unavailable, retry later"
	default:
		logger.Warn("request rejected", zap.String("code", resp.Code), zap.Error(err))
	}

	rs.JSON(w, resp.Status, resp)
}

// StatusFor maps the error taxonomy onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	if _, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}
	if _, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, "NOT_FOUND"
	}
	if _, ok := apperrors.IsInvalidTransitionError(err); ok {
		return http.StatusConflict, "INVALID_TRANSITION"
	}
	if _, ok := apperrors.IsStaleStateError(err); ok {
		return http.StatusConflict, "STALE_STATE"
	}
	if _, ok := apperrors.IsNotPayableError(err); ok {
		return http.StatusUnprocessableEntity, "NOT_PAYABLE"
	}
	if _, ok := apperrors.IsInvalidSplitError(err); ok {
		return http.StatusUnprocessableEntity, "INVALID_SPLIT"
	}
	if _, ok := apperrors.IsAuthorizationError(err); ok {
		return http.StatusForbidden, "FORBIDDEN"
	}
	if _, ok := apperrors.IsStoreError(err); ok {
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}

// PathUint parses a positive integer URL parameter.
func PathUint(raw, field string) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.NewValidationError("invalid "+field, apperrors.ValidationDetail{
			Field:   field,
			Message: field + " must be a positive integer",
		})
	}
	return n, nil
}

// PathTable parses a table number URL parameter.
func PathTable(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, apperrors.NewValidationError("invalid table", apperrors.ValidationDetail{
			Field:   "table",
			Message: "table must be a positive integer",
		})
	}
	return uint(n), nil
}
