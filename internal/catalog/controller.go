package catalog

import (
	"net/http"

	"go.uber.org/zap"

	apperrors "comanda/internal/errors"
	"comanda/internal/httpx"
)

const maxSearchIDs = 100

type Controller struct {
	useCase SearchUseCase
	rs      *httpx.Responder
	logger  *zap.Logger
}

func NewController(useCase SearchUseCase, logger *zap.Logger) *Controller {
	return &Controller{
		useCase: useCase,
		rs:      httpx.NewResponder(logger),
		logger:  logger,
	}
}

func (c *Controller) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()

	var req SearchProductsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	if err := c.validateSearchRequest(req); err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	resp, err := c.useCase.SearchProducts(r.Context(), req)
	if err != nil {
		c.rs.Error(w, traceID, err)
		return
	}

	c.rs.JSON(w, http.StatusOK, resp)
}

func (c *Controller) validateSearchRequest(req SearchProductsRequest) error {
	if len(req.ProductIDs) == 0 {
		return apperrors.NewValidationError("productIds is required", apperrors.ValidationDetail{
			Field:   "productIds",
			Message: "productIds must not be empty",
		})
	}

	if len(req.ProductIDs) > maxSearchIDs {
		msg := "productIds exceeds maximum of 100"
		return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
			Field:   "productIds",
			Message: msg,
		})
	}

	for _, id := range req.ProductIDs {
		if id == 0 {
			msg := "each productId must be a positive integer"
			return apperrors.NewValidationError(msg, apperrors.ValidationDetail{
				Field:   "productIds",
				Message: msg,
			})
		}
	}

	return nil
}
