package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/internal/domain/landcover"
	apperrors "github.com/caustin-usgs/lcmap-gaia/pkg/errors"
)

// ProductService is the chip generation surface exposed over HTTP.
type ProductService interface {
	Generate(ctx context.Context, req chip.Request) (chip.Result, error)
	Describe(ctx context.Context, id uuid.UUID) (chip.Run, error)
	Product(ctx context.Context, cx, cy int64, date string) ([]landcover.Product, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	products ProductService
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(products ProductService, logger *slog.Logger) *Handler {
	return &Handler{
		products: products,
		logger:   logger.With("component", "http.handler"),
	}
}

// GenerateProducts runs a full chip generation and returns the persisted outputs.
func (h *Handler) GenerateProducts(c *gin.Context) {
	var req chip.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.products.Generate(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "generation_failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun returns the ledger entry of a generation run.
func (h *Handler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "run id must be a uuid", err))
		return
	}
	run, err := h.products.Describe(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err, "run_lookup_failed"))
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetProduct returns the stored products of one chip date.
func (h *Handler) GetProduct(c *gin.Context) {
	cx, errX := strconv.ParseInt(c.Param("cx"), 10, 64)
	cy, errY := strconv.ParseInt(c.Param("cy"), 10, 64)
	if errX != nil || errY != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "cx and cy must be integers", nil))
		return
	}
	products, err := h.products.Product(c.Request.Context(), cx, cy, c.Param("date"))
	if err != nil {
		abortWithError(c, domainError(err, "product_lookup_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"cx": cx, "cy": cy, "date": c.Param("date"), "products": products})
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// domainError maps application error codes onto HTTP statuses.
func domainError(err error, fallback string) *HTTPError {
	status := http.StatusInternalServerError
	code := fallback
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status, code = http.StatusBadRequest, "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status, code = http.StatusNotFound, "not_found"
	case apperrors.IsCode(err, landcover.CodeDataGeneration):
		code = landcover.CodeDataGeneration
	case apperrors.IsCode(err, "storage_error"):
		status, code = http.StatusBadGateway, "storage_error"
	}
	httpErr := NewHTTPError(status, code, errMessage(err), err)
	httpErr.Details = apperrors.FieldsOf(err)
	return httpErr
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
