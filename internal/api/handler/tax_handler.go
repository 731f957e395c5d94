package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/api/middleware"
	"github.com/revenue-collection-core/internal/settlement"
)

// TaxHandler handles HTTP requests for synchronous tax payments
type TaxHandler struct {
	taxService *settlement.TaxService
	logger     *slog.Logger
}

// NewTaxHandler creates a new tax payment handler
func NewTaxHandler(logger *slog.Logger, taxService *settlement.TaxService) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
		logger:     logger,
	}
}

// Pay settles a tax payment from the collector's deposit wallet
func (h *TaxHandler) Pay(c *gin.Context) {
	var req PayTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor := middleware.GetActor(c)
	if actor == "" {
		RespondBadRequest(c, "X-Actor-ID header is required")
		return
	}

	collectorID, err := uuid.Parse(req.CollectorID)
	if err != nil {
		RespondBadRequest(c, "Invalid collector ID")
		return
	}
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		RespondBadRequest(c, "Invalid vehicle ID")
		return
	}

	rec, err := h.taxService.PayTax(c.Request.Context(), settlement.PayTaxRequest{
		CollectorID: collectorID,
		VehicleID:   vehicleID,
		Units:       req.Units,
		Actor:       actor,
	})
	if err != nil {
		h.logger.Error("Failed to settle tax payment",
			"collector_id", req.CollectorID,
			"vehicle_id", req.VehicleID,
			"error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapReceiptToResponse(rec))
}
