package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/domain/shared"
	"github.com/revenue-collection-core/internal/settlement"
)

// InvoiceHandler handles HTTP requests for invoice operations
type InvoiceHandler struct {
	invoiceService *settlement.InvoiceService
	logger         *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(logger *slog.Logger, invoiceService *settlement.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// Create issues a payable invoice at the gateway
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	createReq := settlement.CreateInvoiceRequest{
		Type:    shared.InvoiceType(req.Type),
		Amount:  req.Amount,
		OwnerID: ownerID,
	}
	if req.VehicleID != "" {
		vehicleID, err := uuid.Parse(req.VehicleID)
		if err != nil {
			RespondBadRequest(c, "Invalid vehicle ID")
			return
		}
		createReq.VehicleID = &vehicleID
	}
	if req.DriverID != "" {
		driverID, err := uuid.Parse(req.DriverID)
		if err != nil {
			RespondBadRequest(c, "Invalid driver ID")
			return
		}
		createReq.DriverID = &driverID
	}

	inv, created, err := h.invoiceService.Create(c.Request.Context(), createReq)
	if err != nil {
		h.logger.Error("Failed to create invoice", "type", req.Type, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapInvoiceToResponse(inv, created.PaymentURL))
}

// Get returns an invoice by reference
func (h *InvoiceHandler) Get(c *gin.Context) {
	inv, err := h.invoiceService.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, mapInvoiceToResponse(inv, ""))
}

// Cancel voids a pending invoice
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	reference := c.Param("reference")
	if err := h.invoiceService.Cancel(c.Request.Context(), reference); err != nil {
		h.logger.Error("Failed to cancel invoice", "reference", reference, "error", err)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"reference": reference, "status": string(shared.InvoiceStatusCancelled)})
}
