package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/api/middleware"
	"github.com/revenue-collection-core/internal/paygate"
	"github.com/revenue-collection-core/internal/settlement"
)

// WithdrawalHandler handles HTTP requests for the withdrawal lifecycle
type WithdrawalHandler struct {
	withdrawalService *settlement.WithdrawalService
	logger            *slog.Logger
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(logger *slog.Logger, withdrawalService *settlement.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		logger:            logger,
	}
}

// Request places a hold on the earnings wallet and issues an OTP challenge
func (h *WithdrawalHandler) Request(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor := middleware.GetActor(c)
	if actor == "" {
		RespondBadRequest(c, "X-Actor-ID header is required")
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	w, err := h.withdrawalService.Request(c.Request.Context(), settlement.WithdrawalRequest{
		OwnerID: ownerID,
		Amount:  req.Amount,
		Destination: paygate.BankDetails{
			AccountNumber: req.AccountNumber,
			BankCode:      req.BankCode,
			AccountName:   req.AccountName,
		},
		Actor: actor,
	})
	if err != nil {
		h.logger.Error("Failed to request withdrawal", "owner_id", req.OwnerID, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondCreated(c, mapWithdrawalToResponse(w))
}

// Authorize consumes the OTP and initiates the gateway transfer
func (h *WithdrawalHandler) Authorize(c *gin.Context) {
	var req AuthorizeWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actor := middleware.GetActor(c)
	if actor == "" {
		RespondBadRequest(c, "X-Actor-ID header is required")
		return
	}

	w, err := h.withdrawalService.Authorize(c.Request.Context(), req.Reference, req.Code, actor)
	if err != nil {
		h.logger.Error("Failed to authorize withdrawal", "reference", req.Reference, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, mapWithdrawalToResponse(w))
}
