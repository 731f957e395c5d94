package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/revenue-collection-core/internal/api/middleware"
	"github.com/revenue-collection-core/internal/settlement"
)

// WalletHandler handles HTTP requests for wallet operations
type WalletHandler struct {
	walletService *settlement.WalletService
	ledgerOps     *settlement.LedgerService
	logger        *slog.Logger
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(logger *slog.Logger, walletService *settlement.WalletService, ledgerOps *settlement.LedgerService) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		ledgerOps:     ledgerOps,
		logger:        logger,
	}
}

// Provision creates the deposit and earnings wallet pair for a new owner
func (h *WalletHandler) Provision(c *gin.Context) {
	var req ProvisionWalletsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	wallets, err := h.walletService.Provision(c.Request.Context(), ownerID)
	if err != nil {
		h.logger.Error("Failed to provision wallets", "owner_id", req.OwnerID, "error", err)
		RespondDomainError(c, err)
		return
	}

	responses := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		responses = append(responses, mapWalletToResponse(w))
	}
	RespondCreated(c, responses)
}

// GetByOwner returns all wallets belonging to an owner
func (h *WalletHandler) GetByOwner(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("owner"))
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	wallets, err := h.walletService.Balances(c.Request.Context(), ownerID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	responses := make([]WalletResponse, 0, len(wallets))
	for _, w := range wallets {
		responses = append(responses, mapWalletToResponse(w))
	}
	RespondOK(c, responses)
}

// GetTransactions returns the owner's ledger history, newest first
func (h *WalletHandler) GetTransactions(c *gin.Context) {
	ownerID, err := uuid.Parse(c.Param("owner"))
	if err != nil {
		RespondBadRequest(c, "Invalid owner ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, total, err := h.walletService.History(c.Request.Context(), ownerID, params.Limit, params.Offset)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapEntryToResponse(e))
	}
	RespondWithPaginatedData(c, 200, responses, params.Limit, params.Offset, total)
}

// ResetHeld forces a wallet's held balance to zero. Operational escape hatch;
// requires an acting identity for the audit trail.
func (h *WalletHandler) ResetHeld(c *gin.Context) {
	walletID, err := uuid.Parse(c.Param("owner"))
	if err != nil {
		RespondBadRequest(c, "Invalid wallet ID")
		return
	}

	actor := middleware.GetActor(c)
	if actor == "" {
		RespondBadRequest(c, "X-Actor-ID header is required")
		return
	}

	previous, err := h.ledgerOps.ResetHeld(c.Request.Context(), walletID, actor)
	if err != nil {
		h.logger.Error("Failed to reset held balance", "wallet_id", walletID.String(), "actor", actor, "error", err)
		RespondDomainError(c, err)
		return
	}

	RespondOK(c, ResetHeldResponse{WalletID: walletID.String(), PreviousHeld: previous})
}
