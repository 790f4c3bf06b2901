package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portsrepo "github.com/qfsvault/qfs_vault_app/internal/core/ports/repositories"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// SettlementHandler handles deposit, withdrawal and transaction listing
// requests.
type SettlementHandler struct {
	settlementService portssvc.SettlementSvcFacade
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService portssvc.SettlementSvcFacade) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// Deposit credits the account; the transaction settles immediately.
func (h *SettlementHandler) Deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	txn, err := h.settlementService.Deposit(c.Request.Context(), accountID, req.AmountUSD, req.AssetSymbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// Withdraw debits the account and returns the pending transaction without
// waiting for settlement.
func (h *SettlementHandler) Withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	txn, err := h.settlementService.Withdraw(c.Request.Context(), accountID, req.DestinationAddress, req.AmountUSD, req.AssetSymbol)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.ToTransactionResponse(txn))
}

// ListTransactions returns the account's transaction history, filtered and
// sorted per query parameters.
func (h *SettlementHandler) ListTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid transaction list params", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	filter := portsrepo.TransactionFilter{
		AmountContains: params.Search,
		Sort:           portsrepo.TransactionSort(params.Sort),
	}
	if params.Kind != "" {
		kind := domain.TransactionKind(params.Kind)
		filter.Kind = &kind
	}

	txns, err := h.settlementService.ListTransactions(c.Request.Context(), accountID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: dto.ToTransactionResponses(txns)})
}
