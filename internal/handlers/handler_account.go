package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// AccountHandler handles HTTP requests related to accounts.
type AccountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountService portssvc.AccountSvcFacade) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccount provisions a new account with a zero balance.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, err := h.accountService.CreateAccount(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info("Account created via API", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// GetAccount returns the account with its current balance and verification
// status.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// GetDepositAddress returns the deposit address issued for the account and
// asset.
func (h *AccountHandler) GetDepositAddress(c *gin.Context) {
	accountID := c.Param("accountID")
	asset := strings.ToUpper(c.DefaultQuery("asset", "BTC"))

	address, err := h.accountService.DepositAddress(c.Request.Context(), accountID, asset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.DepositAddressResponse{AssetSymbol: asset, Address: address})
}
