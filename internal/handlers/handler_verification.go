package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qfsvault/qfs_vault_app/internal/core/domain"
	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// VerificationHandler handles identity verification submissions.
type VerificationHandler struct {
	verificationService portssvc.VerificationSvcFacade
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationService portssvc.VerificationSvcFacade) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// SubmitVerification records the identity payload and moves the account to
// SUBMITTED. Resubmission is rejected with 409.
func (h *VerificationHandler) SubmitVerification(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.SubmitVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SubmitVerification", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "All verification fields are required"})
		return
	}

	verification, err := h.verificationService.Submit(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVerificationResponse(verification))
}

// GetVerificationStatus returns the account's verification status, with the
// submission details once a payload has been recorded.
func (h *VerificationHandler) GetVerificationStatus(c *gin.Context) {
	accountID := c.Param("accountID")

	status, err := h.verificationService.GetStatus(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	if status != domain.VerificationSubmitted {
		c.JSON(http.StatusOK, gin.H{"accountID": accountID, "status": status})
		return
	}

	verification, err := h.verificationService.GetVerification(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToVerificationResponse(verification))
}
