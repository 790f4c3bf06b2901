package handlers

import (
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	portssvc "github.com/qfsvault/qfs_vault_app/internal/core/ports/services"
	"github.com/qfsvault/qfs_vault_app/internal/dto"
	"github.com/qfsvault/qfs_vault_app/internal/middleware"
)

// StreamHandler serves the account state stream over Server-Sent Events.
type StreamHandler struct {
	notifier portssvc.ChangeNotifier
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(notifier portssvc.ChangeNotifier) *StreamHandler {
	return &StreamHandler{notifier: notifier}
}

// StreamAccount delivers the current account state immediately, then a fresh
// snapshot after every committed change, until the client disconnects.
func (h *StreamHandler) StreamAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	sub, err := h.notifier.Subscribe(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Cancel()

	logger.Info("Account stream opened", slog.String("account_id", accountID))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snap, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("state", dto.ToAccountStateResponse(snap))
			return true
		}
	})

	logger.Info("Account stream closed", slog.String("account_id", accountID))
}
