package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/recipeshare/recipeshare-backend/internal/api/http"
	"github.com/recipeshare/recipeshare-backend/internal/auth"
)

func (h *Handler) resend(c *gin.Context) {
	if err := h.svc.ResendVerification(c.Request.Context(), auth.IdentityFrom(c)); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) welcome(c *gin.Context) {
	if err := h.svc.SendWelcome(c.Request.Context(), auth.IdentityFrom(c)); err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) sync(c *gin.Context) {
	verified, err := h.svc.SyncVerified(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "email_verified": verified})
}
