package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/recipeshare/recipeshare-backend/internal/account_deletion/domain"
	httpapi "github.com/recipeshare/recipeshare-backend/internal/api/http"
	"github.com/recipeshare/recipeshare-backend/internal/auth"
)

type deleteResponse struct {
	Success bool `json:"success"`
	*domain.Result
}

// deleteOwnAccount takes no body; the target is always the verified caller.
func (h *Handler) deleteOwnAccount(c *gin.Context) {
	res, err := h.cleanup.DeleteOwnAccount(c.Request.Context(), auth.IdentityFrom(c))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{Success: true, Result: res})
}

func (h *Handler) deleteUser(c *gin.Context) {
	res, err := h.cleanup.DeleteUserAsAdmin(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"))
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, deleteResponse{Success: true, Result: res})
}

func (h *Handler) deletionHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.cleanup.DeletionHistory(c.Request.Context(), auth.IdentityFrom(c), c.Param("uid"), limit)
	if err != nil {
		httpapi.WriteError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "deletions": entries})
}
