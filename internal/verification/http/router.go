package http

import "github.com/gin-gonic/gin"

// Register attaches verification routes to the account group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	v := rg.Group("/verification")
	v.POST("/resend", h.resend)
	v.POST("/welcome", h.welcome)
	v.POST("/sync", h.sync)
}
