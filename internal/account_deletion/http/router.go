package http

import "github.com/gin-gonic/gin"

// Register attaches the self-service routes to the account group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/delete", h.deleteOwnAccount)
}

// RegisterAdmin attaches the administrator routes to the admin users group.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/:uid/delete", h.deleteUser)
	rg.GET("/:uid/deletions", h.deletionHistory)
}
