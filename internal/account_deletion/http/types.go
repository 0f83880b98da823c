package http

import "github.com/recipeshare/recipeshare-backend/internal/account_deletion/service"

// Handler bundles the dependencies for account deletion endpoints.
type Handler struct {
	cleanup *service.CleanupService
}

func New(cleanup *service.CleanupService) *Handler {
	return &Handler{cleanup: cleanup}
}
