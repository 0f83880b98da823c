package http

import "github.com/recipeshare/recipeshare-backend/internal/verification"

// Handler exposes the verification mail endpoints.
type Handler struct {
	svc *verification.Service
}

func New(svc *verification.Service) *Handler {
	return &Handler{svc: svc}
}
