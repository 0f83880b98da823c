package http

import (
	"github.com/gin-gonic/gin"

	"github.com/recipeshare/recipeshare-backend/internal/apperrors"
)

// ErrorBody is the callable error envelope returned on every failure.
type ErrorBody struct {
	Status  apperrors.Kind `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// WriteError classifies err and aborts the request with the matching status.
func WriteError(c *gin.Context, err error) {
	appErr := apperrors.Normalize(err)
	meta := apperrors.MetadataFor(appErr.Kind())
	c.AbortWithStatusJSON(meta.HTTPStatus, ErrorResponse{Error: ErrorBody{
		Status:  appErr.Kind(),
		Message: appErr.Message(),
		Details: appErr.Details(),
	}})
}
