package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/recipeshare/recipeshare-backend/internal/auth/domain"
)

const (
	CtxIdentity    = "identity"
	CtxFirebaseUID = "firebase_uid"
)

// SetIdentity stores the verified caller on the Gin context.
func SetIdentity(c *gin.Context, id *domain.Identity) {
	c.Set(CtxIdentity, id)
	c.Set(CtxFirebaseUID, id.UID)
}

// IdentityFrom returns the verified caller, or nil when the request carried none.
func IdentityFrom(c *gin.Context) *domain.Identity {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}
