package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	deletionhttp "github.com/recipeshare/recipeshare-backend/internal/account_deletion/http"
	httpapi "github.com/recipeshare/recipeshare-backend/internal/api/http"
	apimw "github.com/recipeshare/recipeshare-backend/internal/api/http/middleware"
	"github.com/recipeshare/recipeshare-backend/internal/auth/middleware"
	verificationhttp "github.com/recipeshare/recipeshare-backend/internal/verification/http"
)

const ServiceName = "recipeshare-account-api"

// corsAllowHeaders lists the X-User-* headers only when DevIdentity is mounted.
func corsAllowHeaders(devIdentity bool) []string {
	headers := []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"}
	if devIdentity {
		headers = append(headers, middleware.DevIdentityHeaders...)
	}
	return headers
}

func BuildRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(apimw.RequestIDMiddleware(app.Log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     app.Config.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     corsAllowHeaders(app.Verifier == nil),
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           5 * time.Minute,
	}))

	var db, rdb httpapi.Pinger
	if app.DB != nil {
		db = app.DB
	}
	if app.Redis != nil {
		rdb = httpapi.PingFunc(func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() })
	}
	httpapi.NewHealthHandler(ServiceName, app.Config.App.Version, app.Config.App.DocumentStore, db, rdb).RegisterRoutes(r)
	httpapi.RegisterMetrics(r, app.Registry)

	api := r.Group("/api/v1")
	if app.Verifier != nil {
		api.Use(middleware.FirebaseAuthMiddleware(app.Verifier))
	} else {
		api.Use(middleware.DevIdentity())
	}

	deletion := deletionhttp.New(app.Cleanup)
	account := api.Group("/account")
	deletion.Register(account)
	verificationhttp.New(app.Verification).Register(account)

	deletion.RegisterAdmin(api.Group("/admin/users"))

	return r
}
