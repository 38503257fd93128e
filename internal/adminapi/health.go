package adminapi

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/webserver"
)

func registerHealthRoutes() {
	webserver.PubGET("/health", Health)
	webserver.RootGET("/health", Health)
}

// Health reports whether the database answers within two seconds
func Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := appCtx.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable", nil)
	}
	return ok(c, map[string]string{"status": "ok"})
}
