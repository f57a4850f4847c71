package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agrotrack/livestock_tracker/internal/middleware"
	"github.com/agrotrack/livestock_tracker/internal/models"
)

type Deps struct {
	Auth    *AuthHTTP
	Users   *UserHTTP
	Reports *ReportHTTP
	AuthMw  *middleware.Auth
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "healthy", "service": "livestock-tracker"})
	})

	e.POST("/login", d.Auth.Login)

	private := e.Group("", d.AuthMw.RequireAuth)
	private.POST("/logout", d.Auth.Logout)
	private.POST("/change-password", d.Auth.ChangePassword)
	private.GET("/verify-token", d.Auth.VerifyToken)

	users := private.Group("/users")
	users.GET("/me", d.Users.Me)
	users.PUT("/:id", d.Users.Update)
	admin := users.Group("", d.AuthMw.RequireRole(models.RoleAdmin))
	admin.POST("", d.Users.Create)
	admin.GET("", d.Users.List)
	admin.GET("/:id", d.Users.Get)
	admin.DELETE("/:id", d.Users.Delete)
	admin.PATCH("/:id/activate", d.Users.Activate)
	admin.PATCH("/:id/deactivate", d.Users.Deactivate)

	shipments := private.Group("/shipments")
	shipments.GET("", d.Reports.ListShipments)
	shipments.GET("/search", d.Reports.SearchShipments)
	shipments.POST("", d.Reports.RecordShipment, d.AuthMw.RequireRole(models.RoleSupervisor))

	private.GET("/reports/summary", d.Reports.Summary)
}
