package router

import (
	"github.com/labstack/echo/v4"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/handlers"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/middleware"
)

func SetupPasswordResetRoutes(e *echo.Echo, resetHandler *handlers.PasswordResetHandler) {
	api := e.Group("/api/auth/password-reset", middleware.NoStore())

	api.POST("/request", resetHandler.RequestReset)  // Send a reset link if the email is registered
	api.GET("/validate", resetHandler.ValidateToken) // Check a token before showing the reset form
	api.POST("/submit", resetHandler.SubmitReset)    // Set the new password
}
