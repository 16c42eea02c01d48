package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/service"
)

// PasswordResetHandler handles password reset HTTP requests
type PasswordResetHandler struct {
	ResetService service.PasswordResetter
}

// NewPasswordResetHandler creates a new PasswordResetHandler
func NewPasswordResetHandler(resetService service.PasswordResetter) *PasswordResetHandler {
	return &PasswordResetHandler{ResetService: resetService}
}

// RequestReset starts a reset for the given email. The response is the same for every outcome.
func (h *PasswordResetHandler) RequestReset(c echo.Context) error {
	req := new(models.RequestResetRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A valid email is required")
	}

	resp := h.ResetService.RequestReset(c.Request().Context(), c.RealIP(), req.Email)
	return c.JSON(http.StatusOK, resp)
}

// ValidateToken lets a reset page check a token before showing the form.
func (h *PasswordResetHandler) ValidateToken(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}

	return c.JSON(http.StatusOK, h.ResetService.CheckToken(c.Request().Context(), token))
}

// SubmitReset sets a new password using a reset token.
func (h *PasswordResetHandler) SubmitReset(c echo.Context) error {
	req := new(models.SubmitResetRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "A valid token is required")
	}

	res := h.ResetService.Submit(c.Request().Context(), req.Token, req.NewPassword, req.ConfirmPassword)

	switch res.Kind {
	case models.ResultSuccess:
		return c.JSON(http.StatusOK, res)
	case models.ResultPasswordsMismatch, models.ResultPasswordTooShort, models.ResultPasswordTooLong, models.ResultInvalidOrExpired:
		return c.JSON(http.StatusBadRequest, res)
	default:
		log.Error().Str("kind", string(res.Kind)).Str("ip", c.RealIP()).Msg("Password reset submission failed")
		return echo.NewHTTPError(http.StatusInternalServerError, res.Message)
	}
}
