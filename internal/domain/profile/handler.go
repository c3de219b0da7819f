package profile

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/auth"
	"github.com/medledger/medledger/internal/platform/ledger"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients/:address/profile", h.Get)
	api.PUT("/patients/:address/profile", h.Update)
}

func (h *Handler) Get(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var p *PatientProfile
	var err error
	if caller.Role == auth.RoleAuditor {
		p, err = h.svc.GetUnchecked(c.Request().Context(), c.Param("address"))
	} else {
		p, err = h.svc.Get(c.Request().Context(), caller.Address, c.Param("address"))
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Update(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var p PatientProfile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := h.svc.Update(c.Request().Context(), caller.Address, c.Param("address"), &p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidAddr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOutcomeUnknown):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
