package permission

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/auth"
	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/pkg/ethaddr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:address/grants", h.Grant)
	api.GET("/patients/:address/grants", h.ListGrantedDoctors)
	api.GET("/doctors/:address/grants", h.ListGrantingPatients)
}

type grantRequest struct {
	Doctor string `json:"doctor"`
}

func (h *Handler) Grant(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req grantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	edge, err := h.svc.Grant(c.Request().Context(), caller.Address, c.Param("address"), req.Doctor)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, edge)
}

func (h *Handler) ListGrantedDoctors(c echo.Context) error {
	if err := h.authorizeSubject(c, c.Param("address")); err != nil {
		return err
	}
	edges, err := h.svc.ListGrantedDoctors(c.Request().Context(), c.Param("address"))
	if err != nil {
		return httpError(err)
	}
	if edges == nil {
		edges = []*Edge{}
	}
	return c.JSON(http.StatusOK, edges)
}

func (h *Handler) ListGrantingPatients(c echo.Context) error {
	if err := h.authorizeSubject(c, c.Param("address")); err != nil {
		return err
	}
	edges, err := h.svc.ListGrantingPatients(c.Request().Context(), c.Param("address"))
	if err != nil {
		return httpError(err)
	}
	if edges == nil {
		edges = []*Edge{}
	}
	return c.JSON(http.StatusOK, edges)
}

// authorizeSubject allows the account itself and the auditor to read a
// grant listing.
func (h *Handler) authorizeSubject(c echo.Context, subject string) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	if caller.Role == auth.RoleAuditor {
		return nil
	}
	if !sameAddress(caller.Address, subject) {
		return echo.NewHTTPError(http.StatusForbidden, "grant listings are visible to the account itself and the auditor")
	}
	return nil
}

func sameAddress(a, b string) bool {
	na, errA := ethaddr.Normalize(a)
	nb, errB := ethaddr.Normalize(b)
	return errA == nil && errB == nil && na == nb
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownUser):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrWrongRole), errors.Is(err, ErrInvalidAddr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotGranter):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ledger.ErrOutcomeUnknown):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
