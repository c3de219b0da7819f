package audit

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/auth"
	"github.com/medledger/medledger/internal/platform/ledger"
	"github.com/medledger/medledger/pkg/ethaddr"
	"github.com/medledger/medledger/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/audit", h.Append)
	api.GET("/audit", h.Query)
}

type appendRequest struct {
	Patient string `json:"patient"`
	Doctor  string `json:"doctor"`
	Details string `json:"details"`
}

// Append writes an entry directly, outside any domain operation. The
// caller must be the auditor or one of the named parties.
func (h *Handler) Append(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req appendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if caller.Role != auth.RoleAuditor &&
		!sameAddress(caller.Address, req.Patient) &&
		!sameAddress(caller.Address, req.Doctor) {
		return echo.NewHTTPError(http.StatusForbidden, "audit entries may only be appended by a named party or the auditor")
	}

	if err := h.svc.Append(c.Request().Context(), req.Patient, req.Doctor, req.Details); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusCreated)
}

// Query serves both shapes of read. With patient and doctor query params it
// returns the pair's log and is open to the pair and the auditor; without
// params it returns the paginated full log, auditor only.
func (h *Handler) Query(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	patient := c.QueryParam("patient")
	doctor := c.QueryParam("doctor")
	if patient == "" && doctor == "" {
		return h.queryAll(c, caller)
	}
	if patient == "" || doctor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient and doctor query parameters are both required")
	}
	if caller.Role != auth.RoleAuditor &&
		!sameAddress(caller.Address, patient) &&
		!sameAddress(caller.Address, doctor) {
		return echo.NewHTTPError(http.StatusForbidden, "log queries are visible to the named parties and the auditor")
	}

	entries, err := h.svc.Query(c.Request().Context(), patient, doctor)
	if err != nil {
		return httpError(err)
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *Handler) queryAll(c echo.Context, caller auth.Caller) error {
	if caller.Role != auth.RoleAuditor {
		return echo.NewHTTPError(http.StatusForbidden, "the full log is visible to the auditor only")
	}

	params := pagination.FromContext(c)
	entries, total, err := h.svc.QueryAll(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return httpError(err)
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, params.Limit, params.Offset))
}

func sameAddress(a, b string) bool {
	na, errA := ethaddr.Normalize(a)
	nb, errB := ethaddr.Normalize(b)
	return errA == nil && errB == nil && na == nb
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidAddr), errors.Is(err, ErrMissingDetails):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOutcomeUnknown):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
