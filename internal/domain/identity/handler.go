package identity

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
	svc            *Service
	issuer         *auth.TokenIssuer
	auditorAddress string
}

// NewHandler creates the identity handler. issuer may be nil when the
// server runs in development auth mode; the login route is only registered
// in standalone mode.
func NewHandler(svc *Service, issuer *auth.TokenIssuer, auditorAddress string) *Handler {
	return &Handler{svc: svc, issuer: issuer, auditorAddress: auditorAddress}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/users", h.Register, auth.RequireRole(auth.RoleAuditor))
	api.GET("/users", h.ListByRole)
	api.GET("/users/:address", h.Get)
}

// RegisterAuthRoutes mounts the login endpoint on an unauthenticated group.
func (h *Handler) RegisterAuthRoutes(public *echo.Group) {
	public.POST("/auth/login", h.Login)
}

func (h *Handler) Register(c echo.Context) error {
	var u User
	if err := c.Bind(&u); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	receipt, err := h.svc.Register(c.Request().Context(), &u)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) Get(c echo.Context) error {
	u, err := h.svc.Get(c.Request().Context(), c.Param("address"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) ListByRole(c echo.Context) error {
	role, err := ParseRole(c.QueryParam("role"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "role query parameter must be patient or doctor")
	}

	pg := pagination.FromContext(c)
	users, total, err := h.svc.ListByRole(c.Request().Context(), role, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(users, total, pg.Limit, pg.Offset))
}

type loginRequest struct {
	Address string `json:"address"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// Login exchanges an account address for a session token. The auditor
// account is configured out-of-band; everyone else must be registered.
// There is no password in this trust model: possession of the address is
// asserted by the caller.
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	addr, err := ethaddr.Normalize(req.Address)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed account address")
	}

	role := auth.Role("")
	if auditor, err := ethaddr.Normalize(h.auditorAddress); err == nil && addr == auditor {
		role = auth.RoleAuditor
	} else {
		u, err := h.svc.Get(c.Request().Context(), addr)
		if err != nil {
			return httpError(err)
		}
		role = auth.Role(u.Role)
	}

	token, err := h.issuer.Issue(addr, role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "token issuance failed")
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Address: addr, Role: string(role)})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateAddress):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidAddress), errors.Is(err, ErrInvalidRole), errors.Is(err, ErrMissingName):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOutcomeUnknown):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
