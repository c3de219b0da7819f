package record

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/auth"
	"github.com/medledger/medledger/internal/platform/blobstore"
	"github.com/medledger/medledger/internal/platform/ledger"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:address/records", h.Add, auth.RequireRole(auth.RoleDoctor))
	api.GET("/patients/:address/records", h.List)
	api.GET("/records/:id/content", h.Content)
}

type addRequest struct {
	FileName   string `json:"file_name"`
	ContentRef string `json:"content_ref"`
}

// Add accepts either a JSON body referencing already-stored content or a
// multipart upload whose bytes go to the blob store first.
func (h *Handler) Add(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	patient := c.Param("address")

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return h.addMultipart(c, caller.Address, patient)
	}

	var req addRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	receipt, err := h.svc.AddRecord(c.Request().Context(), caller.Address, patient, req.FileName, req.ContentRef)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) addMultipart(c echo.Context, doctor, patient string) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form must carry a \"file\" part")
	}
	fileName := c.FormValue("file_name")
	if fileName == "" {
		fileName = fh.Filename
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer src.Close()

	receipt, err := h.svc.UploadRecord(c.Request().Context(), doctor, patient, fileName, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, receipt)
}

func (h *Handler) List(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	patient := c.Param("address")

	if caller.Role != auth.RoleAuditor {
		if err := h.svc.Authorize(c.Request().Context(), caller.Address, patient); err != nil {
			return httpError(err)
		}
	}

	records, err := h.svc.ListRecords(c.Request().Context(), patient, c.QueryParam("doctor"))
	if err != nil {
		return httpError(err)
	}
	if records == nil {
		records = []*FileRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Content(c echo.Context) error {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed record id")
	}

	rec, body, err := h.svc.FetchContent(c.Request().Context(), caller.Address, id)
	if err != nil {
		return httpError(err)
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+rec.FileName+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, body)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidReference), errors.Is(err, ErrInvalidAddr),
		errors.Is(err, ErrMissingFileName), errors.Is(err, blobstore.ErrInvalidRef),
		errors.Is(err, blobstore.ErrTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOutcomeUnknown):
		return echo.NewHTTPError(http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, ledger.ErrUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
