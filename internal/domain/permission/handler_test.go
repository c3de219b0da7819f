package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medledger/medledger/internal/platform/auth"
)

func newTestHandler() *Handler {
	svc, _, _ := newTestService()
	return NewHandler(svc)
}

func doRequest(h *Handler, method, path, body string, caller auth.Caller) *httptest.ResponseRecorder {
	e := echo.New()
	api := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth.SetCaller(c, caller)
			return next(c)
		}
	})
	h.RegisterRoutes(api)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGrantEndpoint(t *testing.T) {
	h := newTestHandler()
	caller := auth.Caller{Address: patientAddr, Role: auth.RolePatient}

	rec := doRequest(h, http.MethodPost, "/api/v1/patients/"+patientAddr+"/grants",
		`{"doctor":"`+doctorAddr+`"}`, caller)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var edge Edge
	if err := json.Unmarshal(rec.Body.Bytes(), &edge); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if edge.Patient != patientAddr || edge.Doctor != doctorAddr {
		t.Fatalf("unexpected edge %+v", edge)
	}
}

func TestGrantEndpointRejectsOtherCaller(t *testing.T) {
	h := newTestHandler()
	caller := auth.Caller{Address: otherAddr, Role: auth.RolePatient}

	rec := doRequest(h, http.MethodPost, "/api/v1/patients/"+patientAddr+"/grants",
		`{"doctor":"`+doctorAddr+`"}`, caller)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestGrantEndpointUnknownDoctor(t *testing.T) {
	h := newTestHandler()
	caller := auth.Caller{Address: patientAddr, Role: auth.RolePatient}

	rec := doRequest(h, http.MethodPost, "/api/v1/patients/"+patientAddr+"/grants",
		`{"doctor":"`+otherAddr+`"}`, caller)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListGrantsVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	if _, err := svc.Grant(context.Background(), patientAddr, patientAddr, doctorAddr); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	cases := []struct {
		name   string
		path   string
		caller auth.Caller
		want   int
	}{
		{"patient sees own grants", "/api/v1/patients/" + patientAddr + "/grants",
			auth.Caller{Address: patientAddr, Role: auth.RolePatient}, http.StatusOK},
		{"auditor sees patient grants", "/api/v1/patients/" + patientAddr + "/grants",
			auth.Caller{Address: otherAddr, Role: auth.RoleAuditor}, http.StatusOK},
		{"stranger denied", "/api/v1/patients/" + patientAddr + "/grants",
			auth.Caller{Address: otherAddr, Role: auth.RolePatient}, http.StatusForbidden},
		{"doctor sees own grants", "/api/v1/doctors/" + doctorAddr + "/grants",
			auth.Caller{Address: doctorAddr, Role: auth.RoleDoctor}, http.StatusOK},
		{"other doctor denied", "/api/v1/doctors/" + doctorAddr + "/grants",
			auth.Caller{Address: otherAddr, Role: auth.RoleDoctor}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodGet, tc.path, "", tc.caller)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestListGrantsEmptyIsArray(t *testing.T) {
	h := newTestHandler()
	caller := auth.Caller{Address: patientAddr, Role: auth.RolePatient}

	rec := doRequest(h, http.MethodGet, "/api/v1/patients/"+patientAddr+"/grants", "", caller)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("empty listing = %q, want []", got)
	}
}
