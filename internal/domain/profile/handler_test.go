package profile

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

func TestProfilePutThenGet(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	caller := auth.Caller{Address: patientAddr, Role: auth.RolePatient}

	body := `{"gender":"male","blood_type":"AB-","allergies":["latex"]}`
	rec := doRequest(h, http.MethodPut, "/api/v1/patients/"+patientAddr+"/profile", body, caller)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(h, http.MethodGet, "/api/v1/patients/"+patientAddr+"/profile", "", caller)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var p PatientProfile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.BloodType != "AB-" || len(p.Allergies) != 1 {
		t.Fatalf("profile = %+v", p)
	}
}

func TestProfileGetMissing(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)

	rec := doRequest(h, http.MethodGet, "/api/v1/patients/"+patientAddr+"/profile", "",
		auth.Caller{Address: patientAddr, Role: auth.RolePatient})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestProfileStrangerForbidden(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	if _, err := svc.Update(context.Background(), patientAddr, patientAddr, &PatientProfile{Notes: "x"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec := doRequest(h, http.MethodGet, "/api/v1/patients/"+patientAddr+"/profile", "",
		auth.Caller{Address: otherAddr, Role: auth.RoleDoctor})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestProfileAuditorMayRead(t *testing.T) {
	svc, _, _ := newTestService()
	h := NewHandler(svc)
	if _, err := svc.Update(context.Background(), patientAddr, patientAddr, &PatientProfile{Notes: "x"}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec := doRequest(h, http.MethodGet, "/api/v1/patients/"+patientAddr+"/profile", "",
		auth.Caller{Address: otherAddr, Role: auth.RoleAuditor})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
