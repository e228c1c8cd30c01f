package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"kesho/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"category":"Transport","amount":"1,250.50","date":"2024-05-02","note":"x"}`, nil},
		{"empty", ``, errMalformedBody},
		{"syntax", `{"amount":`, errMalformedBody},
		{"unknown field", `{"amount":1,"colour":"red"}`, errMalformedBody},
		{"trailing", `{"amount":1}{}`, errMalformedBody},
		{"out of range amount", `{"amount":1e300}`, core.ErrInvalidAmount},
		{"oversized string amount", `{"amount":"99999999999999"}`, core.ErrInvalidAmount},
		{"bad date", `{"amount":3,"date":"2024-13-01"}`, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst transactionRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("DecodeJSON() error = %v", err)
				}
				if dst.Amount.Cents != 125050 || dst.Date.String() != "2024-05-02" {
					t.Fatalf("decoded = %+v", dst)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	big := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	var dst notificationRequest
	err := DecodeJSON(httptest.NewRecorder(), req, &dst)
	if !errors.Is(err, errMalformedBody) {
		t.Fatalf("DecodeJSON() error = %v, want malformed body", err)
	}
}

func TestPathVar(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = mux.SetURLVars(req, map[string]string{"name": "Rent%2FHousing"})
	got, err := PathVar(req, "name")
	if err != nil || got != "Rent/Housing" {
		t.Fatalf("PathVar() = %q, %v", got, err)
	}

	req = mux.SetURLVars(req, map[string]string{"name": "bad%zz"})
	if _, err := PathVar(req, "name"); !errors.Is(err, errMalformedBody) {
		t.Fatalf("PathVar() error = %v", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Fuel\x00 top-up\t "); got != "Fuel top-up" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
