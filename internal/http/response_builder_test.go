package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kesho/internal/core"
	"kesho/internal/services"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/x").
		JSON(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"n":1}` {
		t.Errorf("Body = %q", got)
	}
	if w.Header().Get("Location") != "/api/x" {
		t.Errorf("Location = %q", w.Header().Get("Location"))
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().JSON(make(chan int)).Write(w)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: body", errMalformedBody), http.StatusBadRequest, "bad_request"},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity, "invalid_amount"},
		{core.ErrInvalidIncome, http.StatusUnprocessableEntity, "invalid_income"},
		{core.ErrInvalidGroup, http.StatusUnprocessableEntity, "invalid_group"},
		{fmt.Errorf("wrapped: %w", core.ErrInvalidDate), http.StatusUnprocessableEntity, "invalid_date"},
		{services.ErrNoNotificationMatch, http.StatusUnprocessableEntity, "no_match"},
		{fmt.Errorf("%w: %q", core.ErrCategoryNotFound, "x"), http.StatusNotFound, "category_not_found"},
		{core.ErrNoSuchTransaction, http.StatusNotFound, "transaction_not_found"},
		{core.ErrDuplicateCategoryName, http.StatusConflict, "duplicate_category"},
		{errors.New("save state: disk full"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFor(tt.err).Write(w)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if !strings.Contains(w.Body.String(), `"code":"`+tt.code+`"`) {
				t.Errorf("body = %s, want code %s", w.Body.String(), tt.code)
			}
		})
	}
}

func TestErrorForHidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	ErrorFor(errors.New("open /var/lib/kesho.db: permission denied")).Write(w)
	if strings.Contains(w.Body.String(), "/var/lib") {
		t.Errorf("internal detail leaked: %s", w.Body.String())
	}
}
