package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-scheduler/internal/domain"
)

func TestList_IncludesCount(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	c := e.NewContext(req, rec)

	data := []int{1, 2, 3}

	if err := List(c, data, len(data)); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if !body.Success {
		t.Errorf("expected Success=true, got false")
	}
	if body.Count != 3 {
		t.Errorf("expected Count=3, got %d", body.Count)
	}
}

func TestFromError_MapsDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrMessageNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: custom needs days", domain.ErrInvalidRecurrence), http.StatusUnprocessableEntity},
		{domain.ErrInvalidMessage, http.StatusUnprocessableEntity},
		{errors.New("database is locked"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/test", nil), rec)

		if err := FromError(c, tt.err); err != nil {
			t.Fatalf("FromError returned error: %v", err)
		}
		if rec.Code != tt.want {
			t.Errorf("%v: expected status %d, got %d", tt.err, tt.want, rec.Code)
		}
	}
}
