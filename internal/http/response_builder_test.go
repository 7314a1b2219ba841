package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetbuddy/internal/core"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	Created(MessageResponse{Message: "saved"}).
		Header("X-Test", "yes").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := w.Header().Get("X-Test"); got != "yes" {
		t.Errorf("X-Test = %q, want yes", got)
	}
	var body MessageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "saved" {
		t.Errorf("Message = %q, want saved", body.Message)
	}
}

func TestResponseBuilder_Raw(t *testing.T) {
	w := httptest.NewRecorder()

	OK(MessageResponse{Message: "ignored"}).
		Raw("application/yaml", []byte("a: 1\n")).
		Write(w)

	if got := w.Header().Get("Content-Type"); got != "application/yaml" {
		t.Errorf("Content-Type = %q, want application/yaml", got)
	}
	if w.Body.String() != "a: 1\n" {
		t.Errorf("Body = %q, want raw content", w.Body.String())
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NoContent().Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
}

func TestResponseBuilder_UnencodableBody(t *testing.T) {
	w := httptest.NewRecorder()

	OK(func() {}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestErrorResult(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"validation", core.NewFieldError("amount", core.ErrInvalidAmount), http.StatusBadRequest, codeValidation, "amount"},
		{"not found", fmt.Errorf("transaction 4: %w", core.ErrNotFound), http.StatusNotFound, codeNotFound, ""},
		{"conflict", fmt.Errorf("budget for food: %w", core.ErrConflict), http.StatusConflict, codeConflict, ""},
		{"anything else", fmt.Errorf("disk on fire"), http.StatusInternalServerError, codeServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			errorResult(tt.err, "Failed to save").Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantCode {
				t.Errorf("error = %q, want %q", body.Error, tt.wantCode)
			}
			if tt.wantField != "" {
				if _, ok := body.Fields[tt.wantField]; !ok {
					t.Errorf("fields = %v, want %q present", body.Fields, tt.wantField)
				}
			}
			if tt.wantStatus == http.StatusInternalServerError && body.ErrorDescription != "Failed to save" {
				t.Errorf("error_description = %q, cause must not leak", body.ErrorDescription)
			}
		})
	}
}
