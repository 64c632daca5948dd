package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(KindValidation, "bad input"), http.StatusBadRequest},
		{New(KindFormat, "bad payload"), http.StatusBadRequest},
		{New(KindState, "already exited"), http.StatusBadRequest},
		{New(KindNotFound, "missing"), http.StatusNotFound},
		{New(KindAuthorization, "denied"), http.StatusForbidden},
		{New(KindConflict, "taken"), http.StatusConflict},
		{errors.New("plain"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(KindNotFound, "visitor 3 not found")
	wrapped := fmt.Errorf("lookup: %w", inner)
	if !IsNotFound(wrapped) {
		t.Errorf("wrapped kind = %v, want KindNotFound", KindOf(wrapped))
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindInternal, "query failed", cause)
	if !errors.Is(err, cause) {
		t.Error("cause lost after Wrap")
	}
}
