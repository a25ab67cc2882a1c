package apierr

import (
	"fmt"
	"net/http"
	"testing"

	pkgerrors "github.com/yungbote/calisthenics-backend/internal/pkg/errors"
)

func TestFromMapsSentinels(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("load routine: %w", pkgerrors.ErrNotFound), http.StatusNotFound},
		{"unauthorized", pkgerrors.ErrUnauthorized, http.StatusUnauthorized},
		{"invalid", fmt.Errorf("bad axis: %w", pkgerrors.ErrInvalidArgument), http.StatusBadRequest},
		{"conflict", pkgerrors.ErrConflict, http.StatusConflict},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"passthrough", New(http.StatusTeapot, "teapot", nil), http.StatusTeapot},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := From(tc.err).Status; got != tc.want {
				t.Fatalf("status: got=%d want=%d", got, tc.want)
			}
		})
	}
	if From(nil) != nil {
		t.Fatalf("From(nil) should be nil")
	}
}

func TestValidationCarriesFields(t *testing.T) {
	e := Validation([]FieldError{{Field: "durationMinutes", Message: "oneof"}})
	if e.Status != http.StatusBadRequest || len(e.Fields) != 1 {
		t.Fatalf("unexpected validation error: %+v", e)
	}
}
