package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{InvalidState, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Unauthorized, http.StatusUnauthorized},
		{InvalidToken, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{LimitReached, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{ExhaustedRetries, http.StatusServiceUnavailable},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Run("finds wrapped app error", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", E("op", Conflict, "taken", nil))
		if got := KindOf(err); got != Conflict {
			t.Errorf("KindOf() = %v, want %v", got, Conflict)
		}
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		if got := KindOf(errors.New("boom")); got != Internal {
			t.Errorf("KindOf() = %v, want %v", got, Internal)
		}
	})
}

func TestError_Error(t *testing.T) {
	root := errors.New("driver exploded")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"op and message", E("auth.SignUp", Conflict, "exists", nil), "auth.SignUp: exists"},
		{"with cause", E("auth.SignUp", Internal, "insert", root), "auth.SignUp: insert: driver exploded"},
		{"no op", E("", NotFound, "missing", nil), "missing"},
		{"no message uses kind", E("", NotFound, "", nil), "NotFound"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	if !errors.Is(E("op", Internal, "x", root), root) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestPublic(t *testing.T) {
	t.Run("app error keeps its message", func(t *testing.T) {
		status, msg := Public(E("op", Forbidden, "Email not verified.", nil))
		if status != http.StatusForbidden || msg != "Email not verified." {
			t.Errorf("Public() = %d %q", status, msg)
		}
	})

	t.Run("internal app error hides details", func(t *testing.T) {
		status, msg := Public(E("op", Internal, "pq: relation users does not exist", nil))
		if status != http.StatusInternalServerError || msg != GenericMessage {
			t.Errorf("Public() = %d %q", status, msg)
		}
	})

	t.Run("unknown error hides details", func(t *testing.T) {
		status, msg := Public(errors.New("dial tcp: refused"))
		if status != http.StatusInternalServerError || msg != GenericMessage {
			t.Errorf("Public() = %d %q", status, msg)
		}
	})
}
