package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError_MessageIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := StoreUnavailable(cause)

	if err.Error() != "session store unavailable: connection refused" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped cause to unwrap")
	}
}

func TestError_MessageWithoutCause(t *testing.T) {
	err := NotFound("session not found")
	if err.Error() != "session not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestConstructors_SetKind(t *testing.T) {
	cases := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"not found", NotFound("x"), ErrNotFound},
		{"not found formatted", NotFoundf("session %s", "s-1"), ErrNotFound},
		{"invalid argument", InvalidArgument("x"), ErrInvalidArgument},
		{"conflict", Conflict("x"), ErrConflict},
		{"store unavailable", StoreUnavailable(stderrors.New("x")), ErrStoreUnavailable},
		{"internal", Internal(stderrors.New("x")), ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Kind != tc.kind {
				t.Errorf("expected kind %d, got %d", tc.kind, tc.err.Kind)
			}
		})
	}
}

func TestKindOf_UnwrapsNestedErrors(t *testing.T) {
	inner := NotFound("session not found")
	wrapped := fmt.Errorf("handling request: %w", inner)

	if KindOf(wrapped) != ErrNotFound {
		t.Error("expected kind to survive wrapping")
	}
	if KindOf(stderrors.New("plain")) != ErrInternal {
		t.Error("expected plain errors to classify as internal")
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := Wrap(stderrors.New("timeout"), ErrStoreUnavailable, "intent timed out")

	if !Is(err, ErrStoreUnavailable) {
		t.Error("expected kind match")
	}
	if Is(err, ErrNotFound) {
		t.Error("expected kind mismatch")
	}
	if Is(stderrors.New("plain"), ErrInternal) {
		t.Error("expected plain errors not to match any kind")
	}
}
