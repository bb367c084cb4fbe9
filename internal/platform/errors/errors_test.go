package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeInvalidInput:    http.StatusBadRequest,
		CodeInvalidJSON:     http.StatusBadRequest,
		CodeUnknownAction:   http.StatusBadRequest,
		CodeProjectNotFound: http.StatusNotFound,
		CodeUnexpected:      http.StatusInternalServerError,
		Code("SOMETHING"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := code.HTTPStatus(); got != want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestCodeOfUnwrapsChain(t *testing.T) {
	cause := stderrors.New("remote call failed")
	wrapped := fmt.Errorf("provision: %w", Wrap(CodeProjectNotFound, "project missing", cause))

	if got := CodeOf(wrapped); got != CodeProjectNotFound {
		t.Fatalf("CodeOf = %s, want %s", got, CodeProjectNotFound)
	}
	if !stderrors.Is(wrapped, cause) {
		t.Fatal("expected cause to survive wrapping")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if got := CodeOf(stderrors.New("boom")); got != CodeUnexpected {
		t.Fatalf("CodeOf = %s, want %s", got, CodeUnexpected)
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeInvalidInput, "projectId is required")
	if !stderrors.Is(err, New(CodeInvalidInput, "different message")) {
		t.Fatal("expected errors with same code to match")
	}
	if stderrors.Is(err, New(CodeUnknownAction, "different code")) {
		t.Fatal("expected errors with different codes not to match")
	}
}
