package shared

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGetAppErrorUnwrapsThroughWrapping(t *testing.T) {
	base := errors.New("row not found")
	appErr := NewNotFoundError(base, "Story not found")

	wrapped := fmt.Errorf("handling request: %w", appErr)

	got, ok := GetAppError(wrapped)
	if !ok {
		t.Fatal("wrapped app error should still be recognized")
	}
	if got.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", got.StatusCode, http.StatusNotFound)
	}
	if !errors.Is(wrapped, base) {
		t.Error("the underlying cause should survive unwrapping")
	}
}

func TestGetAppErrorPlainError(t *testing.T) {
	if _, ok := GetAppError(errors.New("boom")); ok {
		t.Fatal("a plain error is not an app error")
	}
}

func TestAppErrorMessage(t *testing.T) {
	withCause := NewInternalError(errors.New("dial tcp: refused"), "Something went wrong")
	if withCause.Error() != "Something went wrong: dial tcp: refused" {
		t.Errorf("unexpected message: %q", withCause.Error())
	}

	withoutCause := NewValidationError([]string{"title is required"})
	if withoutCause.Error() != "Validation failed" {
		t.Errorf("unexpected message: %q", withoutCause.Error())
	}
	if withoutCause.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", withoutCause.StatusCode, http.StatusBadRequest)
	}
}
