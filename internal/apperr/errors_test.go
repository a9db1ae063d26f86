package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	ve := &ValidationError{}
	assert.NoError(t, ve.OrNil())

	ve.Add("title is required")
	ve.Add("cover image exceeds %d bytes", 10)

	err := ve.OrNil()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"title is required", "cover image exceeds 10 bytes"}, Problems(err))
	assert.Contains(t, err.Error(), "title is required")
}

func TestValidationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("create book: %w", Validation("author is required"))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, ErrValidation, Kind(err))
	assert.Equal(t, []string{"author is required"}, Problems(err))
}

func TestStorage(t *testing.T) {
	cause := errors.New("database is locked")
	err := Storage("insert book", cause)

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrStorage, Kind(err))
	assert.Nil(t, Problems(err))
}

func TestStorage_KeepsKnownKinds(t *testing.T) {
	assert.Nil(t, Storage("noop", nil))
	assert.Equal(t, ErrNotFound, Storage("get book", ErrNotFound))

	wrapped := fmt.Errorf("update: %w", ErrForbidden)
	assert.Equal(t, wrapped, Storage("update book", wrapped))
}

func TestKind_Unknown(t *testing.T) {
	assert.Nil(t, Kind(errors.New("something else")))
	assert.Nil(t, Kind(nil))
}

func TestHTTPResponse(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest, "validation_error"},
		{"duplicate", ErrDuplicateEmail, http.StatusConflict, "duplicate_email"},
		{"credentials", ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "forbidden"},
		{"not found", fmt.Errorf("book 3: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{"storage", Storage("insert", errors.New("disk I/O error")), http.StatusInternalServerError, "storage_failure"},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, "storage_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := HTTPResponse(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, body.Error, "disk I/O")
		})
	}

	_, body := HTTPResponse(Validation("a", "b"))
	assert.Equal(t, []string{"a", "b"}, body.Details)
}
