package apperr

import "net/http"

// Response is the JSON error body returned by every endpoint.
type Response struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

type httpKind struct {
	status int
	code   string
}

var httpKinds = map[error]httpKind{
	ErrValidation:         {http.StatusBadRequest, "validation_error"},
	ErrDuplicateEmail:     {http.StatusConflict, "duplicate_email"},
	ErrInvalidCredentials: {http.StatusUnauthorized, "invalid_credentials"},
	ErrUnauthenticated:    {http.StatusUnauthorized, "unauthenticated"},
	ErrForbidden:          {http.StatusForbidden, "forbidden"},
	ErrNotFound:           {http.StatusNotFound, "not_found"},
	ErrStorage:            {http.StatusInternalServerError, "storage_failure"},
}

// HTTPResponse maps err to a status code and a body that never carries
// driver error text. Errors without a kind are reported as storage failures.
func HTTPResponse(err error) (int, Response) {
	kind := Kind(err)
	if kind == nil {
		kind = ErrStorage
	}
	mapped := httpKinds[kind]
	return mapped.status, Response{
		Error:   kind.Error(),
		Code:    mapped.code,
		Details: Problems(err),
	}
}
