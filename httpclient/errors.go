package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/internal/utils"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode  int
	Message     string
	FieldErrors errors.FieldErrors
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "api error %d", e.StatusCode)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if len(e.FieldErrors) > 0 {
		b.WriteString(" (" + e.FieldErrors.String() + ")")
	}
	return b.String()
}

// Is lets callers match an APIError against the error taxonomy sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case errors.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case errors.ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case errors.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case errors.ErrValidation:
		return e.IsValidation()
	case errors.ErrServer:
		return e.StatusCode >= 500
	}
	return false
}

// IsValidation reports a 4xx carrying a field-error map.
func (e *APIError) IsValidation() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500 && len(e.FieldErrors) > 0
}

// messageKeys are body keys that carry a general message rather than a field error.
var messageKeys = map[string]bool{
	"detail":           true,
	"message":          true,
	"error":            true,
	"non_field_errors": true,
}

func parseAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var generic map[string]any
	if err := json.Unmarshal(body, &generic); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	for k, v := range generic {
		msg := utils.FlattenMessages(v)
		if msg == "" {
			continue
		}
		if messageKeys[k] {
			if apiErr.Message == "" || k == "detail" {
				apiErr.Message = msg
			}
			continue
		}
		if apiErr.FieldErrors == nil {
			apiErr.FieldErrors = errors.FieldErrors{}
		}
		apiErr.FieldErrors[k] = msg
	}
	if apiErr.Message == "" && len(apiErr.FieldErrors) == 0 {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, errors.ErrUnauthorized)
}

func IsValidation(err error) bool {
	return errors.Is(err, errors.ErrValidation)
}

func IsServer(err error) bool {
	return errors.Is(err, errors.ErrServer)
}

func IsNetwork(err error) bool {
	return errors.Is(err, errors.ErrNetwork)
}

// FieldErrorsOf returns the flattened field map from a validation failure,
// whether it was raised locally or by the server.
func FieldErrorsOf(err error) errors.FieldErrors {
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.FieldErrors
	}
	return nil
}
