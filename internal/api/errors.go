package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/memorylane/memorylane-server/internal/errors"
	"github.com/memorylane/memorylane-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// Every error response has the shape {"error": "...", "details": ...}.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"error" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details, such as per-field messages"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				return &APIError{
					status:  domainErr.HTTPStatus(),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Message: storeErr.Message,
				}
			}
		}

		// Huma reports schema and parameter failures as 422; clients get 400.
		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			return &APIError{
				status:  http.StatusBadRequest,
				Message: message,
				Details: detailsFromHuma(errs),
			}
		}

		// Handler errors with no known type surface verbatim as 500.
		if status == http.StatusInternalServerError && len(errs) > 0 && errs[0] != nil {
			return &APIError{
				status:  status,
				Message: errs[0].Error(),
			}
		}

		return &APIError{
			status:  status,
			Message: message,
		}
	}
}

// detailsFromHuma maps huma error details to field -> message.
// Locations such as "body.name" or "path.id" keep only the field part.
func detailsFromHuma(errs []error) any {
	details := map[string]string{}
	for _, err := range errs {
		var d *huma.ErrorDetail
		if !errors.As(err, &d) {
			continue
		}
		field := d.Location
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		if field == "" {
			field = "body"
		}
		details[field] = d.Message
	}
	if len(details) == 0 {
		return nil
	}
	return details
}
