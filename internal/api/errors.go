package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/productlabel/productlabel-server/internal/errors"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
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
			if apiErr := fromDomainError(err); apiErr != nil {
				return apiErr
			}
		}

		apiErr := &APIError{
			status:  status,
			Code:    statusToCode(status),
			Message: message,
		}
		// Schema validation failures carry one error per field.
		if status == 400 || status == 422 {
			apiErr.status = 400
			if details := fieldDetails(errs); len(details) > 0 {
				apiErr.Details = details
			}
		}
		return apiErr
	}
}

// apiError converts an error returned by a service into an APIError.
// Errors without a domain code are logged and become opaque 500s.
func (s *Server) apiError(err error) error {
	if apiErr := fromDomainError(err); apiErr != nil {
		return apiErr
	}
	s.logger.Error("Unhandled error", "error", err)
	return &APIError{
		status:  500,
		Code:    string(domainerrors.CodeInternal),
		Message: "internal server error",
	}
}

func fromDomainError(err error) *APIError {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		return nil
	}
	return &APIError{
		status:  domainErr.HTTPStatus(),
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
		Details: domainErr.Details,
	}
}

func fieldDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		if detail, ok := err.(*huma.ErrorDetail); ok && detail.Location != "" {
			details[detail.Location] = detail.Message
		}
	}
	return details
}

// statusToCode maps HTTP status codes to our domain error codes.
func statusToCode(status int) string {
	switch status {
	case 400, 422:
		return string(domainerrors.CodeValidation)
	case 404:
		return string(domainerrors.CodeNotFound)
	case 409:
		return string(domainerrors.CodeAlreadyExists)
	case 429:
		return string(domainerrors.CodeTooManyReqs)
	default:
		return string(domainerrors.CodeInternal)
	}
}
