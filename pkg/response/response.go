// Package response defines the uniform JSON envelope returned by the API.
package response

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var EmptyRequestBodyResponse = Response{
	Status:  StatusError,
	Error:   "Empty Request Body",
	Message: "Request body is empty. Please provide necessary data.",
}

var BadRequestResponse = Response{
	Status:  StatusError,
	Error:   "Bad Request",
	Message: "Failed to process the request. Please check the data you send.",
}

var ResourceNotFoundResponse = Response{
	Status:  StatusError,
	Error:   "Resource Not Found",
	Message: "The requested resource was not found.",
}

var LinkExpiredResponse = Response{
	Status:  StatusError,
	Error:   "Link Expired",
	Message: "This short link has expired.",
}

var ServerErrorResponse = Response{
	Status:  StatusError,
	Error:   "Server Error",
	Message: "An internal server error occurred. Please try again later.",
}

type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
	Details []any  `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(msg string, data ...any) Response {
	resp := Response{
		Status:  StatusSuccess,
		Message: msg,
	}

	if len(data) > 0 && data[0] != nil {
		resp.Data = data[0]
	}

	return resp
}

// ClientErrorResponse wraps a caller-input error message into the envelope.
func ClientErrorResponse(msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   "Bad Request",
		Message: msg,
	}
}

// ValidationErrorResponse converts validator errors into an envelope with a
// per-field detail list.
func ValidationErrorResponse(err error) Response {
	resp := Response{
		Status:  StatusError,
		Error:   "Validation Error",
		Message: "The request data failed validation.",
	}

	for _, ve := range getValidationErrors(err) {
		resp.Details = append(resp.Details, ve)
	}

	return resp
}

type validationError struct {
	Field string `json:"field"`
	Value any    `json:"value"`
	Issue string `json:"issue"`
}

func getValidationErrors(err error) []validationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	errs := make([]validationError, 0, len(validationErrs))

	for _, fieldErr := range validationErrs {
		ve := validationError{
			Field: fieldErr.Field(),
			Value: fieldErr.Value(),
		}

		switch fieldErr.Tag() {
		case "required":
			ve.Issue = "This field is required."
		case "min":
			ve.Issue = fmt.Sprintf("Must be at least %s characters.", fieldErr.Param())
		case "max":
			ve.Issue = fmt.Sprintf("Must be at most %s characters.", fieldErr.Param())
		default:
			ve.Issue = fmt.Sprintf("Invalid %s.", fieldErr.Field())
		}

		errs = append(errs, ve)
	}

	return errs
}
