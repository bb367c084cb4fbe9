// Package errors provides structured error handling for the provisioning
// service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeInvalidInput indicates a required request field is missing or malformed.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeInvalidJSON indicates the request body could not be decoded.
	CodeInvalidJSON Code = "INVALID_JSON"
	// CodeUnknownAction indicates an unrecognized request action.
	CodeUnknownAction Code = "UNKNOWN_ACTION"
	// CodeProjectNotFound indicates the referenced project does not exist.
	CodeProjectNotFound Code = "PROJECT_NOT_FOUND"
	// CodeUnexpected indicates a mandatory provisioning step failed.
	CodeUnexpected Code = "UNEXPECTED_ERROR"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidInput, CodeInvalidJSON, CodeUnknownAction:
		return http.StatusBadRequest
	case CodeProjectNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
