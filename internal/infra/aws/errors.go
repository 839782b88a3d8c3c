// Where: cli/internal/infra/aws/errors.go
// What: Provider error classification helpers.
// Why: Distinguish not-found, transient-conflict, and fatal errors by code.
package aws

import (
	"errors"

	"github.com/aws/smithy-go"
)

// Provider error codes the deployer branches on.
const (
	codeResourceNotFound = "ResourceNotFoundException"
	codeResourceConflict = "ResourceConflictException"
	codeTooManyRequests  = "TooManyRequestsException"
)

// ErrorCode extracts the structured provider error code, or "" for errors
// without one.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether the error means the resource does not exist.
func IsNotFound(err error) bool {
	return ErrorCode(err) == codeResourceNotFound
}

// IsTransientConflict reports whether the error belongs to the
// concurrent-modification class worth a bounded retry.
func IsTransientConflict(err error) bool {
	switch ErrorCode(err) {
	case codeResourceConflict, codeTooManyRequests:
		return true
	}
	return false
}
