// Where: cli/internal/domain/errcode/errors.go
// What: Typed errors with stable machine-readable codes.
// Why: Let callers and tests branch on error class without string matching.
package errcode

import "fmt"

// Stable error codes surfaced to users and asserted by tests.
const (
	InvalidEventConfig            = "ERROR_INVALID_EVENT_CONFIG"
	MissingEventField             = "ERROR_MISSING_EVENT_FIELD"
	ConflictingEventFields        = "ERROR_CONFLICTING_EVENT_FIELDS"
	UnrecognizedEventField        = "ERROR_UNRECOGNIZED_EVENT_FIELD"
	InvalidEventBusReference      = "ERROR_INVALID_REFERENCE_TO_EVENT_BUS_CUSTOM_RESOURCE"
	FunctionPackagingConflict     = "ERROR_FUNCTION_HANDLER_AND_IMAGE_CONFLICT"
	FunctionPackagingMissing      = "ERROR_FUNCTION_HANDLER_OR_IMAGE_MISSING"
	DeployPackageTypeChange       = "DEPLOY_FUNCTION_CHANGE_BETWEEN_HANDLER_AND_IMAGE_ERROR"
	DeployFunctionNeverDeployed   = "DEPLOY_FUNCTION_NOT_YET_DEPLOYED_ERROR"
	DeployRetryAttemptsExhausted  = "DEPLOY_RETRY_ATTEMPTS_EXHAUSTED_ERROR"
	InternalDuplicateResource     = "INTERNAL_DUPLICATE_RESOURCE_ERROR"
	InternalDanglingDependency    = "INTERNAL_DANGLING_DEPENDENCY_ERROR"
	InternalDuplicateOutput       = "INTERNAL_DUPLICATE_OUTPUT_ERROR"
	InternalUnknownEventKind      = "INTERNAL_UNKNOWN_EVENT_KIND_ERROR"
	InternalTemplateRenderFailure = "INTERNAL_TEMPLATE_RENDER_ERROR"
)

// ConfigurationError is a user-fixable configuration problem. It always names
// the offending field so the message is actionable without a stack trace.
type ConfigurationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (field %s)", e.Code, e.Message, e.Field)
}

// NewConfiguration builds a ConfigurationError with a formatted message.
func NewConfiguration(code, field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}

// DeployError is a fatal deployment-phase failure carrying a stable code.
type DeployError struct {
	Code     string
	Function string
	Message  string
	Cause    error
}

func (e *DeployError) Error() string {
	if e.Function == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: function %s: %s", e.Code, e.Function, e.Message)
}

func (e *DeployError) Unwrap() error { return e.Cause }

// NewDeploy builds a DeployError for the named function.
func NewDeploy(code, function, format string, args ...any) *DeployError {
	return &DeployError{Code: code, Function: function, Message: fmt.Sprintf(format, args...)}
}

// InternalError indicates a compiler defect. It is never user-recoverable and
// should be unreachable for any valid service model.
type InternalError struct {
	Code    string
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInternal builds an InternalError.
func NewInternal(code, format string, args ...any) *InternalError {
	return &InternalError{Code: code, Message: fmt.Sprintf(format, args...)}
}
