// Where: cli/internal/naming/naming.go
// What: Logical and physical resource name resolution.
// Why: Keep every generated identifier derivable from explicit discriminators.
package naming

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxRuleNameLength is the provider limit for EventBridge rule names.
const MaxRuleNameLength = 64

// Fixed logical ids for resources shared across the whole stack.
const (
	DeploymentBucketLogicalID       = "DeploymentBucket"
	DeploymentBucketPolicyLogicalID = "DeploymentBucketPolicy"
	ExecutionRoleLogicalID          = "IamRoleLambdaExecution"
	HTTPAPILogicalID                = "HttpApi"
	HTTPAPIStageLogicalID           = "HttpApiStage"
	EventBridgeHandlerLogicalID     = "EventBridgeCustomResourceLambdaFunction"
	EventBridgeHandlerRoleLogicalID = "EventBridgeCustomResourceIamRole"
)

// NormalizeName upper-cases the first rune so the result is a valid
// CloudFormation logical id fragment.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// NormalizeFunctionName maps a declared function name onto a logical id
// fragment. Dashes and underscores are spelled out so distinct names can
// never collapse onto the same id.
func NormalizeFunctionName(name string) string {
	replaced := strings.ReplaceAll(name, "-", "Dash")
	replaced = strings.ReplaceAll(replaced, "_", "Underscore")
	return NormalizeName(replaced)
}

// NormalizeResourceName strips every non-alphanumeric rune, upper-casing the
// rune that follows a stripped one. Used for bus and topic names that allow
// characters logical ids do not.
func NormalizeResourceName(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FunctionLogicalID returns the logical id of a function resource.
func FunctionLogicalID(functionName string) string {
	return NormalizeFunctionName(functionName) + "LambdaFunction"
}

// LogGroupLogicalID returns the logical id of a function's log group.
func LogGroupLogicalID(functionName string) string {
	return NormalizeFunctionName(functionName) + "LogGroup"
}

// FunctionArnOutputName returns the output name carrying a function's ARN.
func FunctionArnOutputName(functionName string) string {
	return NormalizeFunctionName(functionName) + "LambdaFunctionArn"
}

// EventBridgeRuleLogicalID returns the logical id of the rule compiled for
// the event at the given 1-based position.
func EventBridgeRuleLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "EventBridgeRule" + strconv.Itoa(index)
}

// EventBridgeCustomResourceLogicalID returns the logical id of the
// custom-resource record replacing a native rule.
func EventBridgeCustomResourceLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "CustomEventBridge" + strconv.Itoa(index)
}

// EventBusLogicalID returns the logical id of a named event bus declared in
// the stack. The same bus name always yields the same id so repeated
// references share one resource.
func EventBusLogicalID(busName string) string {
	return "EventBridgeBus" + NormalizeResourceName(busName)
}

// EventBridgePermissionLogicalID returns the logical id of the invoke
// permission paired with a rule.
func EventBridgePermissionLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "EventBridgePermission" + strconv.Itoa(index)
}

// EventSourceMappingLogicalID returns the logical id of a queue or stream
// event source mapping.
func EventSourceMappingLogicalID(functionName, source string, index int) string {
	return NormalizeFunctionName(functionName) + "EventSourceMapping" + NormalizeName(source) + strconv.Itoa(index)
}

// HTTPAPIIntegrationLogicalID returns the per-function integration id.
func HTTPAPIIntegrationLogicalID(functionName string) string {
	return NormalizeFunctionName(functionName) + "HttpApiIntegration"
}

// HTTPAPIRouteLogicalID returns the per-route logical id.
func HTTPAPIRouteLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "HttpApiRoute" + strconv.Itoa(index)
}

// HTTPAPIPermissionLogicalID returns the invoke permission id for a route.
func HTTPAPIPermissionLogicalID(functionName string) string {
	return NormalizeFunctionName(functionName) + "HttpApiPermission"
}

// SNSTopicLogicalID returns the logical id of a topic declared in the stack.
func SNSTopicLogicalID(topicName string) string {
	return "SNSTopic" + NormalizeResourceName(topicName)
}

// SNSSubscriptionLogicalID returns the per-event subscription id.
func SNSSubscriptionLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "SnsSubscription" + strconv.Itoa(index)
}

// SNSPermissionLogicalID returns the invoke permission id for a topic event.
func SNSPermissionLogicalID(functionName string, index int) string {
	return NormalizeFunctionName(functionName) + "SnsPermission" + strconv.Itoa(index)
}

// RuleName returns the physical EventBridge rule name for the event at the
// given 1-based position, within the provider's 64 character limit. The
// numeric suffix survives truncation exactly; only the function-name prefix
// is trimmed, so suffix-based lookups stay valid for long names.
func RuleName(functionName string, index int) string {
	return TruncateWithSuffix(functionName, "-rule-"+strconv.Itoa(index), MaxRuleNameLength)
}

// TruncateWithSuffix joins prefix and suffix, trimming the prefix when the
// combined length exceeds limit. The suffix is never altered.
func TruncateWithSuffix(prefix, suffix string, limit int) string {
	if len(prefix)+len(suffix) <= limit {
		return prefix + suffix
	}
	keep := limit - len(suffix)
	if keep < 0 {
		keep = 0
	}
	return prefix[:keep] + suffix
}
