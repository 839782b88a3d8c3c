// Where: cli/internal/domain/value/value.go
// What: Value helpers for decoded service configuration data.
// Why: Keep loose-typed config handling concise without infrastructure dependencies.
package value

import (
	"fmt"
	"strings"
)

// AsString returns the string representation of a value.
func AsString(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// HasUnresolvedPlaceholder reports whether a string still carries an
// unresolved `${...}` substitution marker.
func HasUnresolvedPlaceholder(s string) bool {
	return strings.Contains(s, "${")
}
