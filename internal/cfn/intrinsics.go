// Where: cli/internal/cfn/intrinsics.go
// What: CloudFormation intrinsic function constructors and detection.
// Why: Keep cross-resource references structured instead of string templates.
package cfn

// Ref builds a {"Ref": id} reference.
func Ref(id string) map[string]any {
	return map[string]any{"Ref": id}
}

// GetAtt builds an Fn::GetAtt reference to one attribute of a resource.
func GetAtt(id, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{id, attribute}}
}

// Sub builds an Fn::Sub expression.
func Sub(expr string) map[string]any {
	return map[string]any{"Fn::Sub": expr}
}

// Join builds an Fn::Join expression.
func Join(delimiter string, parts []any) map[string]any {
	return map[string]any{"Fn::Join": []any{delimiter, parts}}
}

// ImportValue builds an Fn::ImportValue expression.
func ImportValue(name string) map[string]any {
	return map[string]any{"Fn::ImportValue": name}
}

var intrinsicKeys = []string{
	"Ref",
	"Fn::GetAtt",
	"Fn::Sub",
	"Fn::Join",
	"Fn::ImportValue",
	"Fn::Select",
	"Fn::Split",
	"Fn::If",
}

// IsIntrinsic reports whether a value is an intrinsic function expression: a
// single-key map whose key is one of the intrinsic function names. Such
// values cannot be compared against concrete remote state.
func IsIntrinsic(value any) bool {
	m, ok := value.(map[string]any)
	if !ok || len(m) != 1 {
		return false
	}
	for _, key := range intrinsicKeys {
		if _, present := m[key]; present {
			return true
		}
	}
	return false
}
