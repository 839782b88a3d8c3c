// Where: cli/internal/usecase/deploy/config_diff.go
// What: Desired-vs-remote configuration diff.
// Why: Send only the fields that actually changed, never unresolved ones.
package deploy

import (
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/domain/value"
)

// DesiredConfig is the locally declared function configuration after provider
// defaults have been applied. String fields still carrying an unresolved
// placeholder are excluded from the diff and from the update payload.
type DesiredConfig struct {
	PackageType           string
	Handler               string
	Runtime               string
	ImageURI              string
	ImageCommand          []string
	ImageEntryPoint       []string
	ImageWorkingDirectory string
	MemorySize            int
	Timeout               int
	Role                  string
	Description           string
	KMSKeyARN             string
	DeadLetterTargetARN   string
	Environment           map[string]string
	Layers                []string
	SubnetIDs             []string
	SecurityGroupIDs      []string
}

// DesiredConfigFor derives the desired configuration for one function,
// falling back to provider-level settings the same way compilation does.
func DesiredConfigFor(service *model.ServiceModel, fn model.FunctionSpec) DesiredConfig {
	desired := DesiredConfig{
		PackageType:         model.PackageTypeZip,
		Handler:             fn.Handler,
		Runtime:             fn.Runtime,
		MemorySize:          fn.MemorySize,
		Timeout:             fn.Timeout,
		Role:                fn.Role,
		Description:         fn.Description,
		KMSKeyARN:           fn.KMSKeyARN,
		DeadLetterTargetARN: fn.DeadLetterTargetARN,
		Environment:         mergedEnvironment(service.Provider.Environment, fn.Environment),
		Layers:              fn.Layers,
	}
	if fn.IsImage() {
		desired.PackageType = model.PackageTypeImage
		desired.Handler = ""
		desired.Runtime = ""
		desired.ImageURI = fn.Image.URI
		desired.ImageCommand = fn.Image.Command
		desired.ImageEntryPoint = fn.Image.EntryPoint
		desired.ImageWorkingDirectory = fn.Image.WorkingDirectory
	}
	if desired.Runtime == "" && !fn.IsImage() {
		desired.Runtime = service.Provider.Runtime
	}
	if desired.MemorySize == 0 {
		desired.MemorySize = service.Provider.MemorySize
	}
	if desired.Timeout == 0 {
		desired.Timeout = service.Provider.Timeout
	}
	if desired.Role == "" {
		desired.Role = service.Provider.Role
	}
	vpc := fn.VPC
	if vpc == nil {
		vpc = service.Provider.VPC
	}
	if vpc != nil {
		desired.SubnetIDs = vpc.SubnetIDs
		desired.SecurityGroupIDs = vpc.SecurityGroupIDs
	}
	return desired
}

// DiffConfig computes the minimal update turning remote into desired. Fields
// whose desired value is an unresolved cross-resource reference cannot be
// compared against a concrete remote value and never appear in the result.
func DiffConfig(desired DesiredConfig, remote model.RemoteFunctionState) model.ConfigUpdate {
	var update model.ConfigUpdate

	diffString(&update.Handler, desired.Handler, remote.Handler)
	diffString(&update.Runtime, desired.Runtime, remote.Runtime)
	diffString(&update.Role, desired.Role, remote.Role)
	diffString(&update.Description, desired.Description, remote.Description)
	diffString(&update.KMSKeyARN, desired.KMSKeyARN, remote.KMSKeyARN)
	diffString(&update.DeadLetterTargetARN, desired.DeadLetterTargetARN, remote.DeadLetterTargetARN)

	if desired.MemorySize != 0 && desired.MemorySize != remote.MemorySize {
		update.MemorySize = intPtr(desired.MemorySize)
	}
	if desired.Timeout != 0 && desired.Timeout != remote.Timeout {
		update.Timeout = intPtr(desired.Timeout)
	}

	if env := comparableEnvironment(desired.Environment); !stringMapsEqual(env, remote.Environment) {
		update.Environment = env
	}
	if layers := comparableStrings(desired.Layers); !stringSlicesEqual(layers, remote.Layers) {
		update.Layers = layers
	}
	if !stringSlicesEqual(desired.SubnetIDs, remote.SubnetIDs) ||
		!stringSlicesEqual(desired.SecurityGroupIDs, remote.SecurityGroupIDs) {
		update.SubnetIDs = emptyNotNil(desired.SubnetIDs)
		update.SecurityGroupIDs = emptyNotNil(desired.SecurityGroupIDs)
	}
	if desired.PackageType == model.PackageTypeImage {
		if !stringSlicesEqual(desired.ImageCommand, remote.ImageCommand) ||
			!stringSlicesEqual(desired.ImageEntryPoint, remote.ImageEntryPoint) ||
			desired.ImageWorkingDirectory != remote.ImageWorkingDirectory {
			update.ImageConfig = &model.ImageConfigUpdate{
				Command:          desired.ImageCommand,
				EntryPoint:       desired.ImageEntryPoint,
				WorkingDirectory: desired.ImageWorkingDirectory,
			}
		}
	}
	return update
}

// diffString records a changed string field unless the desired value is empty
// (meaning not declared locally) or unresolved.
func diffString(target **string, desired, remote string) {
	if desired == "" || value.HasUnresolvedPlaceholder(desired) {
		return
	}
	if desired != remote {
		v := desired
		*target = &v
	}
}

// comparableEnvironment drops entries whose value is unresolved so they are
// neither compared nor sent.
func comparableEnvironment(env map[string]string) map[string]string {
	out := make(map[string]string, len(env))
	for k, v := range env {
		if value.HasUnresolvedPlaceholder(v) {
			continue
		}
		out[k] = v
	}
	return out
}

func comparableStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if value.HasUnresolvedPlaceholder(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func mergedEnvironment(provider, fn map[string]string) map[string]string {
	merged := make(map[string]string, len(provider)+len(fn))
	for k, v := range provider {
		merged[k] = v
	}
	for k, v := range fn {
		merged[k] = v
	}
	return merged
}

func stringMapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if other, ok := b[k]; !ok || other != v {
			return false
		}
	}
	return true
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// emptyNotNil keeps a cleared slice distinguishable from an undeclared one in
// the provider payload.
func emptyNotNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func intPtr(v int) *int { return &v }
