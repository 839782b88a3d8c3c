// Where: cli/internal/usecase/deploy/config_diff_test.go
// What: Tests for the desired-vs-remote configuration diff.
// Why: Only changed, resolved fields may reach the provider payload.
package deploy

import (
	"reflect"
	"testing"

	"github.com/flintfn/flint/cli/internal/domain/model"
)

func matchingRemote() model.RemoteFunctionState {
	return model.RemoteFunctionState{
		PackageType: model.PackageTypeZip,
		Handler:     "src/worker.handler",
		Runtime:     "nodejs20.x",
		MemorySize:  1024,
		Timeout:     6,
		Role:        "arn:aws:iam::123:role/app",
	}
}

func matchingDesired() DesiredConfig {
	return DesiredConfig{
		PackageType: model.PackageTypeZip,
		Handler:     "src/worker.handler",
		Runtime:     "nodejs20.x",
		MemorySize:  1024,
		Timeout:     6,
		Role:        "arn:aws:iam::123:role/app",
	}
}

func TestDiffConfigIdenticalIsEmpty(t *testing.T) {
	update := DiffConfig(matchingDesired(), matchingRemote())
	if !update.Empty() {
		t.Errorf("update = %+v, want empty", update)
	}
}

func TestDiffConfigChangedFields(t *testing.T) {
	desired := matchingDesired()
	desired.MemorySize = 2048
	desired.Handler = "src/worker.main"

	update := DiffConfig(desired, matchingRemote())
	if update.MemorySize == nil || *update.MemorySize != 2048 {
		t.Errorf("MemorySize = %v", update.MemorySize)
	}
	if update.Handler == nil || *update.Handler != "src/worker.main" {
		t.Errorf("Handler = %v", update.Handler)
	}
	if update.Timeout != nil || update.Runtime != nil {
		t.Errorf("unchanged fields must stay nil: %+v", update)
	}
}

func TestDiffConfigUnresolvedValuesExcluded(t *testing.T) {
	desired := matchingDesired()
	desired.Role = "${cf:other-stack.RoleArn}"
	desired.Environment = map[string]string{
		"TABLE": "${cf:other-stack.TableName}",
	}

	update := DiffConfig(desired, matchingRemote())
	// An unresolved role can be neither compared nor sent.
	if update.Role != nil {
		t.Errorf("Role = %v, want excluded", *update.Role)
	}
	if update.Environment != nil {
		t.Errorf("Environment = %v, want excluded", update.Environment)
	}
	if !update.Empty() {
		t.Errorf("update = %+v, want empty", update)
	}
}

func TestDiffConfigEnvironment(t *testing.T) {
	desired := matchingDesired()
	desired.Environment = map[string]string{
		"STAGE": "dev",
		"TABLE": "${cf:other-stack.TableName}",
	}
	remote := matchingRemote()
	remote.Environment = map[string]string{"STAGE": "prod"}

	update := DiffConfig(desired, remote)
	// Unresolved entries drop out; resolved ones still diff.
	want := map[string]string{"STAGE": "dev"}
	if !reflect.DeepEqual(update.Environment, want) {
		t.Errorf("Environment = %v, want %v", update.Environment, want)
	}
}

func TestDiffConfigVPCClearedExplicitly(t *testing.T) {
	remote := matchingRemote()
	remote.SubnetIDs = []string{"subnet-1"}
	remote.SecurityGroupIDs = []string{"sg-1"}

	update := DiffConfig(matchingDesired(), remote)
	// Detaching from the VPC sends empty slices, not nil.
	if update.SubnetIDs == nil || len(update.SubnetIDs) != 0 {
		t.Errorf("SubnetIDs = %v", update.SubnetIDs)
	}
	if update.SecurityGroupIDs == nil || len(update.SecurityGroupIDs) != 0 {
		t.Errorf("SecurityGroupIDs = %v", update.SecurityGroupIDs)
	}
}

func TestDiffConfigLayers(t *testing.T) {
	desired := matchingDesired()
	desired.Layers = []string{"arn:aws:lambda:us-east-1:123:layer:shared:4"}

	update := DiffConfig(desired, matchingRemote())
	if !reflect.DeepEqual(update.Layers, desired.Layers) {
		t.Errorf("Layers = %v", update.Layers)
	}
}

func TestDesiredConfigForProviderFallbacks(t *testing.T) {
	service := &model.ServiceModel{
		Service: "svc",
		Provider: model.ProviderConfig{
			Stage:       "dev",
			Runtime:     "nodejs20.x",
			MemorySize:  1024,
			Timeout:     6,
			Environment: map[string]string{"STAGE": "dev"},
		},
	}
	fn := model.FunctionSpec{
		Name:        "worker",
		Handler:     "src/worker.handler",
		MemorySize:  512,
		Environment: map[string]string{"MODE": "worker"},
	}

	desired := DesiredConfigFor(service, fn)
	if desired.PackageType != model.PackageTypeZip {
		t.Errorf("PackageType = %s", desired.PackageType)
	}
	if desired.Runtime != "nodejs20.x" {
		t.Errorf("Runtime fallback = %s", desired.Runtime)
	}
	if desired.MemorySize != 512 {
		t.Errorf("function MemorySize must win, got %d", desired.MemorySize)
	}
	if desired.Timeout != 6 {
		t.Errorf("Timeout fallback = %d", desired.Timeout)
	}
	want := map[string]string{"STAGE": "dev", "MODE": "worker"}
	if !reflect.DeepEqual(desired.Environment, want) {
		t.Errorf("Environment = %v", desired.Environment)
	}
}

func TestDesiredConfigForImage(t *testing.T) {
	service := &model.ServiceModel{
		Service:  "svc",
		Provider: model.ProviderConfig{Stage: "dev", Runtime: "nodejs20.x"},
	}
	fn := model.FunctionSpec{
		Name:  "img",
		Image: &model.ImageConfig{URI: "123.dkr.ecr.us-east-1.amazonaws.com/app:latest"},
	}

	desired := DesiredConfigFor(service, fn)
	if desired.PackageType != model.PackageTypeImage {
		t.Errorf("PackageType = %s", desired.PackageType)
	}
	if desired.Handler != "" || desired.Runtime != "" {
		t.Errorf("image functions carry no handler or runtime: %+v", desired)
	}
	if desired.ImageURI != fn.Image.URI {
		t.Errorf("ImageURI = %s", desired.ImageURI)
	}
}

func TestDiffConfigImageOverrides(t *testing.T) {
	desired := matchingDesired()
	desired.PackageType = model.PackageTypeImage
	desired.Handler = ""
	desired.Runtime = ""
	desired.ImageCommand = []string{"app.handler"}
	remote := matchingRemote()
	remote.PackageType = model.PackageTypeImage
	remote.Handler = ""
	remote.Runtime = ""

	update := DiffConfig(desired, remote)
	if update.ImageConfig == nil || !reflect.DeepEqual(update.ImageConfig.Command, []string{"app.handler"}) {
		t.Errorf("ImageConfig = %+v", update.ImageConfig)
	}

	remote.ImageCommand = []string{"app.handler"}
	if update := DiffConfig(desired, remote); update.ImageConfig != nil {
		t.Errorf("matching overrides must not produce an update: %+v", update.ImageConfig)
	}
}
