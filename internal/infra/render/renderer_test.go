// Where: cli/internal/infra/render/renderer_test.go
// What: Tests for core stack skeleton rendering.
// Why: The skeleton must render valid JSON for every bucket configuration.
package render

import "testing"

func TestRenderCoreStackDefaults(t *testing.T) {
	core, err := RenderCoreStack(CoreStackData{Service: "orders", Stage: "dev"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	bucket, ok := core.Resources["DeploymentBucket"].(map[string]any)
	if !ok {
		t.Fatalf("DeploymentBucket missing: %v", core.Resources)
	}
	props := bucket["Properties"].(map[string]any)
	if props["BucketName"] != "orders-dev-deploys" {
		t.Errorf("BucketName = %v", props["BucketName"])
	}
	if _, ok := core.Outputs["DeploymentBucketName"]; !ok {
		t.Errorf("DeploymentBucketName output missing")
	}
}

func TestRenderCoreStackExplicitBucket(t *testing.T) {
	core, err := RenderCoreStack(CoreStackData{
		Service:           "orders",
		Stage:             "dev",
		BucketName:        "my-artifacts",
		BlockPublicAccess: true,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	bucket := core.Resources["DeploymentBucket"].(map[string]any)
	props := bucket["Properties"].(map[string]any)
	if props["BucketName"] != "my-artifacts" {
		t.Errorf("BucketName = %v", props["BucketName"])
	}
	if _, ok := props["PublicAccessBlockConfiguration"]; !ok {
		t.Errorf("public access block not rendered")
	}
}

func TestRenderCoreStackLowercasesBucketName(t *testing.T) {
	core, err := RenderCoreStack(CoreStackData{Service: "Orders", Stage: "Dev"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	bucket := core.Resources["DeploymentBucket"].(map[string]any)
	props := bucket["Properties"].(map[string]any)
	if props["BucketName"] != "orders-dev-deploys" {
		t.Errorf("BucketName = %v", props["BucketName"])
	}
}
