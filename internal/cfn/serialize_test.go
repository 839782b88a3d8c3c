// Where: cli/internal/cfn/serialize_test.go
// What: Tests for template serialization.
// Why: Byte-identical output keeps stack diffs and re-deploys clean.
package cfn

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func buildGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	if err := g.AddResource("Second", "AWS::SNS::Topic", map[string]any{"TopicName": "b"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddResource("First", "AWS::SQS::Queue", map[string]any{"QueueName": "a"}, "Second"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.AddOutput("QueueArn", GetAtt("First", "Arn")); err != nil {
		t.Fatalf("output: %v", err)
	}
	return g
}

func TestMarshalTemplateDeterministic(t *testing.T) {
	first, err := MarshalTemplate(buildGraph(t), "test stack")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := MarshalTemplate(buildGraph(t), "test stack")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("identical graphs serialized differently:\n%s\n---\n%s", first, second)
	}
}

func TestMarshalTemplateShape(t *testing.T) {
	doc, err := MarshalTemplate(buildGraph(t), "test stack")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatalf("template is not valid JSON: %v", err)
	}
	if parsed["AWSTemplateFormatVersion"] != TemplateFormatVersion {
		t.Errorf("format version = %v", parsed["AWSTemplateFormatVersion"])
	}
	resources, ok := parsed["Resources"].(map[string]any)
	if !ok || len(resources) != 2 {
		t.Fatalf("Resources = %v", parsed["Resources"])
	}

	// Insertion order survives in the raw document even though JSON maps do
	// not define it.
	text := string(doc)
	if strings.Index(text, `"Second"`) > strings.Index(text, `"First"`) {
		t.Errorf("resource order not preserved:\n%s", text)
	}
}

func TestMarshalTemplateYAML(t *testing.T) {
	doc, err := MarshalTemplateYAML(buildGraph(t), "")
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if !strings.Contains(string(doc), "AWSTemplateFormatVersion:") {
		t.Fatalf("unexpected yaml:\n%s", doc)
	}
}

func TestIsIntrinsic(t *testing.T) {
	if !IsIntrinsic(Ref("Thing")) {
		t.Errorf("Ref not detected as intrinsic")
	}
	if !IsIntrinsic(GetAtt("Thing", "Arn")) {
		t.Errorf("GetAtt not detected as intrinsic")
	}
	if IsIntrinsic(map[string]any{"Ref": "a", "Extra": "b"}) {
		t.Errorf("two-key map misdetected as intrinsic")
	}
	if IsIntrinsic("plain string") {
		t.Errorf("string misdetected as intrinsic")
	}
}
