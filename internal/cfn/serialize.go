// Where: cli/internal/cfn/serialize.go
// What: Template document serialization with stable key order.
// Why: Byte-identical output for identical graphs keeps stack diffs clean.
package cfn

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// TemplateFormatVersion is the CloudFormation format version emitted in
// every compiled template.
const TemplateFormatVersion = "2010-09-09"

// MarshalTemplate serializes the graph as a CloudFormation template
// document. Resources and Outputs appear in insertion order; keys inside
// each resource are sorted by encoding/json, so the whole document is
// deterministic for a given graph.
func MarshalTemplate(g *Graph, description string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	fmt.Fprintf(&buf, "  %q: %q,\n", "AWSTemplateFormatVersion", TemplateFormatVersion)
	if description != "" {
		fmt.Fprintf(&buf, "  %q: %q,\n", "Description", description)
	}

	buf.WriteString("  \"Resources\": {")
	for i, id := range g.resourceOrder {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
		entry, err := marshalResource(g.resources[id])
		if err != nil {
			return nil, fmt.Errorf("marshal resource %s: %w", id, err)
		}
		fmt.Fprintf(&buf, "    %q: %s", id, entry)
	}
	buf.WriteString("\n  }")

	if len(g.outputOrder) > 0 {
		buf.WriteString(",\n  \"Outputs\": {")
		for i, name := range g.outputOrder {
			if i > 0 {
				buf.WriteString(",")
			}
			buf.WriteString("\n")
			valueJSON, err := json.Marshal(map[string]any{"Value": g.outputs[name]})
			if err != nil {
				return nil, fmt.Errorf("marshal output %s: %w", name, err)
			}
			fmt.Fprintf(&buf, "    %q: %s", name, valueJSON)
		}
		buf.WriteString("\n  }")
	}

	buf.WriteString("\n}\n")
	return buf.Bytes(), nil
}

// MarshalTemplateYAML serializes the graph as YAML. Key order follows YAML
// map conventions rather than insertion order; use MarshalTemplate when the
// document feeds a stack diff.
func MarshalTemplateYAML(g *Graph, description string) ([]byte, error) {
	jsonDoc, err := MarshalTemplate(g, description)
	if err != nil {
		return nil, err
	}
	out, err := yaml.JSONToYAML(jsonDoc)
	if err != nil {
		return nil, fmt.Errorf("convert template to yaml: %w", err)
	}
	return out, nil
}

func marshalResource(res Resource) ([]byte, error) {
	entry := map[string]any{
		"Type": res.Type,
	}
	if len(res.Properties) > 0 {
		entry["Properties"] = res.Properties
	}
	if len(res.DependsOn) > 0 {
		entry["DependsOn"] = res.DependsOn
	}
	return json.Marshal(entry)
}
