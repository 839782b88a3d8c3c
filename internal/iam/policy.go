// Where: cli/internal/iam/policy.go
// What: Aggregation of per-event permission requirements into policy statements.
// Why: Emit one minimal statement per distinct (effect, actions) group.
package iam

import (
	"encoding/json"
	"sort"
	"strings"
)

// Effect values used in policy statements.
const (
	EffectAllow = "Allow"
	EffectDeny  = "Deny"
)

// PermissionRequirement is one grant requested by an event compiler for the
// execution role. Resources may be concrete ARNs or intrinsic references.
type PermissionRequirement struct {
	Effect    string
	Actions   []string
	Resources []any
}

// PolicyStatement is one merged statement attached to the execution role.
type PolicyStatement struct {
	Effect   string
	Action   []string
	Resource []any
}

// Map renders the statement in policy-document form.
func (s PolicyStatement) Map() map[string]any {
	return map[string]any{
		"Effect":   s.Effect,
		"Action":   s.Action,
		"Resource": s.Resource,
	}
}

// Aggregator collects requirements across all event compilers and merges
// them on finalization. Zero value is ready to use.
type Aggregator struct {
	groupOrder []string
	groups     map[string]*statementGroup
}

type statementGroup struct {
	effect        string
	actions       []string
	resourceOrder []string
	resources     map[string]any
}

// AddRequirement records one requirement. Requirements sharing an identical
// (effect, actions) pair land in one statement; differing action sets always
// stay separate so each compiler's least-privilege intent survives merging.
// A wildcard resource never merges into a statement holding concrete ARNs
// for the same actions.
func (a *Aggregator) AddRequirement(req PermissionRequirement) {
	if len(req.Actions) == 0 {
		return
	}
	if a.groups == nil {
		a.groups = map[string]*statementGroup{}
	}

	effect := req.Effect
	if effect == "" {
		effect = EffectAllow
	}
	actions := append([]string(nil), req.Actions...)
	sort.Strings(actions)
	key := effect + "|" + strings.Join(actions, ",") + "|" + wildcardMarker(req.Resources)

	group, ok := a.groups[key]
	if !ok {
		group = &statementGroup{
			effect:    effect,
			actions:   actions,
			resources: map[string]any{},
		}
		a.groups[key] = group
		a.groupOrder = append(a.groupOrder, key)
	}
	for _, resource := range req.Resources {
		fingerprint := resourceFingerprint(resource)
		if _, seen := group.resources[fingerprint]; seen {
			continue
		}
		group.resources[fingerprint] = resource
		group.resourceOrder = append(group.resourceOrder, fingerprint)
	}
}

// Finalize returns the merged statements in first-contribution order. Each
// statement's resource list is the deduplicated union of every contributing
// requirement's resources.
func (a *Aggregator) Finalize() []PolicyStatement {
	out := make([]PolicyStatement, 0, len(a.groupOrder))
	for _, key := range a.groupOrder {
		group := a.groups[key]
		resources := make([]any, 0, len(group.resourceOrder))
		for _, fingerprint := range group.resourceOrder {
			resources = append(resources, group.resources[fingerprint])
		}
		out = append(out, PolicyStatement{
			Effect:   group.effect,
			Action:   append([]string(nil), group.actions...),
			Resource: resources,
		})
	}
	return out
}

// wildcardMarker separates wildcard grants from concrete-ARN grants so the
// two never merge for the same action set.
func wildcardMarker(resources []any) string {
	for _, resource := range resources {
		if s, ok := resource.(string); ok && s == "*" {
			return "wildcard"
		}
	}
	return "arn"
}

func resourceFingerprint(resource any) string {
	if s, ok := resource.(string); ok {
		return "s:" + s
	}
	data, err := json.Marshal(resource)
	if err != nil {
		return "x:unmarshalable"
	}
	return "j:" + string(data)
}
