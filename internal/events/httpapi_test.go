// Where: cli/internal/events/httpapi_test.go
// What: Tests for HTTP API route compilation.
// Why: Routes share one API; repeated contributions must collapse.
package events

import (
	"testing"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/naming"
)

func TestHTTPAPIRoute(t *testing.T) {
	compiler, err := ForKind(model.KindHTTPAPI)
	if err != nil {
		t.Fatalf("ForKind: %v", err)
	}
	result, err := compiler.Compile(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{Path: "/orders", Method: "post"},
	}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	api, ok := result.Graph.Resource(naming.HTTPAPILogicalID)
	if !ok {
		t.Fatalf("shared api missing")
	}
	if api.Properties["Name"] != "svc-dev" {
		t.Errorf("api name = %v", api.Properties["Name"])
	}
	route, ok := result.Graph.Resource(naming.HTTPAPIRouteLogicalID("worker", 1))
	if !ok {
		t.Fatalf("route missing")
	}
	if route.Properties["RouteKey"] != "POST /orders" {
		t.Errorf("RouteKey = %v", route.Properties["RouteKey"])
	}
	if _, ok := result.Graph.Output("HttpApiUrl"); !ok {
		t.Errorf("HttpApiUrl output missing")
	}
}

func TestHTTPAPIDefaultMethodIsANY(t *testing.T) {
	compiler, _ := ForKind(model.KindHTTPAPI)
	result, err := compiler.Compile(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{Path: "/orders"},
	}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	route, _ := result.Graph.Resource(naming.HTTPAPIRouteLogicalID("worker", 1))
	if route.Properties["RouteKey"] != "ANY /orders" {
		t.Errorf("RouteKey = %v", route.Properties["RouteKey"])
	}
}

func TestHTTPAPICatchAllRoute(t *testing.T) {
	compiler, _ := ForKind(model.KindHTTPAPI)
	result, err := compiler.Compile(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{Path: "*", Method: "*"},
	}))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	route, _ := result.Graph.Resource(naming.HTTPAPIRouteLogicalID("worker", 1))
	if route.Properties["RouteKey"] != "$default" {
		t.Errorf("RouteKey = %v", route.Properties["RouteKey"])
	}
}

func TestHTTPAPISharedResourcesMergeAcrossRoutes(t *testing.T) {
	compiler, _ := ForKind(model.KindHTTPAPI)
	merged := cfn.NewGraph()

	for i, path := range []string{"/a", "/b"} {
		in := bindingInput(model.EventBinding{
			Kind:    model.KindHTTPAPI,
			HTTPAPI: &model.HTTPAPIConfig{Path: path, Method: "GET"},
		})
		in.Index = i + 1
		result, err := compiler.Compile(in)
		if err != nil {
			t.Fatalf("compile %s: %v", path, err)
		}
		if err := merged.Merge(result.Graph); err != nil {
			t.Fatalf("merge %s: %v", path, err)
		}
	}

	// One api, one stage, one integration, two routes, one permission.
	if merged.Len() != 6 {
		t.Fatalf("expected 6 resources, got %d: %v", merged.Len(), merged.ResourceIDs())
	}
}

func TestHTTPAPIValidation(t *testing.T) {
	compiler, _ := ForKind(model.KindHTTPAPI)

	err := compiler.Validate(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{},
	}))
	if code := configurationCode(t, err); code != errcode.MissingEventField {
		t.Errorf("missing path code = %s", code)
	}

	err = compiler.Validate(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{Path: "orders"},
	}))
	if code := configurationCode(t, err); code != errcode.InvalidEventConfig {
		t.Errorf("relative path code = %s", code)
	}

	err = compiler.Validate(bindingInput(model.EventBinding{
		Kind:    model.KindHTTPAPI,
		HTTPAPI: &model.HTTPAPIConfig{Path: "/orders", Method: "FETCH"},
	}))
	if code := configurationCode(t, err); code != errcode.InvalidEventConfig {
		t.Errorf("bad method code = %s", code)
	}
}
