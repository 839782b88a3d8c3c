// Where: cli/internal/events/httpapi.go
// What: HTTP API route compilation.
// Why: Share one API and one per-function integration across all routes.
package events

import (
	"strings"

	"github.com/flintfn/flint/cli/internal/cfn"
	"github.com/flintfn/flint/cli/internal/domain/errcode"
	"github.com/flintfn/flint/cli/internal/domain/model"
	"github.com/flintfn/flint/cli/internal/naming"
)

var httpMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true,
	"DELETE": true, "HEAD": true, "OPTIONS": true, "ANY": true, "*": true,
}

type httpAPICompiler struct{}

func (httpAPICompiler) Kind() model.EventKind { return model.KindHTTPAPI }

func (httpAPICompiler) Validate(in Input) error {
	cfg := in.Binding.HTTPAPI
	if cfg == nil {
		return errcode.NewConfiguration(errcode.MissingEventField, "httpApi",
			"httpApi event on function %s has no configuration", in.Function.Name)
	}
	if cfg.Path == "" {
		return errcode.NewConfiguration(errcode.MissingEventField, "httpApi.path",
			"httpApi event on function %s requires a path", in.Function.Name)
	}
	if !strings.HasPrefix(cfg.Path, "/") && cfg.Path != "*" {
		return errcode.NewConfiguration(errcode.InvalidEventConfig, "httpApi.path",
			"httpApi path %q on function %s must start with /", cfg.Path, in.Function.Name)
	}
	if cfg.Method != "" && !httpMethods[strings.ToUpper(cfg.Method)] {
		return errcode.NewConfiguration(errcode.InvalidEventConfig, "httpApi.method",
			"httpApi method %q on function %s is not a supported method", cfg.Method, in.Function.Name)
	}
	return nil
}

// Compile emits the shared API and stage, a per-function integration, and a
// per-binding route. The shared resources are contributed identically by
// every route so repeated contributions collapse onto single resources.
func (c httpAPICompiler) Compile(in Input) (Result, error) {
	if err := c.Validate(in); err != nil {
		return Result{}, err
	}
	cfg := in.Binding.HTTPAPI
	graph := cfn.NewGraph()

	if err := graph.AddResource(naming.HTTPAPILogicalID, "AWS::ApiGatewayV2::Api", map[string]any{
		"Name":         in.Service + "-" + in.Provider.Stage,
		"ProtocolType": "HTTP",
	}); err != nil {
		return Result{}, err
	}
	if err := graph.AddResource(naming.HTTPAPIStageLogicalID, "AWS::ApiGatewayV2::Stage", map[string]any{
		"ApiId":      cfn.Ref(naming.HTTPAPILogicalID),
		"StageName":  "$default",
		"AutoDeploy": true,
	}, naming.HTTPAPILogicalID); err != nil {
		return Result{}, err
	}

	integrationID := naming.HTTPAPIIntegrationLogicalID(in.Function.Name)
	if err := graph.AddResource(integrationID, "AWS::ApiGatewayV2::Integration", map[string]any{
		"ApiId":                cfn.Ref(naming.HTTPAPILogicalID),
		"IntegrationType":      "AWS_PROXY",
		"IntegrationUri":       cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"PayloadFormatVersion": "2.0",
	}, naming.HTTPAPILogicalID, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	routeID := naming.HTTPAPIRouteLogicalID(in.Function.Name, in.Index)
	if err := graph.AddResource(routeID, "AWS::ApiGatewayV2::Route", map[string]any{
		"ApiId":    cfn.Ref(naming.HTTPAPILogicalID),
		"RouteKey": routeKey(cfg),
		"Target":   cfn.Join("/", []any{"integrations", cfn.Ref(integrationID)}),
	}, integrationID); err != nil {
		return Result{}, err
	}

	permissionID := naming.HTTPAPIPermissionLogicalID(in.Function.Name)
	if err := graph.AddResource(permissionID, "AWS::Lambda::Permission", map[string]any{
		"FunctionName": cfn.GetAtt(in.FunctionLogicalID, "Arn"),
		"Action":       "lambda:InvokeFunction",
		"Principal":    "apigateway.amazonaws.com",
		"SourceArn":    cfn.Sub("arn:${AWS::Partition}:execute-api:${AWS::Region}:${AWS::AccountId}:${" + naming.HTTPAPILogicalID + "}/*"),
	}, naming.HTTPAPILogicalID, in.FunctionLogicalID); err != nil {
		return Result{}, err
	}

	if err := graph.AddOutput("HttpApiUrl", cfn.Sub(
		"https://${"+naming.HTTPAPILogicalID+"}.execute-api.${AWS::Region}.${AWS::URLSuffix}")); err != nil {
		return Result{}, err
	}

	return Result{Graph: graph}, nil
}

// routeKey maps path and method onto an API Gateway route key. A missing or
// wildcard method with a wildcard path selects the catch-all route.
func routeKey(cfg *model.HTTPAPIConfig) string {
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = "ANY"
	}
	if (method == "*" || method == "ANY") && cfg.Path == "*" {
		return "$default"
	}
	if method == "*" {
		method = "ANY"
	}
	return method + " " + cfg.Path
}
