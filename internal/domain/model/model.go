// Where: cli/internal/domain/model/model.go
// What: Normalized service model consumed by the template compiler.
// Why: Give the compiler a fully resolved, read-only view of the service.
package model

// ServiceModel is the root of the normalized service description. It is fully
// variable-resolved before compilation begins; the compiler treats it as
// read-only.
type ServiceModel struct {
	Service   string
	Provider  ProviderConfig
	Functions []FunctionSpec
	Package   PackageRules
	Resources map[string]any
}

// Function returns the function with the given name, if declared.
func (m *ServiceModel) Function(name string) (FunctionSpec, bool) {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn, true
		}
	}
	return FunctionSpec{}, false
}

// ProviderConfig carries provider-level settings shared by all functions.
type ProviderConfig struct {
	Name             string
	Region           string
	Stage            string
	Runtime          string
	MemorySize       int
	Timeout          int
	Role             string
	Environment      map[string]string
	VPC              *VPCConfig
	DeploymentBucket DeploymentBucketConfig
	EventBridge      EventBridgeSettings
	// UseDotenv additionally excludes .env secret files from every artifact.
	UseDotenv bool
}

// DeploymentBucketConfig configures the bucket receiving packaged artifacts.
type DeploymentBucketConfig struct {
	Name              string
	BlockPublicAccess bool
}

// EventBridgeSettings selects the deployment strategy for eventBridge events.
// UseCloudFormation true (the default) compiles native AWS::Events resources;
// false provisions them through the custom-resource handler instead.
type EventBridgeSettings struct {
	UseCloudFormation *bool
}

// UseNativeResources reports whether eventBridge events compile to native
// CloudFormation resources.
func (s EventBridgeSettings) UseNativeResources() bool {
	if s.UseCloudFormation == nil {
		return true
	}
	return *s.UseCloudFormation
}

// VPCConfig attaches functions to subnets and security groups.
type VPCConfig struct {
	SecurityGroupIDs []string
	SubnetIDs        []string
}

// ImageConfig describes a container-image function. Mutually exclusive with
// Handler/Runtime on the same function.
type ImageConfig struct {
	URI              string
	Command          []string
	EntryPoint       []string
	WorkingDirectory string
}

// FunctionSpec describes one declared function. Events preserve declaration
// order; the event index used in naming is derived from position.
type FunctionSpec struct {
	Name                string
	Handler             string
	Runtime             string
	Image               *ImageConfig
	MemorySize          int
	Timeout             int
	Role                string
	Description         string
	Environment         map[string]string
	VPC                 *VPCConfig
	Layers              []string
	KMSKeyARN           string
	DeadLetterTargetARN string
	Events              []EventBinding
	Package             *PackageRules
}

// IsImage reports whether the function deploys as a container image.
func (f FunctionSpec) IsImage() bool {
	return f.Image != nil && f.Image.URI != ""
}

// PackageRules controls artifact membership for the service or one function.
type PackageRules struct {
	// Patterns are applied in declaration order. A plain pattern excludes
	// matching paths; a pattern prefixed with "!" re-includes them.
	Patterns     []string
	Individually bool
	Artifact     string
}

// EventKind tags one supported event source variant.
type EventKind string

const (
	KindEventBridge EventKind = "eventBridge"
	KindSQS         EventKind = "sqs"
	KindStream      EventKind = "stream"
	KindHTTPAPI     EventKind = "httpApi"
	KindSNS         EventKind = "sns"
)

// EventBinding is a tagged variant over the supported event kinds. Exactly
// one of the kind-specific configs is set, matching Kind.
type EventBinding struct {
	Kind        EventKind
	EventBridge *EventBridgeConfig
	SQS         *SQSConfig
	Stream      *StreamConfig
	HTTPAPI     *HTTPAPIConfig
	SNS         *SNSConfig
}

// EventBridgeConfig configures a schedule or pattern rule. EventBus may be a
// bus name, a bus ARN, or an intrinsic reference to a bus declared elsewhere
// in the stack; the custom-resource strategy rejects intrinsic references.
type EventBridgeConfig struct {
	Schedule         string
	Pattern          map[string]any
	EventBus         any
	Enabled          *bool
	Input            map[string]any
	InputPath        string
	InputTransformer *InputTransformer
	RetryPolicy      map[string]any
	DeadLetterQueue  string
}

// InputTransformer is passed through to the rule target as an opaque
// structure; the compiler never interprets the template expression.
type InputTransformer struct {
	InputPathsMap map[string]string
	InputTemplate string
}

// SQSConfig configures a queue event source mapping. BatchSize passes
// through uninterpreted; the provider enforces its own bounds.
type SQSConfig struct {
	ARN                   any
	BatchSize             *int
	MaximumBatchingWindow *int
	MaximumConcurrency    *int
	Enabled               *bool
	FunctionResponseType  string
	FilterPatterns        []map[string]any
}

// StreamConfig configures a Kinesis or DynamoDB stream mapping.
type StreamConfig struct {
	ARN                        any
	Type                       string
	BatchSize                  *int
	StartingPosition           string
	MaximumRetryAttempts       *int
	BisectBatchOnFunctionError *bool
	ParallelizationFactor      *int
	Enabled                    *bool
}

// HTTPAPIConfig configures one HTTP API route.
type HTTPAPIConfig struct {
	Path   string
	Method string
}

// SNSConfig configures a topic subscription. Either TopicARN references an
// existing topic or TopicName declares a new one in the stack.
type SNSConfig struct {
	TopicARN     any
	TopicName    string
	DisplayName  string
	FilterPolicy map[string]any
}
