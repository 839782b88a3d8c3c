// Where: cli/internal/domain/model/loader.go
// What: Service configuration loader with schema validation and defaults.
// Why: Hand the compiler a normalized model, rejecting unknown fields early.
package model

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/flintfn/flint/cli/assets"
	"github.com/flintfn/flint/cli/internal/domain/value"
)

// Provider defaults applied when the configuration omits a value.
const (
	DefaultStage      = "dev"
	DefaultRegion     = "us-east-1"
	DefaultRuntime    = "nodejs20.x"
	DefaultMemorySize = 1024
	DefaultTimeout    = 6
)

const schemaURL = "flint://service.schema.json"

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

// Load reads and parses the service configuration file.
func Load(path string) (*ServiceModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service configuration %s: %w", path, err)
	}
	service, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return service, nil
}

// Parse validates the configuration against the embedded schema, decodes it
// strictly, and applies provider defaults. Unknown fields are rejected.
func Parse(data []byte) (*ServiceModel, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("validate service configuration: %w", err)
	}

	var doc serviceDoc
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode service configuration: %w", err)
	}

	service := doc.toModel()
	applyDefaults(service)
	return service, nil
}

func validateSchema(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}
	jsonData, err := sigsyaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	document, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return sch.Validate(document)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := assets.SchemaFS.ReadFile("schema/service.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("read embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
			schemaErr = fmt.Errorf("register schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

func applyDefaults(service *ServiceModel) {
	provider := &service.Provider
	if provider.Name == "" {
		provider.Name = "aws"
	}
	if provider.Stage == "" {
		provider.Stage = DefaultStage
	}
	if provider.Region == "" {
		provider.Region = DefaultRegion
	}
	if provider.Runtime == "" {
		provider.Runtime = DefaultRuntime
	}
	if provider.MemorySize == 0 {
		provider.MemorySize = DefaultMemorySize
	}
	if provider.Timeout == 0 {
		provider.Timeout = DefaultTimeout
	}
}

// Document types mirror the YAML surface. Mapping order for functions is
// program-significant, so functions decode through an order-preserving list.

type serviceDoc struct {
	Service   string         `yaml:"service"`
	Provider  providerDoc    `yaml:"provider"`
	Package   *packageDoc    `yaml:"package"`
	Functions functionList   `yaml:"functions"`
	Resources map[string]any `yaml:"resources"`
}

type providerDoc struct {
	Name             string          `yaml:"name"`
	Region           string          `yaml:"region"`
	Stage            string          `yaml:"stage"`
	Runtime          string          `yaml:"runtime"`
	MemorySize       int             `yaml:"memorySize"`
	Timeout          int             `yaml:"timeout"`
	Role             string          `yaml:"role"`
	Environment      map[string]any  `yaml:"environment"`
	VPC              *vpcDoc         `yaml:"vpc"`
	DeploymentBucket *bucketDoc      `yaml:"deploymentBucket"`
	EventBridge      *eventBridgeSet `yaml:"eventBridge"`
	UseDotenv        bool            `yaml:"useDotenv"`
}

type bucketDoc struct {
	Name              string `yaml:"name"`
	BlockPublicAccess bool   `yaml:"blockPublicAccess"`
}

type eventBridgeSet struct {
	UseCloudFormation *bool `yaml:"useCloudFormation"`
}

type vpcDoc struct {
	SecurityGroupIDs []string `yaml:"securityGroupIds"`
	SubnetIDs        []string `yaml:"subnetIds"`
}

type packageDoc struct {
	Patterns     []string `yaml:"patterns"`
	Individually bool     `yaml:"individually"`
	Artifact     string   `yaml:"artifact"`
}

type functionDoc struct {
	Handler     string         `yaml:"handler"`
	Runtime     string         `yaml:"runtime"`
	Image       *imageDoc      `yaml:"image"`
	MemorySize  int            `yaml:"memorySize"`
	Timeout     int            `yaml:"timeout"`
	Role        string         `yaml:"role"`
	Description string         `yaml:"description"`
	Environment map[string]any `yaml:"environment"`
	VPC         *vpcDoc        `yaml:"vpc"`
	Layers      []string       `yaml:"layers"`
	KMSKeyARN   string         `yaml:"kmsKeyArn"`
	OnError     string         `yaml:"onError"`
	Events      []eventDoc     `yaml:"events"`
	Package     *packageDoc    `yaml:"package"`
}

type imageDoc struct {
	URI              string   `yaml:"uri"`
	Command          []string `yaml:"command"`
	EntryPoint       []string `yaml:"entryPoint"`
	WorkingDirectory string   `yaml:"workingDirectory"`
}

type eventDoc struct {
	EventBridge *eventBridgeDoc `yaml:"eventBridge"`
	SQS         *sqsDoc         `yaml:"sqs"`
	Stream      *streamDoc      `yaml:"stream"`
	HTTPAPI     *httpAPIDoc     `yaml:"httpApi"`
	SNS         *snsDoc         `yaml:"sns"`
}

type eventBridgeDoc struct {
	Schedule         string               `yaml:"schedule"`
	Pattern          map[string]any       `yaml:"pattern"`
	EventBus         any                  `yaml:"eventBus"`
	Enabled          *bool                `yaml:"enabled"`
	Input            map[string]any       `yaml:"input"`
	InputPath        string               `yaml:"inputPath"`
	InputTransformer *inputTransformerDoc `yaml:"inputTransformer"`
	RetryPolicy      map[string]any       `yaml:"retryPolicy"`
	DeadLetterQueue  string               `yaml:"deadLetterQueue"`
}

type inputTransformerDoc struct {
	InputPathsMap map[string]string `yaml:"inputPathsMap"`
	InputTemplate string            `yaml:"inputTemplate"`
}

type sqsDoc struct {
	ARN                   any              `yaml:"arn"`
	BatchSize             *int             `yaml:"batchSize"`
	MaximumBatchingWindow *int             `yaml:"maximumBatchingWindow"`
	MaximumConcurrency    *int             `yaml:"maximumConcurrency"`
	Enabled               *bool            `yaml:"enabled"`
	FunctionResponseType  string           `yaml:"functionResponseType"`
	FilterPatterns        []map[string]any `yaml:"filterPatterns"`
}

type streamDoc struct {
	ARN                        any    `yaml:"arn"`
	Type                       string `yaml:"type"`
	BatchSize                  *int   `yaml:"batchSize"`
	StartingPosition           string `yaml:"startingPosition"`
	MaximumRetryAttempts       *int   `yaml:"maximumRetryAttempts"`
	BisectBatchOnFunctionError *bool  `yaml:"bisectBatchOnFunctionError"`
	ParallelizationFactor      *int   `yaml:"parallelizationFactor"`
	Enabled                    *bool  `yaml:"enabled"`
}

type httpAPIDoc struct {
	Path   string `yaml:"path"`
	Method string `yaml:"method"`
}

type snsDoc struct {
	ARN          any            `yaml:"arn"`
	TopicName    string         `yaml:"topicName"`
	DisplayName  string         `yaml:"displayName"`
	FilterPolicy map[string]any `yaml:"filterPolicy"`
}

// functionList preserves the declaration order of the functions mapping.
type functionList []namedFunction

type namedFunction struct {
	Name string
	Doc  functionDoc
}

func (l *functionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("functions must be a mapping, got %s", node.Tag)
	}
	out := make(functionList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var entry namedFunction
		if err := node.Content[i].Decode(&entry.Name); err != nil {
			return fmt.Errorf("decode function name: %w", err)
		}
		if err := node.Content[i+1].Decode(&entry.Doc); err != nil {
			return fmt.Errorf("decode function %s: %w", entry.Name, err)
		}
		out = append(out, entry)
	}
	*l = out
	return nil
}

func (d serviceDoc) toModel() *ServiceModel {
	service := &ServiceModel{
		Service: d.Service,
		Provider: ProviderConfig{
			Name:        d.Provider.Name,
			Region:      d.Provider.Region,
			Stage:       d.Provider.Stage,
			Runtime:     d.Provider.Runtime,
			MemorySize:  d.Provider.MemorySize,
			Timeout:     d.Provider.Timeout,
			Role:        d.Provider.Role,
			Environment: toStringMap(d.Provider.Environment),
			VPC:         d.Provider.VPC.toModel(),
			UseDotenv:   d.Provider.UseDotenv,
		},
		Resources: d.Resources,
	}
	if d.Provider.DeploymentBucket != nil {
		service.Provider.DeploymentBucket = DeploymentBucketConfig{
			Name:              d.Provider.DeploymentBucket.Name,
			BlockPublicAccess: d.Provider.DeploymentBucket.BlockPublicAccess,
		}
	}
	if d.Provider.EventBridge != nil {
		service.Provider.EventBridge = EventBridgeSettings{
			UseCloudFormation: d.Provider.EventBridge.UseCloudFormation,
		}
	}
	if d.Package != nil {
		service.Package = d.Package.toModel()
	}
	for _, entry := range d.Functions {
		service.Functions = append(service.Functions, entry.Doc.toModel(entry.Name))
	}
	return service
}

func (d *vpcDoc) toModel() *VPCConfig {
	if d == nil {
		return nil
	}
	return &VPCConfig{
		SecurityGroupIDs: d.SecurityGroupIDs,
		SubnetIDs:        d.SubnetIDs,
	}
}

func (d packageDoc) toModel() PackageRules {
	return PackageRules{
		Patterns:     d.Patterns,
		Individually: d.Individually,
		Artifact:     d.Artifact,
	}
}

func (d functionDoc) toModel(name string) FunctionSpec {
	fn := FunctionSpec{
		Name:                name,
		Handler:             d.Handler,
		Runtime:             d.Runtime,
		MemorySize:          d.MemorySize,
		Timeout:             d.Timeout,
		Role:                d.Role,
		Description:         d.Description,
		Environment:         toStringMap(d.Environment),
		VPC:                 d.VPC.toModel(),
		Layers:              d.Layers,
		KMSKeyARN:           d.KMSKeyARN,
		DeadLetterTargetARN: d.OnError,
	}
	if d.Image != nil {
		fn.Image = &ImageConfig{
			URI:              d.Image.URI,
			Command:          d.Image.Command,
			EntryPoint:       d.Image.EntryPoint,
			WorkingDirectory: d.Image.WorkingDirectory,
		}
	}
	if d.Package != nil {
		rules := d.Package.toModel()
		fn.Package = &rules
	}
	for _, event := range d.Events {
		fn.Events = append(fn.Events, event.toModel())
	}
	return fn
}

func (d eventDoc) toModel() EventBinding {
	switch {
	case d.EventBridge != nil:
		return EventBinding{Kind: KindEventBridge, EventBridge: &EventBridgeConfig{
			Schedule:         d.EventBridge.Schedule,
			Pattern:          d.EventBridge.Pattern,
			EventBus:         d.EventBridge.EventBus,
			Enabled:          d.EventBridge.Enabled,
			Input:            d.EventBridge.Input,
			InputPath:        d.EventBridge.InputPath,
			InputTransformer: d.EventBridge.InputTransformer.toModel(),
			RetryPolicy:      d.EventBridge.RetryPolicy,
			DeadLetterQueue:  d.EventBridge.DeadLetterQueue,
		}}
	case d.SQS != nil:
		return EventBinding{Kind: KindSQS, SQS: &SQSConfig{
			ARN:                   d.SQS.ARN,
			BatchSize:             d.SQS.BatchSize,
			MaximumBatchingWindow: d.SQS.MaximumBatchingWindow,
			MaximumConcurrency:    d.SQS.MaximumConcurrency,
			Enabled:               d.SQS.Enabled,
			FunctionResponseType:  d.SQS.FunctionResponseType,
			FilterPatterns:        d.SQS.FilterPatterns,
		}}
	case d.Stream != nil:
		return EventBinding{Kind: KindStream, Stream: &StreamConfig{
			ARN:                        d.Stream.ARN,
			Type:                       d.Stream.Type,
			BatchSize:                  d.Stream.BatchSize,
			StartingPosition:           d.Stream.StartingPosition,
			MaximumRetryAttempts:       d.Stream.MaximumRetryAttempts,
			BisectBatchOnFunctionError: d.Stream.BisectBatchOnFunctionError,
			ParallelizationFactor:      d.Stream.ParallelizationFactor,
			Enabled:                    d.Stream.Enabled,
		}}
	case d.HTTPAPI != nil:
		return EventBinding{Kind: KindHTTPAPI, HTTPAPI: &HTTPAPIConfig{
			Path:   d.HTTPAPI.Path,
			Method: d.HTTPAPI.Method,
		}}
	case d.SNS != nil:
		return EventBinding{Kind: KindSNS, SNS: &SNSConfig{
			TopicARN:     d.SNS.ARN,
			TopicName:    d.SNS.TopicName,
			DisplayName:  d.SNS.DisplayName,
			FilterPolicy: d.SNS.FilterPolicy,
		}}
	}
	return EventBinding{}
}

func (d *inputTransformerDoc) toModel() *InputTransformer {
	if d == nil {
		return nil
	}
	return &InputTransformer{
		InputPathsMap: d.InputPathsMap,
		InputTemplate: d.InputTemplate,
	}
}

func toStringMap(in map[string]any) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = value.AsString(v)
	}
	return out
}
