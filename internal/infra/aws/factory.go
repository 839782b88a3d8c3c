// Where: cli/internal/infra/aws/factory.go
// What: AWS client factory for Lambda and S3.
// Why: Encapsulate SDK configuration, including local emulator endpoints.
package aws

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Environment overrides for targeting a local AWS-compatible stack.
const (
	envEndpoint  = "FLINT_ENDPOINT"
	envAccessKey = "FLINT_ACCESS_KEY"
	envSecretKey = "FLINT_SECRET_KEY"
)

// ClientFactory builds provider clients for one region.
type ClientFactory struct {
	Region string
}

// Lambda returns the Lambda adapter.
func (f ClientFactory) Lambda(ctx context.Context) (*LambdaClient, error) {
	cfg, err := f.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := lambda.NewFromConfig(cfg, func(options *lambda.Options) {
		if endpoint := os.Getenv(envEndpoint); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &LambdaClient{client: client}, nil
}

// S3 returns the artifact upload adapter.
func (f ClientFactory) S3(ctx context.Context) (*S3Client, error) {
	cfg, err := f.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint := os.Getenv(envEndpoint); endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return &S3Client{client: client}, nil
}

func (f ClientFactory) loadConfig(ctx context.Context) (aws.Config, error) {
	loadOptions := []func(*config.LoadOptions) error{}
	if f.Region != "" {
		loadOptions = append(loadOptions, config.WithRegion(f.Region))
	}
	// A local endpoint implies static throwaway credentials, matching the
	// conventions of AWS-compatible emulators.
	if os.Getenv(envEndpoint) != "" {
		accessKey := envDefault(envAccessKey, "flint")
		secretKey := envDefault(envSecretKey, "flint")
		loadOptions = append(loadOptions,
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}
	return config.LoadDefaultConfig(ctx, loadOptions...)
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
