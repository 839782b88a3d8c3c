// Where: cli/internal/infra/aws/s3.go
// What: S3 SDK adapter for artifact uploads.
// Why: Push packaged zips to the deployment bucket ahead of code updates.
package aws

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client adapts the S3 SDK to the deployer's artifact upload port.
type S3Client struct {
	client *s3.Client
}

// UploadArtifact streams a local artifact file to the deployment bucket.
func (c *S3Client) UploadArtifact(ctx context.Context, bucket, key, localPath string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open artifact %s: %w", localPath, err)
	}
	defer file.Close()

	_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", localPath, bucket, key, err)
	}
	return nil
}
