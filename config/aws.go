package config

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// AWSOptions select how the S3 backend authenticates.
type AWSOptions struct {
	Region string
	// AccessKey and SecretKey, when both set, replace the default
	// credential chain.
	AccessKey  string
	SecretKey  string
	HTTPClient *http.Client
}

// LoadAWSConfig resolves the SDK configuration from the default chain
// (environment, shared files, instance role) plus opts.
func LoadAWSConfig(ctx context.Context, opts AWSOptions) (aws.Config, error) {
	var loadOptions []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOptions = append(loadOptions, awsconfig.WithRegion(opts.Region))
	}
	if opts.HTTPClient != nil {
		loadOptions = append(loadOptions, awsconfig.WithHTTPClient(opts.HTTPClient))
	}
	switch {
	case opts.AccessKey != "" && opts.SecretKey != "":
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	case opts.AccessKey != "" || opts.SecretKey != "":
		return aws.Config{}, fmt.Errorf("access key and secret key must be given together")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}
	return cfg, nil
}
