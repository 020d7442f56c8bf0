package sources

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/systmms/kpsec/pkg/vault"
)

// SecretsManagerClientAPI is the subset of the AWS Secrets Manager client
// this source uses. It allows mocking in tests.
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSecretsManagerSource reads secrets from AWS Secrets Manager, so a
// vault's master key can live in AWS instead of on the local machine.
type AWSSecretsManagerSource struct {
	name   string
	client SecretsManagerClientAPI
	region string
}

// AWSOption configures an AWSSecretsManagerSource.
type AWSOption func(*AWSSecretsManagerSource)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing).
func WithSecretsManagerClient(client SecretsManagerClientAPI) AWSOption {
	return func(s *AWSSecretsManagerSource) {
		s.client = client
	}
}

// NewAWSSecretsManagerSource creates an AWS Secrets Manager source from
// configuration. Recognized keys: "region" (default us-east-1),
// "endpoint" (LocalStack or testing), and "access_key_id" /
// "secret_access_key" for static credentials; otherwise the default AWS
// credential chain applies.
func NewAWSSecretsManagerSource(name string, cfg map[string]interface{}, opts ...AWSOption) (*AWSSecretsManagerSource, error) {
	region := "us-east-1"
	if r, ok := cfg["region"].(string); ok && r != "" {
		region = r
	}

	var endpoint string
	if e, ok := cfg["endpoint"].(string); ok && e != "" {
		endpoint = e
	}

	var accessKeyID, secretAccessKey string
	if ak, ok := cfg["access_key_id"].(string); ok && ak != "" {
		accessKeyID = ak
	}
	if sk, ok := cfg["secret_access_key"].(string); ok && sk != "" {
		secretAccessKey = sk
	}

	src := &AWSSecretsManagerSource{name: name, region: region}
	for _, opt := range opts {
		opt(src)
	}

	if src.client == nil {
		configOpts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(region),
		}
		if accessKeyID != "" && secretAccessKey != "" {
			configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
			))
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), configOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		var clientOpts []func(*secretsmanager.Options)
		if endpoint != "" {
			clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		src.client = secretsmanager.NewFromConfig(awsCfg, clientOpts...)
	}

	return src, nil
}

// ReadSecret implements vault.SecretSource.
func (s *AWSSecretsManagerSource) ReadSecret(ctx context.Context, name string) (vault.Secret, error) {
	out, err := s.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return vault.Secret{}, vault.NotFoundError{Vault: s.name, Name: name}
		}
		return vault.Secret{}, fmt.Errorf("aws secretsmanager get %q: %w", name, err)
	}

	switch {
	case out.SecretString != nil:
		return vault.SecureSecret(*out.SecretString), nil
	case out.SecretBinary != nil:
		return vault.SecureSecret(string(out.SecretBinary)), nil
	default:
		return vault.Secret{}, fmt.Errorf("secret %q has no value", name)
	}
}
