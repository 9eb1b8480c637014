// Package s3batch provides functional options for configuring client
// behavior. These options follow the functional options pattern for clean,
// composable configuration.
package s3batch

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/batchlabs/s3batch/batchtypes"
)

// WithRegion sets the AWS region for store operations.
// If not specified, uses the default region from the credential chain.
func WithRegion(region string) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom store endpoint URL. This is useful for
// S3-compatible services or local testing.
func WithEndpoint(endpoint string) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials sets a static access key pair, bypassing the
// default credential chain. Typical for S3-compatible endpoints.
func WithStaticCredentials(accessKey, secretKey string) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed
// store calls. Default is 3 retries.
func WithMaxRetries(maxRetries int) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual store calls.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default concurrency ceiling new requests start
// from. Zero (the default) means unbounded; individual requests can
// override it with Request.Concurrency.
func WithConcurrency(concurrency int) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of
// virtual-hosted style. This is required for S3-compatible services that
// don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts and proxies.
func WithCustomHTTPClient(client *http.Client) batchtypes.Option {
	return func(c *batchtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}
