// Package s3batch provides client initialization and configuration.
//
// The Client provides batch operations (ForEach, Each, Map, Reduce, Filter)
// over prefix-delimited sets of objects in S3-compatible stores, plus thin
// per-object helpers for get, put, copy and delete.
package s3batch

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/s3api"
)

// Client represents a batch client with configurable options. It is safe
// for concurrent use; each Context call produces an independent Request.
type Client struct {
	// api is the underlying store client
	api s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// concurrency is the default ceiling requests start from
	concurrency int
}

// New creates a new batch client with the provided options. It loads AWS
// credentials using the default credential chain and applies the specified
// configuration options.
//
// Example:
//
//	client, err := s3batch.New(
//	    s3batch.WithRegion("us-west-2"),
//	    s3batch.WithMaxRetries(3),
//	)
func New(opts ...batchtypes.Option) (*Client, error) {
	clientCfg := &batchtypes.ClientConfig{
		MaxRetries: 3,
	}
	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.Endpoint != "" {
			loadOpts = append(loadOpts, config.WithBaseEndpoint(clientCfg.Endpoint))
		}
		if clientCfg.AccessKey != "" && clientCfg.SecretKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKey, clientCfg.SecretKey, "")))
		}
		cfg, err = config.LoadDefaultConfig(context.Background(), loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if clientCfg.CustomHTTPClient != nil {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = clientCfg.CustomHTTPClient
		})
	} else if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &Client{
		api:         s3.NewFromConfig(cfg, s3Opts...),
		config:      cfg,
		concurrency: clientCfg.Concurrency,
	}, nil
}

// NewWithClient creates a new batch client with a custom S3API
// implementation. This is primarily used for testing with mocked or
// in-memory stores.
func NewWithClient(api s3api.S3API) *Client {
	return &Client{
		api:    api,
		config: aws.Config{},
	}
}
