// Package awscfg carga la configuración AWS compartida por S3 y DynamoDB.
package awscfg

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Options: Endpoint vacío usa los endpoints reales de AWS; con valor apunta a
// LocalStack / dynamodb-local.
type Options struct {
	Region   string
	Endpoint string
}

func Load(ctx context.Context, opts Options) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(strings.TrimSpace(opts.Region)))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	if ep := strings.TrimSpace(opts.Endpoint); ep != "" {
		cfg.BaseEndpoint = aws.String(ep)
	}
	return cfg, nil
}
