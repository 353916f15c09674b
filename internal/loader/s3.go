package loader

import (
	"context"
	"fmt"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/food"
)

const s3Scheme = "s3://"

// ObjectGetter is the subset of the S3 client used to fetch catalogs.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds the connection settings for s3:// sources. Credentials fall
// back to the default AWS chain when the static keys are empty.
type S3Config struct {
	Region          string
	Endpoint        string // optional; e.g. a MinIO URL
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// LoadObject reads a catalog from an S3 object.
func (l *Loader) LoadObject(ctx context.Context, bucket, key string) (food.Catalog, error) {
	if l.objects == nil {
		return nil, ErrNoObjectStore
	}

	out, err := l.objects.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	catalog, err := l.Parse(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog s3://%s/%s: %w", bucket, key, err)
	}
	l.logger.Info("catalog loaded",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("items", len(catalog)),
	)
	return catalog, nil
}

func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("%w: %q is not s3://bucket/key", ErrInvalidSource, uri)
	}
	return bucket, key, nil
}

// IsRemote reports whether source refers to object storage.
func IsRemote(source string) bool {
	return strings.HasPrefix(strings.TrimSpace(source), s3Scheme)
}
