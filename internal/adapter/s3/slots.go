// Package s3 implements the slot port on an S3-compatible object store
// (AWS S3 or MinIO). Each slot is one object under the configured prefix.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Zubairyounus99/Ztechai-Dashboard/internal/config"
)

// Slots stores named collections as JSON objects.
type Slots struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3 slot store. Credentials come from cfg when both keys
// are set, otherwise from the default AWS chain. opts are applied last and
// let callers replace the HTTP client.
func New(ctx context.Context, cfg config.S3, opts ...func(*s3.Options)) (*Slots, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// MinIO and older gateways reject streaming checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	}, func(o *s3.Options) {
		for _, opt := range opts {
			opt(o)
		}
	})
	return &Slots{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *Slots) key(name string) string {
	return path.Join(s.prefix, name+".json")
}

// Load returns the payload saved under name.
func (s *Slots) Load(ctx context.Context, name string) ([]byte, bool, error) {
	key := s.key(name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load slot %s: %w", name, err)
	}
	defer func() { _ = out.Body.Close() }()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", name, err)
	}
	return payload, true, nil
}

// Save replaces the object for name.
func (s *Slots) Save(ctx context.Context, name string, payload []byte) error {
	key := s.key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("save slot %s: %w", name, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *Slots) Close() error { return nil }

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re interface{ HTTPStatusCode() int }
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
