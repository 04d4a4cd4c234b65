// Package s3store fetches objects from an S3 bucket.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/AnyUserName/pixhash/internal/apperr"
)

// GetObjectAPI is the subset of *s3.Client the store uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads keys from one bucket.
type Store struct {
	client GetObjectAPI
	bucket string
}

// New wraps an existing client.
func New(client GetObjectAPI, bucket string) *Store {
	return &Store{client: client, bucket: bucket}
}

// NewDefault builds a client from the default credential chain. The client
// is created once and reused across requests.
func NewDefault(ctx context.Context, bucket, region string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return New(s3.NewFromConfig(cfg), bucket), nil
}

// Fetch downloads the object at key.
func (s *Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, apperr.Fetch(classify(err), key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, apperr.Fetch(apperr.FetchNetwork, key, fmt.Errorf("download body: %w", err))
	}
	return data, nil
}

func classify(err error) apperr.FetchKind {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return apperr.FetchNotFound
	}
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return apperr.FetchNotFound
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return apperr.FetchNotFound
		case "AccessDenied", "Forbidden", "AllAccessDisabled",
			"InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return apperr.FetchAccessDenied
		}
	}
	return apperr.FetchNetwork
}
