// Package sink delivers export files to their destination.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Sink stores one named export and returns where it went.
type Sink interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// ErrInvalidName is returned for names that are empty or contain a path.
var ErrInvalidName = errors.New("invalid export name")

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// FileSink writes exports into a directory.
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink writing into dir, created on first use.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Put writes data to Dir/name.
func (s *FileSink) Put(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", s.Dir, err)
	}
	target := filepath.Join(s.Dir, name)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", target, err)
	}
	return target, nil
}

// WriterSink copies exports to a writer, typically stdout.
type WriterSink struct {
	W io.Writer
}

// Put writes data to W.
func (s *WriterSink) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	if _, err := s.W.Write(data); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", name, err)
	}
	return name, nil
}

// PutObjectAPI is the part of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exports to a bucket under an optional key prefix.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// NewS3Sink returns a sink uploading through client.
func NewS3Sink(client PutObjectAPI, bucket, prefix string) (*S3Sink, error) {
	if bucket == "" {
		return nil, errors.New("s3 sink: bucket is required")
	}
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}, nil
}

// DefaultRegion is used when the AWS profile does not name one.
const DefaultRegion = "us-east-1"

// LoadS3Client builds an S3 client from the default AWS credential chain.
func LoadS3Client(ctx context.Context, profile string) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithDefaultRegion(DefaultRegion)}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Key returns the object key for name.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Put uploads data as bucket/prefix/name and returns its s3:// URI.
func (s *S3Sink) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	key := s.Key(name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
