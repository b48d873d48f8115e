package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// EnvCatalogPath overrides the catalog location when set.
const EnvCatalogPath = "POLICYCHECK_CATALOG"

// ErrNotFound is returned by a Source whose document does not exist. Load
// moves on to the next candidate when it sees it.
var ErrNotFound = errors.New("catalog source not found")

// Source is a candidate location for a catalog document.
type Source interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads a catalog from the local filesystem.
type FileSource string

// Name implements Source.
func (f FileSource) Name() string { return string(f) }

// Open implements Source.
func (f FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	file, err := os.Open(string(f)) //nolint:gosec // Catalog paths come from configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", f, ErrNotFound)
		}
		return nil, fmt.Errorf("opening catalog file: %w", err)
	}
	return file, nil
}

// DefaultPaths returns the candidate catalog paths, most specific first.
func DefaultPaths() []string {
	var paths []string
	if env := os.Getenv(EnvCatalogPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths,
		filepath.Join("data", "controls.json"),
		filepath.Join("backend", "data", "controls.json"),
		filepath.Join("..", "data", "controls.json"),
	)
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "data", "controls.json"))
	}
	return paths
}

// DefaultSources returns FileSources for DefaultPaths.
func DefaultSources() []Source {
	paths := DefaultPaths()
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, FileSource(p))
	}
	return sources
}

// S3GetObjectAPI is the subset of the S3 client used by S3Source.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a catalog object from S3.
type S3Source struct {
	client S3GetObjectAPI
	bucket string
	key    string
}

// ParseS3URI splits an s3://bucket/key URI.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must be s3://bucket/key: %q", uri)
	}
	return bucket, key, nil
}

// NewS3Source creates a source for uri using the given client.
func NewS3Source(client S3GetObjectAPI, uri string) (*S3Source, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return &S3Source{client: client, bucket: bucket, key: key}, nil
}

// NewS3SourceFromEnv creates an S3Source using the default AWS credential chain.
// An empty region defers to the environment.
func NewS3SourceFromEnv(ctx context.Context, uri, region string) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3Source(s3.NewFromConfig(cfg), uri)
}

// Name implements Source.
func (s *S3Source) Name() string {
	return "s3://" + s.bucket + "/" + s.key
}

// Open implements Source.
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		var noBucket *types.NoSuchBucket
		if errors.As(err, &noKey) || errors.As(err, &noBucket) {
			return nil, fmt.Errorf("%s: %w", s.Name(), ErrNotFound)
		}
		return nil, fmt.Errorf("getting catalog object %s: %w", s.Name(), err)
	}
	return out.Body, nil
}
