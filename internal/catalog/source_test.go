package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshsymonds/policycheck/pkg/logger"
)

type fakeS3 struct {
	objects map[string]string
	err     error
	lastKey string
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastKey = aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[f.lastKey]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{uri: "s3://compliance/catalogs/controls.json", wantBucket: "compliance", wantKey: "catalogs/controls.json"},
		{uri: "s3://bucket/key", wantBucket: "bucket", wantKey: "key"},
		{uri: "https://bucket/key", wantErr: true},
		{uri: "s3://bucket", wantErr: true},
		{uri: "s3:///key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestS3Source(t *testing.T) {
	ctx := context.Background()
	client := &fakeS3{objects: map[string]string{"compliance/controls.json": singleControl}}

	src, err := NewS3Source(client, "s3://compliance/controls.json")
	require.NoError(t, err)
	assert.Equal(t, "s3://compliance/controls.json", src.Name())

	c := Load(ctx, logger.NewMockLogger(), src)
	assert.Len(t, c.NIST, 1)
	assert.Equal(t, "compliance/controls.json", client.lastKey)

	missing, err := NewS3Source(client, "s3://compliance/other.json")
	require.NoError(t, err)
	_, err = missing.Open(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	failing, err := NewS3Source(&fakeS3{err: errors.New("access denied")}, "s3://compliance/controls.json")
	require.NoError(t, err)
	_, err = failing.Open(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileSourceNotFound(t *testing.T) {
	_, err := FileSource("/nonexistent/controls.json").Open(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
