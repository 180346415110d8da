package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putKey      string
	putBody     string
	putType     string
	putErr      error
	deletedKeys []string
	deleteErr   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.putKey = aws.ToString(in.Key)
	f.putBody = string(body)
	f.putType = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deletedKeys = append(f.deletedKeys, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestStore(client S3API) *S3Store {
	s := New(client, "media", "http://cdn.local/media/")
	s.now = func() time.Time { return time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestS3Store_Upload(t *testing.T) {
	client := &fakeS3{}
	store := newTestStore(client)
	path := writeTempFile(t, "avatar.PNG", "png-bytes")

	url, err := store.Upload(context.Background(), path)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(client.putKey, "images/2025/03/07/"))
	assert.True(t, strings.HasSuffix(client.putKey, ".png"))
	assert.Equal(t, "png-bytes", client.putBody)
	assert.Equal(t, "image/png", client.putType)
	assert.Equal(t, "http://cdn.local/media/"+client.putKey, url)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "local file should be removed")
}

func TestS3Store_Upload_PutError(t *testing.T) {
	client := &fakeS3{putErr: errors.New("s3 down")}
	store := newTestStore(client)
	path := writeTempFile(t, "cover.jpg", "jpg")

	url, err := store.Upload(context.Background(), path)
	assert.Error(t, err)
	assert.Empty(t, url)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "local file should be removed on failure too")
}

func TestS3Store_Upload_MissingFile(t *testing.T) {
	store := newTestStore(&fakeS3{})

	_, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestS3Store_Delete(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		deleteErr   error
		wantKeys    []string
		expectedErr error
		wantErr     bool
	}{
		{name: "own url", url: "http://cdn.local/media/images/a.png", wantKeys: []string{"images/a.png"}},
		{name: "empty url", url: ""},
		{name: "foreign url", url: "http://elsewhere/images/a.png", expectedErr: ErrForeignURL, wantErr: true},
		{name: "client error", url: "http://cdn.local/media/images/b.png", deleteErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeS3{deleteErr: tt.deleteErr}
			store := newTestStore(client)

			err := store.Delete(context.Background(), tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantKeys, client.deletedKeys)
		})
	}
}
