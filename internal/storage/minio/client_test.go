package minio

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	bucketExists bool
	madeBucket   bool
	objects      map[string][]byte
	listErr      error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{bucketExists: true, objects: map[string][]byte{}}
}

func (f *fakeAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return f.bucketExists, nil
}

func (f *fakeAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	f.madeBucket = true
	f.bucketExists = true
	return nil
}

func (f *fakeAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[objectName] = data
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	data, ok := f.objects[objectName]
	if !ok {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	go func() {
		defer close(ch)
		if f.listErr != nil {
			ch <- minio.ObjectInfo{Err: f.listErr}
			return
		}
		for key := range f.objects {
			if strings.HasPrefix(key, opts.Prefix) {
				ch <- minio.ObjectInfo{Key: key}
			}
		}
	}()
	return ch
}

func TestNewClientWithAPI_CreatesMissingBucket(t *testing.T) {
	api := newFakeAPI()
	api.bucketExists = false

	_, err := NewClientWithAPI(context.Background(), api, "media")
	require.NoError(t, err)
	assert.True(t, api.madeBucket)
}

func TestClient_UploadListDownload(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	client, err := NewClientWithAPI(ctx, api, "media")
	require.NoError(t, err)

	require.NoError(t, client.Upload(ctx, "cards/sun.jpg", strings.NewReader("sun"), 3))
	require.NoError(t, client.Upload(ctx, "cards/moon.jpg", strings.NewReader("moon"), 4))
	require.NoError(t, client.Upload(ctx, "dice/one.jpg", strings.NewReader("one"), 3))

	keys, err := client.List(ctx, "cards/")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cards/sun.jpg", "cards/moon.jpg"}, keys)

	rc, err := client.Download(ctx, "cards/sun.jpg")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "sun", string(data))
}

func TestClient_List_Error(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.listErr = assert.AnError

	client, err := NewClientWithAPI(ctx, api, "media")
	require.NoError(t, err)

	_, err = client.List(ctx, "cards/")
	require.Error(t, err)
}
