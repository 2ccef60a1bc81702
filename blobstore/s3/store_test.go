package s3

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/hupe1980/csrgraph/blobstore"
	"github.com/stretchr/testify/require"
)

// fakeClient is an in-memory S3 implementation of Client.
type fakeClient struct {
	mu       sync.Mutex
	objects  map[string][]byte
	uploads  map[string]map[int32][]byte
	uploadID int
	lastPut  *s3.PutObjectInput
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		objects: make(map[string][]byte),
		uploads: make(map[string]map[int32][]byte),
	}
}

func (f *fakeClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	lo, hi := int64(0), int64(len(data))-1
	if r := aws.ToString(params.Range); r != "" {
		parts := strings.SplitN(strings.TrimPrefix(r, "bytes="), "-", 2)
		lo, _ = strconv.ParseInt(parts[0], 10, 64)
		hi, _ = strconv.ParseInt(parts[1], 10, 64)
		if hi >= int64(len(data)) {
			hi = int64(len(data)) - 1
		}
	}
	body := data[lo : hi+1]
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader(string(body))),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

func (f *fakeClient) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = data
	f.lastPut = params
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
		}
	}
	return out, nil
}

func (f *fakeClient) CreateMultipartUpload(_ context.Context, params *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadID++
	id := fmt.Sprintf("upload-%d", f.uploadID)
	f.uploads[id] = make(map[int32][]byte)
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

func (f *fakeClient) UploadPart(_ context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[aws.ToString(params.UploadId)][aws.ToInt32(params.PartNumber)] = data
	return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("etag-%d", aws.ToInt32(params.PartNumber)))}, nil
}

func (f *fakeClient) CompleteMultipartUpload(_ context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts := f.uploads[aws.ToString(params.UploadId)]
	var data []byte
	for i := int32(1); int(i) <= len(parts); i++ {
		data = append(data, parts[i]...)
	}
	f.objects[aws.ToString(params.Key)] = data
	delete(f.uploads, aws.ToString(params.UploadId))
	return &s3.CompleteMultipartUploadOutput{}, nil
}

func (f *fakeClient) AbortMultipartUpload(_ context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, aws.ToString(params.UploadId))
	return &s3.AbortMultipartUploadOutput{}, nil
}

func TestStoreOpen(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewStore(client, "test-bucket", "prefix")

	t.Run("not found", func(t *testing.T) {
		_, err := store.Open(ctx, "missing")
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("found", func(t *testing.T) {
		client.objects["prefix/a.bin"] = []byte("0123456789")

		blob, err := store.Open(ctx, "a.bin")
		require.NoError(t, err)
		require.Equal(t, int64(10), blob.Size())

		buf := make([]byte, 4)
		n, err := blob.ReadAt(ctx, buf, 3)
		require.NoError(t, err)
		require.Equal(t, 4, n)
		require.Equal(t, []byte("3456"), buf)

		// Tail read clamps and reports EOF.
		n, err = blob.ReadAt(ctx, buf, 8)
		require.ErrorIs(t, err, io.EOF)
		require.Equal(t, []byte("89"), buf[:n])

		rc, err := blob.ReadRange(ctx, 2, 5)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, []byte("23456"), data)
		require.NoError(t, blob.Close())
	})
}

func TestStorePut(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewStore(client, "test-bucket", "prefix")

	require.NoError(t, store.Put(ctx, "b.bin", []byte("payload")))
	require.Equal(t, []byte("payload"), client.objects["prefix/b.bin"])

	// CRC32C checksum travels with the object.
	require.NotNil(t, client.lastPut.ChecksumCRC32C)
	require.Equal(t, computeCRC32C([]byte("payload")), aws.ToString(client.lastPut.ChecksumCRC32C))
}

func TestStoreCreateStreams(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewStore(client, "test-bucket", "prefix")

	w, err := store.Create(ctx, "c.bin")
	require.NoError(t, err)
	_, err = w.Write([]byte("part1-"))
	require.NoError(t, err)
	_, err = w.Write([]byte("part2"))
	require.NoError(t, err)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	require.Equal(t, []byte("part1-part2"), client.objects["prefix/c.bin"])

	// Double close returns the same result without blocking.
	require.NoError(t, w.Close())

	_, err = w.Write([]byte("late"))
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestStoreDeleteAndList(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := NewStore(client, "test-bucket", "prefix")

	require.NoError(t, store.Put(ctx, "snap/1.bin", []byte("x")))
	require.NoError(t, store.Put(ctx, "snap/2.bin", []byte("y")))
	require.NoError(t, store.Put(ctx, "other.bin", []byte("z")))

	names, err := store.List(ctx, "snap/")
	require.NoError(t, err)
	require.Equal(t, []string{"snap/1.bin", "snap/2.bin"}, names)

	require.NoError(t, store.Delete(ctx, "snap/1.bin"))
	names, err = store.List(ctx, "snap/")
	require.NoError(t, err)
	require.Equal(t, []string{"snap/2.bin"}, names)
}
