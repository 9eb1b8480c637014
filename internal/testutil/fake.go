package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/batchlabs/s3batch/internal/s3api"
)

// FakeStore is a stateful in-memory object store implementing s3api.S3API.
// Listing is lexicographic, honors StartAfter and MaxKeys, and reports
// truncation, so pagination-dependent code paths can be exercised without a
// live store. A configurable page size below 1000 forces multi-page listings.
type FakeStore struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte

	// PageSize caps the number of keys per list page. Zero means the
	// requested MaxKeys (or 1000) is honored as-is.
	PageSize int

	// GetCalls records every key passed to GetObject, in call order.
	GetCalls []string

	// ListCalls counts ListObjectsV2 requests.
	ListCalls int
}

// NewFakeStore creates an empty store.
func NewFakeStore() *FakeStore {
	return &FakeStore{buckets: make(map[string]map[string][]byte)}
}

// Seed stores an object, creating the bucket if needed.
func (f *FakeStore) Seed(bucket, key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.buckets[bucket] == nil {
		f.buckets[bucket] = make(map[string][]byte)
	}
	f.buckets[bucket][key] = data
}

// Object returns the stored payload and whether the key exists.
func (f *FakeStore) Object(bucket, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.buckets[bucket][key]
	return data, ok
}

// Keys returns all keys in a bucket in lexicographic order.
func (f *FakeStore) Keys(bucket string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedKeysLocked(bucket, "")
}

func (f *FakeStore) sortedKeysLocked(bucket, prefix string) []string {
	var keys []string
	for key := range f.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// GetObject implements s3api.S3API.
func (f *FakeStore) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := aws.ToString(params.Key)
	f.GetCalls = append(f.GetCalls, key)

	data, ok := f.buckets[aws.ToString(params.Bucket)][key]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", key)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// PutObject implements s3api.S3API.
func (f *FakeStore) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.Seed(aws.ToString(params.Bucket), aws.ToString(params.Key), data)
	return &s3.PutObjectOutput{}, nil
}

// CopyObject implements s3api.S3API. CopySource is "bucket/key",
// possibly URL-escaped.
func (f *FakeStore) CopyObject(
	_ context.Context,
	params *s3.CopyObjectInput,
	_ ...func(*s3.Options),
) (*s3.CopyObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	source := aws.ToString(params.CopySource)
	srcBucket, srcKey, ok := splitCopySource(source)
	if !ok {
		return nil, fmt.Errorf("InvalidArgument: bad copy source %q", source)
	}

	data, exists := f.buckets[srcBucket][srcKey]
	if !exists {
		return nil, fmt.Errorf("NoSuchKey: %s", srcKey)
	}

	dstBucket := aws.ToString(params.Bucket)
	if f.buckets[dstBucket] == nil {
		f.buckets[dstBucket] = make(map[string][]byte)
	}
	f.buckets[dstBucket][aws.ToString(params.Key)] = append([]byte(nil), data...)
	return &s3.CopyObjectOutput{}, nil
}

// DeleteObject implements s3api.S3API.
func (f *FakeStore) DeleteObject(
	_ context.Context,
	params *s3.DeleteObjectInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.buckets[aws.ToString(params.Bucket)], aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

// DeleteObjects implements s3api.S3API.
func (f *FakeStore) DeleteObjects(
	_ context.Context,
	params *s3.DeleteObjectsInput,
	_ ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket := aws.ToString(params.Bucket)
	output := &s3.DeleteObjectsOutput{}
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		delete(f.buckets[bucket], key)
		output.Deleted = append(output.Deleted, types.DeletedObject{Key: aws.String(key)})
	}
	return output, nil
}

// ListObjectsV2 implements s3api.S3API with lexicographic ordering,
// StartAfter and truncation semantics.
func (f *FakeStore) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ListCalls++
	bucket := aws.ToString(params.Bucket)
	keys := f.sortedKeysLocked(bucket, aws.ToString(params.Prefix))

	startAfter := aws.ToString(params.StartAfter)
	if startAfter != "" {
		idx := sort.SearchStrings(keys, startAfter)
		if idx < len(keys) && keys[idx] == startAfter {
			idx++
		}
		keys = keys[idx:]
	}

	pageSize := int(aws.ToInt32(params.MaxKeys))
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000
	}
	if f.PageSize > 0 && f.PageSize < pageSize {
		pageSize = f.PageSize
	}

	truncated := len(keys) > pageSize
	if truncated {
		keys = keys[:pageSize]
	}

	output := &s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(truncated),
		KeyCount:    aws.Int32(int32(len(keys))),
	}
	for _, key := range keys {
		output.Contents = append(output.Contents, types.Object{
			Key:  aws.String(key),
			Size: aws.Int64(int64(len(f.buckets[bucket][key]))),
		})
	}
	return output, nil
}

// HeadObject implements s3api.S3API.
func (f *FakeStore) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.buckets[aws.ToString(params.Bucket)][aws.ToString(params.Key)]
	if !ok {
		return nil, fmt.Errorf("NotFound: %s", aws.ToString(params.Key))
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

// splitCopySource splits a possibly URL-escaped "bucket/key" source into its
// parts. Bucket names cannot contain slashes, so the first separator wins.
func splitCopySource(source string) (bucket, key string, ok bool) {
	if unescaped, err := url.PathUnescape(source); err == nil {
		source = unescaped
	}
	parts := strings.SplitN(source, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Ensure FakeStore implements the s3api.S3API interface
var _ s3api.S3API = (*FakeStore)(nil)
