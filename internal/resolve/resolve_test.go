package resolve_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/resolve"
	"github.com/batchlabs/s3batch/internal/testutil"
)

func TestResolver_PaginationCompleteness(t *testing.T) {
	const pageSize = 10

	for _, n := range []int{0, 1, pageSize - 1, pageSize, pageSize + 1, 3 * pageSize} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			store := testutil.NewFakeStore()
			store.PageSize = pageSize

			var want []string
			for i := range n {
				key := fmt.Sprintf("files/%04d", i)
				store.Seed("bucket", key, []byte("x"))
				want = append(want, key)
			}

			refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
				{Bucket: "bucket", Prefix: "files/"},
			})
			require.NoError(t, err)

			var got []string
			for _, ref := range refs {
				got = append(got, ref.Key)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestResolver_EndPrefixEarlyStop(t *testing.T) {
	store := testutil.NewFakeStore()
	for _, key := range []string{"a", "b", "c", "d"} {
		store.Seed("bucket", key, []byte("x"))
	}

	refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "bucket", EndPrefix: "c"},
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "a", refs[0].Key)
	assert.Equal(t, "b", refs[1].Key)
}

func TestResolver_EndPrefixWinsOverPagination(t *testing.T) {
	store := testutil.NewFakeStore()
	store.PageSize = 2
	for _, key := range []string{"a", "b", "c", "d", "e", "f"} {
		store.Seed("bucket", key, []byte("x"))
	}

	refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "bucket", EndPrefix: "c"},
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "b", refs[1].Key)
	// The early stop hit on page two; no further pages were requested.
	assert.Equal(t, 2, store.ListCalls)
}

func TestResolver_MarkerResumesAfterKey(t *testing.T) {
	store := testutil.NewFakeStore()
	for _, key := range []string{"a", "b", "c", "d"} {
		store.Seed("bucket", key, []byte("x"))
	}

	refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "bucket", Marker: "b"},
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "c", refs[0].Key)
	assert.Equal(t, "d", refs[1].Key)
}

func TestResolver_FiltersPlaceholders(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("bucket", "dir/", nil)
	store.Seed("bucket", "dir/sub/", nil)
	store.Seed("bucket", "dir/file", []byte("x"))

	refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "bucket", Prefix: "dir/"},
	})
	require.NoError(t, err)

	require.Len(t, refs, 1)
	assert.Equal(t, "dir/file", refs[0].Key)
}

func TestResolver_MultipleContextsConcatenateInOrder(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("bucket", "zz/1", []byte("x"))
	store.Seed("bucket", "aa/1", []byte("x"))

	// Supplied order wins; results are not re-sorted across contexts.
	refs, err := resolve.New(store).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "bucket", Prefix: "zz/"},
		{Bucket: "bucket", Prefix: "aa/"},
	})
	require.NoError(t, err)

	require.Len(t, refs, 2)
	assert.Equal(t, "zz/1", refs[0].Key)
	assert.Equal(t, "aa/1", refs[1].Key)
}

func TestResolver_BucketNotFound(t *testing.T) {
	mock := &testutil.MockS3Client{
		ListObjectsV2Func: func(
			_ context.Context,
			_ *s3.ListObjectsV2Input,
			_ ...func(*s3.Options),
		) (*s3.ListObjectsV2Output, error) {
			return nil, fmt.Errorf("NoSuchBucket: missing")
		},
	}

	_, err := resolve.New(mock).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Bucket: "missing", Prefix: "files/"},
	})
	require.Error(t, err)
	assert.True(t, errors.IsBucketNotFound(err))
}

func TestResolver_NoContexts(t *testing.T) {
	_, err := resolve.New(testutil.NewFakeStore()).Resolve(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestResolver_EmptyBucket(t *testing.T) {
	_, err := resolve.New(testutil.NewFakeStore()).Resolve(context.Background(), []batchtypes.ContextSpec{
		{Prefix: "files/"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func refsFromKeys(keys ...string) []batchtypes.ObjectRef {
	refs := make([]batchtypes.ObjectRef, 0, len(keys))
	for _, key := range keys {
		refs = append(refs, batchtypes.ObjectRef{Bucket: "bucket", Key: key})
	}
	return refs
}

func keysFromRefs(refs []batchtypes.ObjectRef) []string {
	var keys []string
	for _, ref := range refs {
		keys = append(keys, ref.Key)
	}
	return keys
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		exclude batchtypes.ExcludeFunc
		reverse bool
		limit   int
		want    []string
	}{
		{
			name: "identity",
			want: []string{"a", "b", "c", "d"},
		},
		{
			name:    "exclude",
			exclude: func(key string) bool { return key == "b" },
			want:    []string{"a", "c", "d"},
		},
		{
			name:    "reverse",
			reverse: true,
			want:    []string{"d", "c", "b", "a"},
		},
		{
			name:  "limit",
			limit: 2,
			want:  []string{"a", "b"},
		},
		{
			name:    "limit applies after reverse",
			reverse: true,
			limit:   2,
			want:    []string{"d", "c"},
		},
		{
			name:    "exclude then reverse then limit",
			exclude: func(key string) bool { return key == "d" },
			reverse: true,
			limit:   2,
			want:    []string{"c", "b"},
		},
		{
			name:  "limit beyond length",
			limit: 10,
			want:  []string{"a", "b", "c", "d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refs := refsFromKeys("a", "b", "c", "d")
			got := resolve.Derive(refs, tt.exclude, tt.reverse, tt.limit)
			assert.Equal(t, tt.want, keysFromRefs(got))
			// The input is never mutated.
			assert.Equal(t, []string{"a", "b", "c", "d"}, keysFromRefs(refs))
		})
	}
}
