package fetch_test

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/fetch"
	"github.com/batchlabs/s3batch/internal/testutil"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		raw      []byte
		want     any
	}{
		{
			name:     "utf8",
			encoding: "utf8",
			raw:      []byte("hello"),
			want:     "hello",
		},
		{
			name:     "utf8 hyphenated spelling",
			encoding: "UTF-8",
			raw:      []byte("hello"),
			want:     "hello",
		},
		{
			name:     "utf16le",
			encoding: "utf16le",
			raw:      []byte{'h', 0, 'i', 0},
			want:     "hi",
		},
		{
			name:     "utf16be",
			encoding: "utf16be",
			raw:      []byte{0, 'h', 0, 'i'},
			want:     "hi",
		},
		{
			name:     "latin1",
			encoding: "latin1",
			raw:      []byte{0xe9},
			want:     "é",
		},
		{
			name:     "latin1 iso spelling",
			encoding: "ISO-8859-1",
			raw:      []byte{0xe9},
			want:     "é",
		},
		{
			name:     "windows1252",
			encoding: "windows-1252",
			raw:      []byte{0x93},
			want:     "“",
		},
		{
			name:     "base64",
			encoding: "base64",
			raw:      []byte("hello"),
			want:     base64.StdEncoding.EncodeToString([]byte("hello")),
		},
		{
			name:     "hex",
			encoding: "hex",
			raw:      []byte{0xde, 0xad},
			want:     hex.EncodeToString([]byte{0xde, 0xad}),
		},
		{
			name:     "binary",
			encoding: "binary",
			raw:      []byte{0x00, 0x01},
			want:     []byte{0x00, 0x01},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fetch.Decode(tt.encoding, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_UnknownEncoding(t *testing.T) {
	_, err := fetch.Decode("ebcdic", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownEncoding)
}

func TestPipeline_Fetch(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("bucket", "files/a", []byte("payload"))

	ref := batchtypes.ObjectRef{Bucket: "bucket", Prefix: "files/", Key: "files/a"}

	value, err := fetch.New(store, "utf8", nil).Fetch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "payload", value)
}

func TestPipeline_TransformWinsOverEncoding(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("bucket", "files/a", []byte("payload"))

	transform := func(raw []byte, key string) (any, error) {
		return len(raw), nil
	}

	ref := batchtypes.ObjectRef{Bucket: "bucket", Prefix: "files/", Key: "files/a"}

	// The encoding would fail on its own; the transform makes it irrelevant.
	value, err := fetch.New(store, "ebcdic", transform).Fetch(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 7, value)
}

func TestPipeline_TransformError(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Seed("bucket", "files/a", []byte("payload"))

	transform := func(raw []byte, key string) (any, error) {
		return nil, assert.AnError
	}

	ref := batchtypes.ObjectRef{Bucket: "bucket", Prefix: "files/", Key: "files/a"}

	_, err := fetch.New(store, "utf8", transform).Fetch(context.Background(), ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPipeline_NotFound(t *testing.T) {
	store := testutil.NewFakeStore()

	ref := batchtypes.ObjectRef{Bucket: "bucket", Prefix: "files/", Key: "files/missing"}

	_, err := fetch.New(store, "utf8", nil).Fetch(context.Background(), ref)
	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}
