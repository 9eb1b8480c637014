package s3batch

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/internal/fetch"
)

// TransformGzip returns a transform that gunzips each object and decodes the
// result with the named encoding (see Request.Encode for supported names).
//
// Example:
//
//	client.Context(spec).Transform(s3batch.TransformGzip("utf8")).Each(ctx, handle)
func TransformGzip(encoding string) batchtypes.TransformFunc {
	return func(raw []byte, _ string) (any, error) {
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		data, err := io.ReadAll(reader)
		if err != nil {
			return nil, err
		}
		return fetch.Decode(encoding, data)
	}
}

// TransformZstd returns a transform that decompresses zstd-compressed
// objects and decodes the result with the named encoding.
func TransformZstd(encoding string) batchtypes.TransformFunc {
	return func(raw []byte, _ string) (any, error) {
		decoder, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer decoder.Close()

		data, err := io.ReadAll(decoder.IOReadCloser())
		if err != nil {
			return nil, err
		}
		return fetch.Decode(encoding, data)
	}
}

// TransformJSON returns a transform that unmarshals each object as JSON.
// Callbacks receive the decoded value (map[string]any, []any, etc.).
func TransformJSON() batchtypes.TransformFunc {
	return func(raw []byte, _ string) (any, error) {
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, err
		}
		return value, nil
	}
}
