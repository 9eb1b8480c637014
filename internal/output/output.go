// Package output decides where map and filter results land: written back in
// place, or redirected to a target bucket/prefix with optional renaming of
// the filename portion. It also applies filter's copy/delete partition.
package output

import (
	"bytes"
	"context"
	"encoding"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
)

// maxDeleteBatch is the store's per-request ceiling for batch deletes.
const maxDeleteBatch = 1000

// Writer applies map and filter output decisions against the store.
type Writer struct {
	client putCopyDeleteAPI
	target *batchtypes.Target
}

// putCopyDeleteAPI is the slice of the store API the writer needs.
type putCopyDeleteAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	CopyObject(
		ctx context.Context,
		params *s3.CopyObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.CopyObjectOutput, error)
	DeleteObjects(
		ctx context.Context,
		params *s3.DeleteObjectsInput,
		optFns ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
}

// New creates a writer. A nil target selects in-place behavior: map writes
// over the source object, filter deletes removed objects.
func New(client putCopyDeleteAPI, target *batchtypes.Target) *Writer {
	return &Writer{client: client, target: target}
}

// DestinationKey computes the output key for a source reference: the target
// prefix plus the source key with its resolution prefix stripped, with the
// optional rename applied to the filename portion only.
func DestinationKey(ref batchtypes.ObjectRef, target *batchtypes.Target) string {
	key := target.Prefix + strings.TrimPrefix(ref.Key, ref.Prefix)
	if target.Rename != nil {
		dir, file := path.Split(key)
		key = dir + target.Rename(file)
	}
	return key
}

// WriteMapResult writes one map callback result. With no target the source
// object is overwritten in place; with a target the result is written to the
// mapped destination key and the source is untouched.
func (w *Writer) WriteMapResult(ctx context.Context, ref batchtypes.ObjectRef, result any) error {
	data, err := encodeResult(result)
	if err != nil {
		return errors.NewObjectError("map", ref.Bucket, ref.Key, err)
	}

	bucket, key := ref.Bucket, ref.Key
	if w.target != nil {
		bucket = w.target.Bucket
		key = DestinationKey(ref, w.target)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if mt := mimetype.Detect(data); mt != nil {
		input.ContentType = aws.String(mt.String())
	}

	if _, err := w.client.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("put", bucket, key, err)
	}
	return nil
}

// ApplyFilter applies the keep/remove partition after all items have been
// evaluated. With a target, kept objects are copied there and removed
// objects are left alone. Without a target, kept objects simply survive and
// removed objects are deleted in batches.
func (w *Writer) ApplyFilter(ctx context.Context, kept, removed []batchtypes.ObjectRef) error {
	if w.target != nil {
		for _, ref := range kept {
			if err := w.copy(ctx, ref); err != nil {
				return err
			}
		}
		return nil
	}
	return w.deleteAll(ctx, removed)
}

// copy performs a server-side copy of ref to its destination key.
func (w *Writer) copy(ctx context.Context, ref batchtypes.ObjectRef) error {
	dstKey := DestinationKey(ref, w.target)
	source := url.PathEscape(ref.Bucket + "/" + ref.Key)

	_, err := w.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(w.target.Bucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(source),
	})
	if err != nil {
		return errors.NewObjectError("copy", ref.Bucket, ref.Key, err)
	}
	return nil
}

// deleteAll removes objects in store-sized batches. Refs are grouped by
// bucket since a delete request addresses a single bucket.
func (w *Writer) deleteAll(ctx context.Context, refs []batchtypes.ObjectRef) error {
	byBucket := make(map[string][]string)
	var buckets []string
	for _, ref := range refs {
		if _, seen := byBucket[ref.Bucket]; !seen {
			buckets = append(buckets, ref.Bucket)
		}
		byBucket[ref.Bucket] = append(byBucket[ref.Bucket], ref.Key)
	}

	for _, bucket := range buckets {
		keys := byBucket[bucket]
		for start := 0; start < len(keys); start += maxDeleteBatch {
			end := min(start+maxDeleteBatch, len(keys))
			if err := w.deleteBatch(ctx, bucket, keys[start:end]); err != nil {
				return err
			}
		}
	}
	return nil
}

// deleteBatch issues one DeleteObjects request and surfaces the first
// per-key error the store reports.
func (w *Writer) deleteBatch(ctx context.Context, bucket string, keys []string) error {
	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := w.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return errors.NewBucketError("delete", bucket, err)
	}

	if len(output.Errors) > 0 {
		first := output.Errors[0]
		return errors.NewObjectError("delete", bucket, aws.ToString(first.Key),
			fmt.Errorf("%s: %s", aws.ToString(first.Code), aws.ToString(first.Message)))
	}
	return nil
}

// encodeResult converts a map callback result into object content.
func encodeResult(result any) ([]byte, error) {
	switch v := result.(type) {
	case nil:
		return nil, errors.ErrNilMapResult
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case encoding.TextMarshaler:
		data, err := v.MarshalText()
		if err != nil {
			return nil, err
		}
		return data, nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	default:
		return nil, errors.ErrInvalidMapResult
	}
}
