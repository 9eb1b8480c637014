// Package resolve turns context descriptors into a single ordered list of
// object references. It handles store-side pagination, marker continuation,
// early-stop boundaries and placeholder filtering, and derives the final
// source set a batch operation iterates over.
package resolve

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/execute"
	"github.com/batchlabs/s3batch/internal/s3api"
)

// maxContextParallelism bounds how many contexts are listed at once.
const maxContextParallelism = 5

// Resolver flattens context descriptors into object references.
type Resolver struct {
	client s3api.S3API
}

// New creates a new Resolver.
func New(client s3api.S3API) *Resolver {
	return &Resolver{client: client}
}

// Resolve lists every context independently and concatenates the results in
// the order the contexts were supplied. Listing order within a context is the
// store's lexicographic key order. Any context error fails the whole
// resolution; no partial key list is returned.
func (r *Resolver) Resolve(
	ctx context.Context,
	contexts []batchtypes.ContextSpec,
) ([]batchtypes.ObjectRef, error) {
	if len(contexts) == 0 {
		return nil, errors.NewError("resolve", errors.ErrInvalidInput).
			WithMessage("at least one context is required")
	}

	perContext := make([][]batchtypes.ObjectRef, len(contexts))

	runner := execute.New(maxContextParallelism)
	_, err := runner.Run(ctx, len(contexts), func(i int) error {
		refs, err := r.resolveContext(ctx, contexts[i])
		if err != nil {
			return err
		}
		perContext[i] = refs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var refs []batchtypes.ObjectRef
	for _, page := range perContext {
		refs = append(refs, page...)
	}
	return refs, nil
}

// resolveContext pages through one context until the store reports no more
// keys or the early-stop boundary is hit.
func (r *Resolver) resolveContext(
	ctx context.Context,
	spec batchtypes.ContextSpec,
) ([]batchtypes.ObjectRef, error) {
	if spec.Bucket == "" {
		return nil, errors.NewError("resolve", errors.ErrInvalidInput).
			WithMessage("context bucket cannot be empty")
	}

	var refs []batchtypes.ObjectRef
	marker := spec.Marker

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(spec.Bucket),
			Prefix:  aws.String(spec.Prefix),
			MaxKeys: aws.Int32(1000),
		}
		if marker != "" {
			// Listing resumes strictly after the marker key.
			input.StartAfter = aws.String(marker)
		}

		output, err := r.client.ListObjectsV2(ctx, input)
		if err != nil {
			if strings.Contains(err.Error(), "NoSuchBucket") {
				err = errors.ErrBucketNotFound
			}
			return nil, errors.NewBucketError("resolve", spec.Bucket, err)
		}

		stopped := false
		for _, obj := range output.Contents {
			key := aws.ToString(obj.Key)

			if spec.EndPrefix != "" && strings.Contains(key, spec.EndPrefix) {
				// Early stop wins over pagination.
				stopped = true
				break
			}
			if isPlaceholder(key, aws.ToInt64(obj.Size), spec.Prefix) {
				continue
			}

			refs = append(refs, batchtypes.ObjectRef{
				Bucket: spec.Bucket,
				Prefix: spec.Prefix,
				Key:    key,
			})
		}

		if stopped || !aws.ToBool(output.IsTruncated) || len(output.Contents) == 0 {
			return refs, nil
		}

		// Continue from the last key of the raw page, filtered or not.
		marker = aws.ToString(output.Contents[len(output.Contents)-1].Key)
	}
}

// isPlaceholder reports whether an entry is a zero-length directory artifact:
// either the prefix itself or a folder marker ending in a slash.
func isPlaceholder(key string, size int64, prefix string) bool {
	if size != 0 {
		return false
	}
	return key == prefix || strings.HasSuffix(key, "/")
}

// Derive applies the source-set modifiers to a resolved key list: exclude
// first (dropped entries never pay a fetch), then reverse, then limit. The
// input slice is not mutated.
func Derive(
	refs []batchtypes.ObjectRef,
	exclude batchtypes.ExcludeFunc,
	reverse bool,
	limit int,
) []batchtypes.ObjectRef {
	out := make([]batchtypes.ObjectRef, 0, len(refs))
	for _, ref := range refs {
		if exclude != nil && exclude(ref.Key) {
			continue
		}
		out = append(out, ref)
	}

	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}

	return out
}
