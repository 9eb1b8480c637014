// Package s3batch treats a prefix-delimited set of objects in an
// S3-compatible store as an ordered, addressable sequence and runs batch
// transformations over it with bounded concurrency. It wraps AWS SDK v2 and
// exposes ForEach, Each, Map, Reduce and Filter operations over the objects
// behind one or more bucket/prefix contexts.
//
// Key features:
//   - Pagination-aware key resolution with marker continuation and
//     early-stop boundaries
//   - Bounded-concurrency execution with fail-fast error propagation
//   - Safe-by-default destructive operations: map and filter require an
//     output target or an explicit in-place opt-in
//   - Per-object decode via named encodings or custom transforms
//
// Example usage:
//
//	client, err := s3batch.New(s3batch.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//
//	// Count the total bytes under a prefix.
//	total, err := client.Context(batchtypes.ContextSpec{
//	    Bucket: "my-bucket",
//	    Prefix: "logs/2024/",
//	}).Reduce(ctx, func(ctx context.Context, acc any, key string, value any) (any, error) {
//	    return acc.(int) + len(value.(string)), nil
//	}, 0)
package s3batch
