package s3batch

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/pool"
	"github.com/batchlabs/s3batch/internal/validation"
)

// Get downloads an entire object and returns it as a byte slice.
//
// Example:
//
//	data, err := client.Get(ctx, "my-bucket", "config.json")
//	if err != nil {
//	    return err
//	}
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, err
	}

	output, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") {
			err = errors.ErrObjectNotFound
		}
		return nil, errors.NewObjectError("get", bucket, key, err)
	}
	defer output.Body.Close()

	data, err := pool.ReadAll(output.Body)
	if err != nil {
		return nil, errors.NewObjectError("get", bucket, key, err)
	}
	return data, nil
}

// Put uploads byte data to the store. The content type is detected from the
// payload.
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if mt := mimetype.Detect(data); mt != nil {
		input.ContentType = aws.String(mt.String())
	}

	if _, err := c.api.PutObject(ctx, input); err != nil {
		return errors.NewObjectError("put", bucket, key, err)
	}
	return nil
}

// Copy copies an object from one location to another within the store.
// This is a server-side copy; the payload never transits the client.
func (c *Client) Copy(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) error {
	if err := validation.ValidateBucketName(srcBucket); err != nil {
		return err
	}
	if err := validation.ValidateBucketName(dstBucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(srcKey); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(dstKey); err != nil {
		return err
	}
	if srcBucket == dstBucket && srcKey == dstKey {
		return errors.NewError("copy", errors.ErrInvalidInput).
			WithBucket(srcBucket).
			WithKey(srcKey).
			WithMessage("cannot copy object to itself")
	}

	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(copySource(srcBucket, srcKey)),
	})
	if err != nil {
		return errors.NewObjectError("copy", dstBucket, dstKey, err).
			WithMessage("failed to copy from " + srcBucket + "/" + srcKey)
	}
	return nil
}

// Delete deletes a single object. The operation is idempotent: deleting a
// non-existent object does not return an error.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errors.NewObjectError("delete", bucket, key, err)
	}
	return nil
}

// DeleteMany deletes multiple objects in a single batch request. The store
// accepts up to 1000 keys per request.
func (c *Client) DeleteMany(ctx context.Context, bucket string, keys []string) (*batchtypes.DeleteResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("keys cannot be empty")
	}
	const maxKeysPerRequest = 1000
	if len(keys) > maxKeysPerRequest {
		return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("too many keys: maximum is 1000 per request")
	}

	startTime := time.Now()

	objects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
				WithBucket(bucket).
				WithMessage("empty key in keys slice")
		}
		objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
	}

	output, err := c.api.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{Objects: objects},
	})
	if err != nil {
		return nil, errors.NewBucketError("deleteMany", bucket, err)
	}

	result := &batchtypes.DeleteResult{
		Duration: time.Since(startTime),
	}
	for _, deleted := range output.Deleted {
		result.Deleted = append(result.Deleted, aws.ToString(deleted.Key))
	}
	for _, delErr := range output.Errors {
		result.Errors = append(result.Errors, batchtypes.DeleteError{
			Key:     aws.ToString(delErr.Key),
			Code:    aws.ToString(delErr.Code),
			Message: aws.ToString(delErr.Message),
		})
	}
	return result, nil
}

// Exists checks if an object exists using a HEAD request. It returns false
// with a nil error when the object is absent, and a non-nil error for other
// failures.
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return false, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "NoSuchKey") {
			return false, nil
		}
		return false, errors.NewObjectError("exists", bucket, key, err)
	}
	return true, nil
}

// List lists one page of objects under a prefix, resuming strictly after
// marker when it is non-empty. Pagination beyond a single page is what
// batch requests do internally; List is the raw building block.
func (c *Client) List(ctx context.Context, bucket, prefix, marker string) (*batchtypes.ListResult, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}

	startTime := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1000),
	}
	if marker != "" {
		input.StartAfter = aws.String(marker)
	}

	output, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchBucket") {
			err = errors.ErrBucketNotFound
		}
		return nil, errors.NewBucketError("list", bucket, err)
	}

	result := &batchtypes.ListResult{
		Objects:     make([]batchtypes.Object, 0, len(output.Contents)),
		IsTruncated: aws.ToBool(output.IsTruncated),
		Duration:    time.Since(startTime),
	}
	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, batchtypes.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
		})
	}
	if result.IsTruncated && len(result.Objects) > 0 {
		result.NextMarker = result.Objects[len(result.Objects)-1].Key
	}
	return result, nil
}

// copySource formats a server-side copy source, escaping the path.
func copySource(bucket, key string) string {
	return url.PathEscape(bucket + "/" + key)
}
