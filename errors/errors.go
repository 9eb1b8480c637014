// Package errors provides error types and handling for batch operations
// against S3-compatible object stores.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a batch operation error with context about the operation
// and the object that failed. It wraps the underlying error so callers can
// still use errors.Is and errors.As against sentinel values.
type Error struct {
	// Op is the operation that failed (e.g., "resolve", "map", "filter")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3batch.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3batch.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("s3batch.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("s3batch.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewBucketError creates a new Error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Err:    err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// Sentinel errors for batch operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3batch: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3batch: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3batch: invalid object key")

	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("s3batch: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("s3batch: bucket not found")

	// ErrMissingTarget indicates that a destructive operation was configured
	// without an output target and without an explicit in-place opt-in
	ErrMissingTarget = errors.New("s3batch: map and filter require an output target or an explicit in-place opt-in")

	// ErrNilCallback indicates that a terminal operation was invoked with a nil callback
	ErrNilCallback = errors.New("s3batch: callback cannot be nil")

	// ErrNilMapResult indicates that a map callback returned a nil result
	ErrNilMapResult = errors.New("s3batch: map callback returned nil (did you forget to return a value?)")

	// ErrInvalidMapResult indicates that a map callback returned a value that
	// cannot be written back as object content
	ErrInvalidMapResult = errors.New("s3batch: map result must be []byte, string, fmt.Stringer or encoding.TextMarshaler")

	// ErrRequestResolved indicates that a request modifier was called after the
	// key list had already been resolved by a terminal operation
	ErrRequestResolved = errors.New("s3batch: request already resolved; modifiers must precede the terminal call")

	// ErrUnknownEncoding indicates that the configured encoding name is not supported
	ErrUnknownEncoding = errors.New("s3batch: unknown encoding")
)

// configuration sentinels are setup or per-item contract violations that are
// always fatal to the batch.
var configuration = []error{
	ErrInvalidInput,
	ErrInvalidBucketName,
	ErrInvalidObjectKey,
	ErrMissingTarget,
	ErrNilCallback,
	ErrNilMapResult,
	ErrInvalidMapResult,
	ErrRequestResolved,
	ErrUnknownEncoding,
}

// IsConfiguration checks if an error is a configuration error: a setup
// mistake or a per-item contract violation, as opposed to a store or
// callback failure.
func IsConfiguration(err error) bool {
	for _, sentinel := range configuration {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}
