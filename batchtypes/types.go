// Package batchtypes provides shared type definitions for the s3batch module.
package batchtypes

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// ContextSpec identifies a set of objects to operate over: every object in
// Bucket whose key starts with Prefix, beginning strictly after Marker (if
// set) and stopping at the first key containing EndPrefix (if set).
type ContextSpec struct {
	// Bucket is the bucket holding the objects
	Bucket string

	// Prefix selects the keys to list
	Prefix string

	// Marker, if non-empty, resumes listing strictly after this key
	Marker string

	// EndPrefix, if non-empty, stops listing at the first key that contains
	// it, regardless of store-side pagination
	EndPrefix string
}

// ObjectRef is a fully-qualified reference to one object. Prefix is retained
// so output redirection can strip it when computing destination keys.
// An ObjectRef is immutable once produced.
type ObjectRef struct {
	// Bucket is the bucket holding the object
	Bucket string

	// Prefix is the listing prefix the object was resolved under
	Prefix string

	// Key is the fully-qualified object key
	Key string
}

// Target is an alternate destination for map and filter output. When a
// target is set the source objects are left untouched.
type Target struct {
	// Bucket is the destination bucket
	Bucket string

	// Prefix replaces the source prefix when computing destination keys
	Prefix string

	// Rename, if non-nil, is applied to the filename portion of each
	// destination key
	Rename func(name string) string
}

// TransformFunc converts an object's raw payload into the value passed to
// operation callbacks. When set on a request it takes precedence over the
// configured encoding. The returned value may be of any type.
type TransformFunc func(raw []byte, key string) (any, error)

// ExcludeFunc is a predicate over object keys. Keys for which it returns
// true are dropped from the source set before any fetch.
type ExcludeFunc func(key string) bool

// EachFunc is the callback for ForEach and Each operations.
type EachFunc func(ctx context.Context, key string, value any) error

// MapFunc is the callback for Map operations. The returned value is written
// back via the request's output configuration and must be non-nil.
type MapFunc func(ctx context.Context, key string, value any) (any, error)

// ReduceFunc is the callback for Reduce operations. It receives the running
// accumulator and returns its replacement.
type ReduceFunc func(ctx context.Context, acc any, key string, value any) (any, error)

// FilterFunc is the callback for Filter operations. Returning true keeps the
// object, false removes it.
type FilterFunc func(ctx context.Context, key string, value any) (bool, error)

// Object represents an object with its basic listing metadata.
type Object struct {
	// Key is the object key
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string
}

// ListResult contains the result of a single-page list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// IsTruncated indicates if the results were truncated
	IsTruncated bool

	// NextMarker is the key to resume from for the next page
	NextMarker string

	// Duration is how long the operation took
	Duration time.Duration
}

// BatchResult contains the result of a ForEach or Each operation.
type BatchResult struct {
	// Processed is the number of objects whose callback completed
	Processed int

	// Last is the last object reference known to have been processed
	Last *ObjectRef

	// Duration is how long the operation took
	Duration time.Duration
}

// MapResult contains the result of a Map operation.
type MapResult struct {
	// Written is the number of objects written
	Written int

	// Last is the last object reference known to have been written
	Last *ObjectRef

	// Duration is how long the operation took
	Duration time.Duration
}

// FilterResult contains the result of a Filter operation.
type FilterResult struct {
	// Kept contains the objects the predicate retained, in source order
	Kept []ObjectRef

	// Removed contains the objects the predicate rejected, in source order
	Removed []ObjectRef

	// Duration is how long the operation took
	Duration time.Duration
}

// DeleteResult contains the result of a batch delete operation.
type DeleteResult struct {
	// Deleted contains the keys that were successfully deleted
	Deleted []string

	// Errors contains any per-key errors reported by the store
	Errors []DeleteError

	// Duration is how long the operation took
	Duration time.Duration
}

// DeleteError represents a per-key error from a batch delete.
type DeleteError struct {
	// Key is the object key that failed to delete
	Key string

	// Code is the error code
	Code string

	// Message is the error message
	Message string
}

// ClientConfig holds configuration for the batch client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
}

// Option is a functional option for configuring the batch client.
type Option func(*ClientConfig)
