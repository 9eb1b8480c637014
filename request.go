package s3batch

import (
	"context"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/fetch"
	"github.com/batchlabs/s3batch/internal/resolve"
)

// Request is the chainable configuration for one batch invocation. It is
// created by Client.Context, configured with the modifier methods, and
// consumed by exactly one terminal operation (ForEach, Each, Map, Reduce or
// Filter).
//
// A Request is owned by a single invocation and must not be shared across
// goroutines while being configured. Modifiers must precede the terminal
// call: once the key list has been resolved, further modifiers mark the
// request as misconfigured and the terminal call fails.
type Request struct {
	client   *Client
	contexts []batchtypes.ContextSpec

	encoding    string
	transform   batchtypes.TransformFunc
	exclude     batchtypes.ExcludeFunc
	concurrency int
	limit       int
	reverse     bool
	target      *batchtypes.Target
	inPlace     bool

	// source caches the derived source set for the life of the request
	source []batchtypes.ObjectRef
	// err is the first configuration error; it makes every terminal fail
	err error
}

// Context creates a Request over one or more context descriptors. Each
// context is resolved independently; results are concatenated in the order
// given here, never merged or re-sorted across contexts.
//
// Example:
//
//	result, err := client.Context(batchtypes.ContextSpec{
//	    Bucket: "logs",
//	    Prefix: "2024/01/",
//	}).Concurrency(10).Each(ctx, handle)
func (c *Client) Context(specs ...batchtypes.ContextSpec) *Request {
	r := &Request{
		client:      c,
		contexts:    specs,
		encoding:    fetch.DefaultEncoding,
		concurrency: c.concurrency,
	}
	if len(specs) == 0 {
		r.err = errors.NewError("context", errors.ErrInvalidInput).
			WithMessage("at least one context is required")
	}
	return r
}

// Encode sets the encoding used to decode object payloads into callback
// values. The default is "utf8". Supported names include "utf8", "utf16le",
// "utf16be", "latin1", "windows1252", "base64", "hex" and "binary" (raw
// bytes). A configured transform takes precedence over the encoding.
func (r *Request) Encode(encoding string) *Request {
	if !r.modifiable("encode") {
		return r
	}
	r.encoding = encoding
	return r
}

// Transform sets a function that converts the raw payload into the value
// passed to callbacks, instead of the encoding-based decode.
func (r *Request) Transform(fn batchtypes.TransformFunc) *Request {
	if !r.modifiable("transform") {
		return r
	}
	r.transform = fn
	return r
}

// Exclude sets a predicate over object keys; keys for which it returns true
// are dropped from the source set before any fetch.
func (r *Request) Exclude(fn batchtypes.ExcludeFunc) *Request {
	if !r.modifiable("exclude") {
		return r
	}
	r.exclude = fn
	return r
}

// Concurrency sets the maximum number of in-flight fetch+callback tasks for
// Each, Map and Filter. Zero or less means unbounded, which is the default.
// ForEach and Reduce ignore this and always run sequentially.
func (r *Request) Concurrency(n int) *Request {
	if !r.modifiable("concurrency") {
		return r
	}
	r.concurrency = n
	return r
}

// Limit truncates the source set to its first n entries, applied after
// exclusion and reversal.
func (r *Request) Limit(n int) *Request {
	if !r.modifiable("limit") {
		return r
	}
	r.limit = n
	return r
}

// Reverse reverses the iteration order of the source set.
func (r *Request) Reverse() *Request {
	if !r.modifiable("reverse") {
		return r
	}
	r.reverse = true
	return r
}

// Output redirects map and filter results to a target bucket and prefix
// instead of mutating objects in place. The destination key for each object
// is the target prefix plus the source key with its resolution prefix
// stripped.
func (r *Request) Output(bucket, prefix string) *Request {
	if !r.modifiable("output") {
		return r
	}
	r.target = &batchtypes.Target{Bucket: bucket, Prefix: prefix}
	return r
}

// Rename sets a function applied to the filename portion of each destination
// key. It only has effect together with Output.
func (r *Request) Rename(fn func(name string) string) *Request {
	if !r.modifiable("rename") {
		return r
	}
	if r.target == nil {
		r.err = errors.NewError("rename", errors.ErrInvalidInput).
			WithMessage("rename requires an output target; call Output first")
		return r
	}
	r.target.Rename = fn
	return r
}

// InPlace explicitly opts into destructive in-place behavior for Map and
// Filter: map results overwrite their source objects and filtered-out
// objects are deleted. Without this opt-in (or an Output target) those
// operations refuse to run.
func (r *Request) InPlace() *Request {
	if !r.modifiable("inplace") {
		return r
	}
	r.inPlace = true
	return r
}

// modifiable reports whether the request can still be configured, recording
// a configuration error if resolution has already happened.
func (r *Request) modifiable(op string) bool {
	if r.err != nil {
		return false
	}
	if r.source != nil {
		r.err = errors.NewError(op, errors.ErrRequestResolved)
		return false
	}
	return true
}

// resolveSource resolves the contexts into the derived source set, caching
// the result for the life of the request. The network round trips happen
// here, once, on the first terminal call.
func (r *Request) resolveSource(ctx context.Context) ([]batchtypes.ObjectRef, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.source != nil {
		return r.source, nil
	}

	refs, err := resolve.New(r.client.api).Resolve(ctx, r.contexts)
	if err != nil {
		return nil, err
	}

	r.source = resolve.Derive(refs, r.exclude, r.reverse, r.limit)
	return r.source, nil
}

// pipeline builds the fetch pipeline for this request's decode settings.
func (r *Request) pipeline() *fetch.Pipeline {
	return fetch.New(r.client.api, r.encoding, r.transform)
}

// requireWritable enforces the destructive-action guard for Map and Filter
// before any network call is made.
func (r *Request) requireWritable(op string) error {
	if r.target == nil && !r.inPlace {
		return errors.NewError(op, errors.ErrMissingTarget)
	}
	return nil
}
