// Package internal contains the implementation packages behind the public
// batch API: context resolution (resolve), payload decoding (fetch),
// concurrency control (execute), output routing (output), input validation
// (validation), buffer pooling (pool) and the store interface (s3api).
//
// These packages are not importable from outside the module. The public
// surface is the root s3batch package together with batchtypes and errors.
package internal
