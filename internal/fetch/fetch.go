// Package fetch retrieves object payloads and produces the value seen by
// operation callbacks, either through a user transform or a named-encoding
// decode.
package fetch

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/batchlabs/s3batch/batchtypes"
	"github.com/batchlabs/s3batch/errors"
	"github.com/batchlabs/s3batch/internal/pool"
	"github.com/batchlabs/s3batch/internal/s3api"
)

// DefaultEncoding is the encoding used when a request configures neither a
// transform nor an encoding.
const DefaultEncoding = "utf8"

// Pipeline fetches an object's bytes and applies the configured decode step.
type Pipeline struct {
	client    s3api.S3API
	encoding  string
	transform batchtypes.TransformFunc
}

// New creates a fetch pipeline. If transform is non-nil it takes precedence
// over the encoding.
func New(client s3api.S3API, encoding string, transform batchtypes.TransformFunc) *Pipeline {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Pipeline{
		client:    client,
		encoding:  encoding,
		transform: transform,
	}
}

// Fetch retrieves the object behind ref and returns the callback value:
// the transform result if a transform is configured, otherwise the payload
// decoded per the configured encoding.
func (p *Pipeline) Fetch(ctx context.Context, ref batchtypes.ObjectRef) (any, error) {
	output, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") {
			err = errors.ErrObjectNotFound
		}
		return nil, errors.NewObjectError("get", ref.Bucket, ref.Key, err)
	}
	defer output.Body.Close()

	raw, err := pool.ReadAll(output.Body)
	if err != nil {
		return nil, errors.NewObjectError("get", ref.Bucket, ref.Key, err)
	}

	if p.transform != nil {
		value, err := p.transform(raw, ref.Key)
		if err != nil {
			return nil, errors.NewObjectError("transform", ref.Bucket, ref.Key, err)
		}
		return value, nil
	}

	value, err := Decode(p.encoding, raw)
	if err != nil {
		return nil, errors.NewObjectError("decode", ref.Bucket, ref.Key, err)
	}
	return value, nil
}

// Decode converts raw payload bytes according to a named encoding. Text
// encodings produce a string; "binary" returns the raw bytes unchanged.
func Decode(name string, raw []byte) (any, error) {
	switch normalizeEncoding(name) {
	case "utf8":
		return string(raw), nil
	case "utf16le":
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return nil, err
		}
		return string(decoded), nil
	case "utf16be":
		decoded, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(raw)
		if err != nil {
			return nil, err
		}
		return string(decoded), nil
	case "latin1":
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, err
		}
		return string(decoded), nil
	case "windows1252":
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, err
		}
		return string(decoded), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(raw), nil
	case "hex":
		return hex.EncodeToString(raw), nil
	case "binary":
		return raw, nil
	default:
		return nil, errors.NewError("decode", errors.ErrUnknownEncoding).
			WithMessage(name)
	}
}

// normalizeEncoding folds the common spellings of encoding names.
func normalizeEncoding(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, "_", "")
	switch name {
	case "", "utf8":
		return "utf8"
	case "iso88591", "latin1":
		return "latin1"
	case "cp1252", "windows1252":
		return "windows1252"
	case "bytes", "raw", "binary":
		return "binary"
	default:
		return name
	}
}
