// Package pool provides pooled read buffers for object downloads. Batch
// operations read many payloads of similar size in quick succession, so
// reusing the intermediate buffer avoids re-growing it on every fetch.
package pool

import (
	"bytes"
	"io"
	"sync"
)

// initialBufferSize is the starting capacity for fresh pool buffers (64KB).
const initialBufferSize = 64 * 1024

var buffers = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

// ReadAll reads r to EOF through a pooled buffer and returns a right-sized
// copy of the data. The pooled buffer never escapes, so callers own the
// returned slice outright.
func ReadAll(r io.Reader) ([]byte, error) {
	buf := buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer buffers.Put(buf)

	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	data := make([]byte, buf.Len())
	copy(data, buf.Bytes())
	return data, nil
}
