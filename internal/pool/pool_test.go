package pool_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batchlabs/s3batch/internal/pool"
)

func TestReadAll(t *testing.T) {
	data, err := pool.ReadAll(strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestReadAll_Empty(t *testing.T) {
	data, err := pool.ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadAll_LargePayload(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 1<<20)
	data, err := pool.ReadAll(bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestReadAll_ResultsAreIndependent(t *testing.T) {
	// Concurrent reads must not share backing arrays through the pool.
	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := bytes.Repeat([]byte{byte('a' + i%8)}, 4096)
			data, err := pool.ReadAll(bytes.NewReader(payload))
			assert.NoError(t, err)
			results[i] = data
		}()
	}
	wg.Wait()

	for i, data := range results {
		require.Len(t, data, 4096)
		assert.Equal(t, byte('a'+i%8), data[0])
	}
}
