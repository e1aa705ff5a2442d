package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdRoundTrip(t *testing.T) {
	codec, err := NewZstd()
	require.NoError(t, err)

	original := bytes.Repeat([]byte(`{"summary":"weekly changelog entry"}`), 100)
	compressed := codec.Compress(original)
	assert.Less(t, len(compressed), len(original), "repetitive payload should shrink")

	restored, err := codec.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestZstdEmptyInput(t *testing.T) {
	codec, err := NewZstd()
	require.NoError(t, err)

	restored, err := codec.Decompress(codec.Compress(nil))
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestZstdRejectsGarbage(t *testing.T) {
	codec, err := NewZstd()
	require.NoError(t, err)

	_, err = codec.Decompress([]byte("not a zstd frame"))
	assert.Error(t, err)
}
