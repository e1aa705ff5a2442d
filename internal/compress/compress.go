// Package compress wraps the zstd codec used for in-place entry content
// compression and for export and backup artifacts.
package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd is a reusable zstd encoder/decoder pair. Safe for concurrent use.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd creates a codec with default compression level.
func NewZstd() (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

// Compress returns the zstd-compressed form of val.
func (z *Zstd) Compress(val []byte) []byte {
	return z.encoder.EncodeAll(val, make([]byte, 0, len(val)/2))
}

// Decompress returns the original bytes for a Compress output.
func (z *Zstd) Decompress(val []byte) ([]byte, error) {
	return z.decoder.DecodeAll(val, nil)
}
