// Package compression shrinks journal snapshots before they hit the state database.
package compression

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// ZstdCompressor shares one encoder and decoder; EncodeAll and DecodeAll are
// safe for concurrent use.
type ZstdCompressor struct {
	once    sync.Once
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	err     error
}

func NewZstdCompressor() *ZstdCompressor {
	return &ZstdCompressor{}
}

func (z *ZstdCompressor) init() error {
	z.once.Do(func() {
		z.encoder, z.err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if z.err != nil {
			return
		}
		z.decoder, z.err = zstd.NewReader(nil)
	})
	return z.err
}

func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, err
	}
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if err := z.init(); err != nil {
		return nil, err
	}
	return z.decoder.DecodeAll(data, nil)
}

// Nop passes data through unchanged.
type Nop struct{}

func (Nop) Compress(data []byte) ([]byte, error)   { return data, nil }
func (Nop) Decompress(data []byte) ([]byte, error) { return data, nil }
