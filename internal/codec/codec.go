package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/GriffinCanCode/switcher/internal/domain/migration"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// DefaultMaxBytes bounds decoded snapshot size
const DefaultMaxBytes = 1 << 20

var (
	// ErrTooLarge is returned when a payload exceeds the size limit.
	ErrTooLarge = errors.New("snapshot exceeds size limit")
	// ErrEmpty is returned for zero-length payloads.
	ErrEmpty = errors.New("snapshot is empty")
)

// Compression selects the envelope Encode wraps JSON in
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// Detect reports the compression of data from its leading bytes
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, gzipMagic):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// Codec decodes and encodes snapshots with a size limit
type Codec struct {
	maxBytes int
}

// New creates a codec. maxBytes <= 0 uses DefaultMaxBytes.
func New(maxBytes int) *Codec {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Codec{maxBytes: maxBytes}
}

// Decode parses a persisted snapshot, decompressing it if needed
func (c *Codec) Decode(data []byte) (migration.Document, error) {
	if len(data) == 0 {
		return migration.Document{}, ErrEmpty
	}

	raw, err := c.decompress(data)
	if err != nil {
		return migration.Document{}, err
	}

	var doc migration.Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return migration.Document{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return doc, nil
}

// DecodeReader reads at most the size limit from r and decodes it
func (c *Codec) DecodeReader(r io.Reader) (migration.Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(c.maxBytes)+1))
	if err != nil {
		return migration.Document{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) > c.maxBytes {
		return migration.Document{}, ErrTooLarge
	}
	return c.Decode(data)
}

// ReadFile decodes the snapshot stored at path
func (c *Codec) ReadFile(path string) (migration.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return migration.Document{}, err
	}
	defer f.Close()

	doc, err := c.DecodeReader(f)
	if err != nil {
		return migration.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode writes snap in the current persisted shape
func (c *Codec) Encode(snap types.Snapshot, compression Compression) ([]byte, error) {
	raw, err := sonic.Marshal(migration.FromSnapshot(snap))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	switch compression {
	case CompressionNone, "":
		return raw, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("failed to gzip snapshot: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("failed to gzip snapshot: %w", err)
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("unsupported compression %q", compression)
	}
}

// decompress unwraps data and enforces the size limit on the result
func (c *Codec) decompress(data []byte) ([]byte, error) {
	var r io.Reader
	switch Detect(data) {
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd snapshot: %w", err)
		}
		defer dec.Close()
		r = dec
	case CompressionGzip:
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip snapshot: %w", err)
		}
		defer gz.Close()
		r = gz
	default:
		if len(data) > c.maxBytes {
			return nil, ErrTooLarge
		}
		return data, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r, int64(c.maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	if len(raw) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return raw, nil
}
