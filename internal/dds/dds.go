package dds

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrBadMagic    = errors.New("dds: not a DDS file")
	ErrBadHeader   = errors.New("dds: malformed header")
	ErrUnsupported = errors.New("dds: unsupported pixel format")
	ErrTruncated   = errors.New("dds: truncated payload")
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// File is a parsed container.
type File struct {
	Header Header
	Data   []byte // BC3 blocks, row-major
}

// Width and Height return the surface size.
func (f *File) Width() int  { return int(f.Header.Width) }
func (f *File) Height() int { return int(f.Header.Height) }

// WriteOptions controls container output.
type WriteOptions struct {
	// Zstd wraps the whole container in a zstd frame.
	Zstd bool
}

// Write serializes a w×h BC3 payload as a container to out. The payload must
// be exactly LinearSize(w, h) bytes.
func Write(out io.Writer, w, h int, blocks []byte, opts WriteOptions) error {
	if w <= 0 || h <= 0 || w%4 != 0 || h%4 != 0 {
		return fmt.Errorf("dds: dimensions %dx%d are not positive multiples of 4", w, h)
	}
	if len(blocks) != LinearSize(w, h) {
		return fmt.Errorf("dds: payload is %d bytes, want %d", len(blocks), LinearSize(w, h))
	}

	head, err := NewDXT5Header(w, h).MarshalBinary()
	if err != nil {
		return err
	}

	if opts.Zstd {
		raw := make([]byte, 0, len(head)+len(blocks))
		raw = append(raw, head...)
		raw = append(raw, blocks...)
		if _, err := out.Write(compress(raw)); err != nil {
			return fmt.Errorf("dds: write: %w", err)
		}
		return nil
	}

	if _, err := out.Write(head); err != nil {
		return fmt.Errorf("dds: write header: %w", err)
	}
	if _, err := out.Write(blocks); err != nil {
		return fmt.Errorf("dds: write payload: %w", err)
	}
	return nil
}

// Read parses a container, transparently unwrapping zstd. It validates the
// magic, header sizes, FourCC and that the payload holds the declared linear
// size; extra trailing bytes are ignored.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dds: read: %w", err)
	}
	return Parse(data)
}

// Parse is Read over an in-memory file.
func Parse(data []byte) (*File, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := decompress(data)
		if err != nil {
			return nil, fmt.Errorf("dds: zstd: %w", err)
		}
		data = plain
	}

	h, err := readHeader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if h.PixelFormat.Flags&PixelFormatFourCC == 0 || h.PixelFormat.FourCC != FourCCDXT5 {
		return nil, fmt.Errorf("dds: fourcc %q: %w", h.PixelFormat.FourCC[:], ErrUnsupported)
	}

	want := LinearSize(int(h.Width), int(h.Height))
	if h.Flags&FlagLinearSize != 0 && int(h.PitchOrLinearSize) != want {
		return nil, fmt.Errorf("dds: declared linear size %d for %dx%d: %w", h.PitchOrLinearSize, h.Width, h.Height, ErrBadHeader)
	}
	payload := data[DataOffset:]
	if len(payload) < want {
		return nil, fmt.Errorf("dds: have %d of %d payload bytes: %w", len(payload), want, ErrTruncated)
	}
	return &File{Header: h, Data: payload[:want:want]}, nil
}

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

// compress and decompress share one stateless encoder and decoder; EncodeAll
// and DecodeAll are safe for concurrent use.
func compress(raw []byte) []byte {
	encoderOnce.Do(func() {
		var err error
		encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			panic(err)
		}
	})
	return encoder.EncodeAll(raw, nil)
}

func decompress(data []byte) ([]byte, error) {
	decoderOnce.Do(func() {
		var err error
		decoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			panic(err)
		}
	})
	return decoder.DecodeAll(data, nil)
}
