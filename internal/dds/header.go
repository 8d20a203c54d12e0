// Package dds reads and writes single-surface BC3 (DXT5) DDS containers.
//
// A file is the 4-byte magic "DDS ", a 124-byte header (which embeds the
// 32-byte pixel format and the capability words) and the block payload at
// offset 128. All fields are little-endian. Files may optionally be wrapped in
// a zstd frame; Read detects and unwraps it.
package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic opens every DDS file.
	Magic = "DDS "

	HeaderSize      = 124
	PixelFormatSize = 32
	// DataOffset is where the block payload starts.
	DataOffset = len(Magic) + HeaderSize
)

// Header flags.
const (
	FlagCaps        = 0x1
	FlagHeight      = 0x2
	FlagWidth       = 0x4
	FlagPixelFormat = 0x1000
	FlagLinearSize  = 0x80000
)

// PixelFormatFourCC marks the FourCC field as valid.
const PixelFormatFourCC = 0x4

// CapsTexture is the primary capability bit every file sets.
const CapsTexture = 0x1000

// FourCCDXT5 identifies BC3 payloads.
var FourCCDXT5 = [4]byte{'D', 'X', 'T', '5'}

// PixelFormat is the DDS_PIXELFORMAT structure.
type PixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// Header is the DDS_HEADER structure. Field order and widths are the wire
// layout; binary.Write serializes it without padding.
type Header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       PixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// NewDXT5Header describes a single-mip w×h BC3 surface.
func NewDXT5Header(w, h int) Header {
	return Header{
		Size:              HeaderSize,
		Flags:             FlagCaps | FlagHeight | FlagWidth | FlagPixelFormat | FlagLinearSize,
		Height:            uint32(h),
		Width:             uint32(w),
		PitchOrLinearSize: uint32(LinearSize(w, h)),
		Depth:             0,
		MipMapCount:       1,
		PixelFormat: PixelFormat{
			Size:   PixelFormatSize,
			Flags:  PixelFormatFourCC,
			FourCC: FourCCDXT5,
		},
		Caps: CapsTexture,
	}
}

// LinearSize is the BC3 payload size of a w×h surface.
func LinearSize(w, h int) int {
	return (w / 4) * (h / 4) * 16
}

// MarshalBinary returns magic followed by the serialized header.
func (h Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(DataOffset)
	buf.WriteString(Magic)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("dds: encode header: %w", err)
	}
	return buf.Bytes(), nil
}

func readHeader(r io.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, fmt.Errorf("dds: read magic: %w", ErrTruncated)
	}
	if string(magic[:]) != Magic {
		return Header{}, ErrBadMagic
	}

	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return Header{}, fmt.Errorf("dds: read header: %w", ErrTruncated)
	}
	if h.Size != HeaderSize || h.PixelFormat.Size != PixelFormatSize {
		return Header{}, fmt.Errorf("dds: header sizes %d/%d: %w", h.Size, h.PixelFormat.Size, ErrBadHeader)
	}
	return h, nil
}
