package bc3

import (
	"encoding/binary"
	"fmt"

	"pbr-texgen/internal/imgbuf"
)

// DecodeBlock expands one 16-byte block into 16 RGBA pixels.
func DecodeBlock(src []byte) (px [16][4]uint8) {
	_ = src[BlockSize-1]

	apal := alphaPalette(src[0], src[1])
	var bits [8]byte
	copy(bits[:6], src[2:8])
	aidx := binary.LittleEndian.Uint64(bits[:])

	c0 := binary.LittleEndian.Uint16(src[8:])
	c1 := binary.LittleEndian.Uint16(src[10:])
	cpal := colorPalette(c0, c1)
	cidx := binary.LittleEndian.Uint32(src[12:])

	for i := range px {
		c := cpal[(cidx>>(2*i))&0x3]
		px[i] = [4]uint8{c[0], c[1], c[2], apal[(aidx>>(3*i))&0x7]}
	}
	return px
}

// Decode expands BC3 data of a w×h image into a 4-channel image.
func Decode(data []byte, w, h int) (*imgbuf.Image, error) {
	if w <= 0 || h <= 0 || w%4 != 0 || h%4 != 0 {
		return nil, fmt.Errorf("bc3: dimensions %dx%d are not positive multiples of 4", w, h)
	}
	if want := BlockCount(w, h) * BlockSize; len(data) < want {
		return nil, fmt.Errorf("bc3: have %d bytes, need %d for %dx%d", len(data), want, w, h)
	}

	out := imgbuf.New(w, h, 4)
	bw := w / 4
	for b := 0; b < BlockCount(w, h); b++ {
		px := DecodeBlock(data[b*BlockSize:])
		x0, y0 := (b%bw)*4, (b/bw)*4
		for i, p := range px {
			o := out.Offset(x0+i%4, y0+i/4)
			copy(out.Pix[o:o+4], p[:])
		}
	}
	return out, nil
}
