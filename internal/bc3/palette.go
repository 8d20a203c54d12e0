package bc3

// rgb565 expands a 16-bit RGB565 value to 8-bit RGB.
func rgb565(c uint16) (r, g, b uint8) {
	r = uint8((c >> 11) & 0x1F)
	g = uint8((c >> 5) & 0x3F)
	b = uint8(c & 0x1F)

	r = (r << 3) | (r >> 2)
	g = (g << 2) | (g >> 4)
	b = (b << 3) | (b >> 2)
	return
}

func pack565(r5, g6, b5 int) uint16 {
	return uint16(r5<<11 | g6<<5 | b5)
}

func expand5(v int) int { return v<<3 | v>>2 }
func expand6(v int) int { return v<<2 | v>>4 }

// colorPalette builds the 4-entry palette of a BC3 colour block. BC3 colour
// blocks always decode in four-colour mode.
func colorPalette(c0, c1 uint16) [4][3]uint8 {
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)

	return [4][3]uint8{
		{r0, g0, b0},
		{r1, g1, b1},
		{
			uint8((2*int(r0) + int(r1)) / 3),
			uint8((2*int(g0) + int(g1)) / 3),
			uint8((2*int(b0) + int(b1)) / 3),
		},
		{
			uint8((int(r0) + 2*int(r1)) / 3),
			uint8((int(g0) + 2*int(g1)) / 3),
			uint8((int(b0) + 2*int(b1)) / 3),
		},
	}
}

// alphaPalette builds the 8-entry BC3 alpha palette.
func alphaPalette(a0, a1 uint8) [8]uint8 {
	var p [8]uint8
	p[0], p[1] = a0, a1

	if a0 > a1 {
		// 8-step interpolation
		for i := 2; i < 8; i++ {
			p[i] = uint8(((8-i)*int(a0) + (i-1)*int(a1)) / 7)
		}
	} else {
		// 6-step interpolation + explicit 0 and 255
		for i := 2; i < 6; i++ {
			p[i] = uint8(((6-i)*int(a0) + (i-1)*int(a1)) / 5)
		}
		p[6] = 0
		p[7] = 255
	}
	return p
}
