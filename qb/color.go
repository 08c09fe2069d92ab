package qb

import "image/color"

// decodeWord splits a voxel word into channels, low byte first, and orders
// them according to format. Anything other than RGBA is treated as BGRA.
func decodeWord(word uint32, format ColorFormat) color.RGBA {
	v1 := uint8(word)
	v2 := uint8(word >> 8)
	v3 := uint8(word >> 16)
	v4 := uint8(word >> 24)
	if format == RGBA {
		return color.RGBA{R: v1, G: v2, B: v3, A: v4}
	}
	return color.RGBA{R: v3, G: v2, B: v1, A: v4}
}
