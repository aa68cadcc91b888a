package math

// Color is a linear RGB color with components in [0, 1].
type Color struct {
	R, G, B float32
}

// Hex builds a Color from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{
		R: float32((v>>16)&0xff) / 255,
		G: float32((v>>8)&0xff) / 255,
		B: float32(v&0xff) / 255,
	}
}

// Scale returns the color multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Array returns the color as a [3]float32 for uniform upload.
func (c Color) Array() [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}
