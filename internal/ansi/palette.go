package ansi

// The 16-entry base palette uses the xterm defaults: indices 0-7 are the
// standard colors, 8-15 the bright variants. The same palette serves
// foreground and background lookups.
var basePalette = [16]Color{
	RGB(0x00, 0x00, 0x00), // black
	RGB(0x80, 0x00, 0x00), // red
	RGB(0x00, 0x80, 0x00), // green
	RGB(0x80, 0x80, 0x00), // yellow
	RGB(0x00, 0x00, 0x80), // blue
	RGB(0x80, 0x00, 0x80), // magenta
	RGB(0x00, 0x80, 0x80), // cyan
	RGB(0xc0, 0xc0, 0xc0), // white
	RGB(0x80, 0x80, 0x80), // bright black
	RGB(0xff, 0x00, 0x00), // bright red
	RGB(0x00, 0xff, 0x00), // bright green
	RGB(0xff, 0xff, 0x00), // bright yellow
	RGB(0x00, 0x00, 0xff), // bright blue
	RGB(0xff, 0x00, 0xff), // bright magenta
	RGB(0x00, 0xff, 0xff), // bright cyan
	RGB(0xff, 0xff, 0xff), // bright white
}

// cubeSteps are the channel values of the 6x6x6 color cube (indices 16-231).
var cubeSteps = [6]uint8{0, 95, 135, 175, 215, 255}

func paletteColor(index int) Color {
	return basePalette[index&0x0f]
}

// indexedColor resolves a 256-color palette index: 0-15 base palette,
// 16-231 the 6x6x6 cube, 232-255 the grayscale ramp from 8 in steps of 10.
func indexedColor(index int) Color {
	switch {
	case index < 0 || index > 255:
		return Color{}
	case index < 16:
		return basePalette[index]
	case index < 232:
		n := index - 16
		return RGB(cubeSteps[n/36], cubeSteps[n/6%6], cubeSteps[n%6])
	default:
		v := uint8(8 + 10*(index-232))
		return RGB(v, v, v)
	}
}
