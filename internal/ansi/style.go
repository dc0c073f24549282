package ansi

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB terminal color. The zero value means "not set" (terminal
// default); palette and 256-index colors are resolved to RGB at decode time
// so one canonical palette serves both foreground and background.
type Color struct {
	R, G, B uint8

	valid bool
}

// RGB constructs a set color from components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, valid: true}
}

// IsSet reports whether the color is set.
func (c Color) IsSet() bool {
	return c.valid
}

// Hex returns the color as a #rrggbb string, or "" when not set.
func (c Color) Hex() string {
	if !c.valid {
		return ""
	}

	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Style is the SGR attribute accumulator. It is mutated by successive
// directives during a decode pass and snapshotted into each emitted segment.
type Style struct {
	Foreground    Color
	Background    Color
	Bold          bool
	Dim           bool
	Italic        bool
	Underline     bool
	Strikethrough bool
}

// IsZero reports whether no attribute is set.
func (st Style) IsZero() bool {
	return st == Style{}
}

// apply mutates the style per one SGR directive's parameter list, consuming
// the extra slots of 38/48 extended color forms. Unknown codes are ignored.
func (st *Style) apply(params []int) {
	for i := 0; i < len(params); i++ {
		code := params[i]

		switch {
		case code == 0:
			*st = Style{}
		case code == 1:
			st.Bold = true
		case code == 2:
			st.Dim = true
		case code == 3:
			st.Italic = true
		case code == 4:
			st.Underline = true
		case code == 9:
			st.Strikethrough = true
		case code == 22:
			st.Bold = false
			st.Dim = false
		case code == 23:
			st.Italic = false
		case code == 24:
			st.Underline = false
		case code == 29:
			st.Strikethrough = false
		case code >= 30 && code <= 37:
			st.Foreground = paletteColor(code - 30)
		case code == 38:
			color, consumed := extendedColor(params[i+1:])
			if color.IsSet() {
				st.Foreground = color
			}
			i += consumed
		case code == 39:
			st.Foreground = Color{}
		case code >= 40 && code <= 47:
			st.Background = paletteColor(code - 40)
		case code == 48:
			color, consumed := extendedColor(params[i+1:])
			if color.IsSet() {
				st.Background = color
			}
			i += consumed
		case code == 49:
			st.Background = Color{}
		case code >= 90 && code <= 97:
			st.Foreground = paletteColor(code - 90 + 8)
		case code >= 100 && code <= 107:
			st.Background = paletteColor(code - 100 + 8)
		}
	}
}

// extendedColor resolves the parameter tail of a 38/48 directive: `5;n` for
// a 256-color palette lookup or `2;r;g;b` for truecolor. It returns the
// number of parameter slots consumed so the caller can skip them even when
// the tail is too short to resolve.
func extendedColor(tail []int) (color Color, consumed int) {
	if len(tail) == 0 {
		return Color{}, 0
	}

	switch tail[0] {
	case 5:
		if len(tail) < 2 {
			return Color{}, len(tail)
		}

		return indexedColor(tail[1]), 2
	case 2:
		if len(tail) < 4 {
			return Color{}, len(tail)
		}

		return RGB(clampByte(tail[1]), clampByte(tail[2]), clampByte(tail[3])), 4
	default:
		return Color{}, 1
	}
}

func clampByte(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}

	return uint8(n)
}

// SGR re-serializes the style to one ANSI escape sequence. Decoding the
// result reproduces an equivalent style, which keeps segment streams
// re-renderable without information loss.
func (st Style) SGR() string {
	params := []string{"0"}

	if st.Bold {
		params = append(params, "1")
	}
	if st.Dim {
		params = append(params, "2")
	}
	if st.Italic {
		params = append(params, "3")
	}
	if st.Underline {
		params = append(params, "4")
	}
	if st.Strikethrough {
		params = append(params, "9")
	}

	if st.Foreground.IsSet() {
		params = append(params, "38", "2",
			strconv.Itoa(int(st.Foreground.R)),
			strconv.Itoa(int(st.Foreground.G)),
			strconv.Itoa(int(st.Foreground.B)))
	}

	if st.Background.IsSet() {
		params = append(params, "48", "2",
			strconv.Itoa(int(st.Background.R)),
			strconv.Itoa(int(st.Background.G)),
			strconv.Itoa(int(st.Background.B)))
	}

	return "\x1b[" + strings.Join(params, ";") + "m"
}
