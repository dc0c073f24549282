// Package ansi decodes ANSI SGR escape sequences into styled text segments.
//
// The decoder is deliberately forgiving: malformed or truncated sequences are
// passed through as literal text, unknown SGR codes are ignored, and decoding
// never fails. Worst case the output degrades to unstyled text.
package ansi

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Segment is a contiguous run of text sharing one style. Segments are
// produced by Decode and never mutated afterwards.
type Segment struct {
	Text  string
	Style Style
}

// Width returns the display width of the segment in terminal cells.
func (s Segment) Width() int {
	return runewidth.StringWidth(s.Text)
}

// Decoder decodes a styled text stream chunk by chunk, carrying the style
// accumulator across calls. A Decoder must not be shared between streams.
type Decoder struct {
	style Style
}

// Decode decodes a single self-contained input. Equivalent to feeding the
// whole input to a fresh Decoder.
func Decode(input string) []Segment {
	var d Decoder
	return d.Feed(input)
}

// Reset clears the carried style accumulator.
func (d *Decoder) Reset() {
	d.style = Style{}
}

// Style returns the current style accumulator.
func (d *Decoder) Style() Style {
	return d.style
}

// Feed decodes the next chunk of the stream. Each literal run between SGR
// directives becomes one segment tagged with the style in effect when the
// run starts. A chunk containing only directives yields no segments, just
// a style accumulator update carried into the next chunk; a chunk with no
// directives at all comes back as one segment even when empty, so plain
// text always round-trips as itself.
func (d *Decoder) Feed(chunk string) []Segment {
	var segs []Segment
	sawDirective := false

	emit := func(text string) {
		if text == "" {
			return
		}
		segs = append(segs, Segment{Text: text, Style: d.style})
	}

	rest := chunk
	for {
		start, end, ok := findSGR(rest)
		if !ok {
			emit(rest)
			break
		}

		sawDirective = true
		emit(rest[:start])
		d.style.apply(parseParams(rest[start+2 : end]))
		rest = rest[end+1:]
	}

	if segs == nil && !sawDirective {
		segs = []Segment{{Style: d.style}}
	}

	return segs
}

// findSGR locates the first well-formed SGR sequence (ESC '[' params 'm') in
// s. Anything else, including truncated sequences at the end of input and
// non-SGR CSI sequences, is left for the caller to treat as literal text.
func findSGR(s string) (start, end int, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != 0x1b || i+1 >= len(s) || s[i+1] != '[' {
			continue
		}

		j := i + 2
		for j < len(s) && (s[j] == ';' || (s[j] >= '0' && s[j] <= '9')) {
			j++
		}

		if j < len(s) && s[j] == 'm' {
			return i, j, true
		}
	}

	return 0, 0, false
}

// parseParams splits a semicolon-separated SGR parameter list. An empty
// parameter means 0; anything that fails to parse as an integer is skipped
// without aborting the rest of the directive.
func parseParams(raw string) []int {
	parts := strings.Split(raw, ";")
	params := make([]int, 0, len(parts))

	for _, p := range parts {
		if p == "" {
			params = append(params, 0)
			continue
		}

		n := 0
		valid := true
		for _, r := range p {
			if r < '0' || r > '9' {
				valid = false
				break
			}
			n = n*10 + int(r-'0')
		}

		if valid {
			params = append(params, n)
		}
	}

	return params
}

// Placeholder returns a single-space segment carrying the given style. It is
// the rendering-boundary stand-in for empty decoder output: renderers that
// require non-empty content substitute it themselves rather than the decoder
// inventing text.
func Placeholder(style Style) Segment {
	return Segment{Text: " ", Style: style}
}

// Strip removes ANSI escape sequences from a string.
func Strip(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
