package ansi

import "testing"

func TestDecode_PlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "ascii", in: "hello world"},
		{name: "unicode", in: "✓ 你好"},
		{name: "newlines", in: "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Decode(tt.in)
			if len(segs) != 1 {
				t.Fatalf("Decode() returned %d segments, want 1", len(segs))
			}
			if segs[0].Text != tt.in {
				t.Errorf("text = %q, want %q", segs[0].Text, tt.in)
			}
			if !segs[0].Style.IsZero() {
				t.Errorf("style = %+v, want zero", segs[0].Style)
			}
		})
	}
}

func TestDecode_ColorThenReset(t *testing.T) {
	segs := Decode("\x1b[31mred\x1b[0mplain")
	if len(segs) != 2 {
		t.Fatalf("Decode() returned %d segments, want 2", len(segs))
	}

	if segs[0].Text != "red" {
		t.Errorf("segs[0].Text = %q, want %q", segs[0].Text, "red")
	}
	if got, want := segs[0].Style.Foreground, paletteColor(1); got != want {
		t.Errorf("segs[0] foreground = %v, want %v", got.Hex(), want.Hex())
	}

	if segs[1].Text != "plain" {
		t.Errorf("segs[1].Text = %q, want %q", segs[1].Text, "plain")
	}
	if !segs[1].Style.IsZero() {
		t.Errorf("segs[1].Style = %+v, want zero", segs[1].Style)
	}
}

func TestDecode_Attributes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Style
	}{
		{
			name: "bold",
			in:   "\x1b[1mx",
			want: Style{Bold: true},
		},
		{
			name: "combined directive",
			in:   "\x1b[1;4;31mx",
			want: Style{Bold: true, Underline: true, Foreground: paletteColor(1)},
		},
		{
			name: "dim is a flag not an opacity",
			in:   "\x1b[2mx",
			want: Style{Dim: true},
		},
		{
			name: "code 22 clears bold and dim",
			in:   "\x1b[1;2;3m\x1b[22mx",
			want: Style{Italic: true},
		},
		{
			name: "code 39 clears foreground only",
			in:   "\x1b[31;42m\x1b[39mx",
			want: Style{Background: paletteColor(2)},
		},
		{
			name: "code 49 clears background only",
			in:   "\x1b[31;42m\x1b[49mx",
			want: Style{Foreground: paletteColor(1)},
		},
		{
			name: "bright foreground range",
			in:   "\x1b[96mx",
			want: Style{Foreground: paletteColor(14)},
		},
		{
			name: "bright background range",
			in:   "\x1b[103mx",
			want: Style{Background: paletteColor(11)},
		},
		{
			name: "empty param is reset",
			in:   "\x1b[1m\x1b[mx",
			want: Style{},
		},
		{
			name: "unknown codes ignored",
			in:   "\x1b[1;85mx",
			want: Style{Bold: true},
		},
		{
			name: "strikethrough set and cleared",
			in:   "\x1b[9m\x1b[29m\x1b[4mx",
			want: Style{Underline: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Decode(tt.in)
			if len(segs) == 0 {
				t.Fatal("Decode() returned no segments")
			}

			last := segs[len(segs)-1]
			if last.Text != "x" {
				t.Fatalf("last segment text = %q, want %q", last.Text, "x")
			}
			if last.Style != tt.want {
				t.Errorf("style = %+v, want %+v", last.Style, tt.want)
			}
		})
	}
}

func TestDecode_ExtendedColors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		wantFg Color
		wantBg Color
	}{
		{
			name:   "256 cube index 196",
			in:     "\x1b[38;5;196mx",
			wantFg: RGB(255, 0, 0),
		},
		{
			name:   "256 base palette index 4",
			in:     "\x1b[38;5;4mx",
			wantFg: RGB(0, 0, 0x80),
		},
		{
			name:   "256 cube interior",
			in:     "\x1b[38;5;110mx",
			wantFg: RGB(135, 175, 215),
		},
		{
			name:   "256 grayscale first",
			in:     "\x1b[38;5;232mx",
			wantFg: RGB(8, 8, 8),
		},
		{
			name:   "256 grayscale last",
			in:     "\x1b[48;5;255mx",
			wantBg: RGB(238, 238, 238),
		},
		{
			name:   "truecolor foreground",
			in:     "\x1b[38;2;12;34;56mx",
			wantFg: RGB(12, 34, 56),
		},
		{
			name:   "truecolor background",
			in:     "\x1b[48;2;200;100;50mx",
			wantBg: RGB(200, 100, 50),
		},
		{
			name: "truncated extended form ignored",
			in:   "\x1b[38;5mx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Decode(tt.in)
			if len(segs) != 1 {
				t.Fatalf("Decode() returned %d segments, want 1", len(segs))
			}
			if segs[0].Style.Foreground != tt.wantFg {
				t.Errorf("foreground = %v, want %v", segs[0].Style.Foreground.Hex(), tt.wantFg.Hex())
			}
			if segs[0].Style.Background != tt.wantBg {
				t.Errorf("background = %v, want %v", segs[0].Style.Background.Hex(), tt.wantBg.Hex())
			}
		})
	}
}

func TestDecode_MalformedInput(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
	}{
		{
			name:     "truncated sequence at end is literal",
			in:       "hello \x1b[31",
			wantText: "hello \x1b[31",
		},
		{
			name:     "bare escape is literal",
			in:       "a\x1bb",
			wantText: "a\x1bb",
		},
		{
			name:     "non-SGR CSI left as literal",
			in:       "\x1b[2Jtext",
			wantText: "\x1b[2Jtext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Decode(tt.in)
			if len(segs) != 1 {
				t.Fatalf("Decode() returned %d segments, want 1", len(segs))
			}
			if segs[0].Text != tt.wantText {
				t.Errorf("text = %q, want %q", segs[0].Text, tt.wantText)
			}
		})
	}
}

func TestDecode_EmptyInput(t *testing.T) {
	segs := Decode("")
	if len(segs) != 1 {
		t.Fatalf("Decode(\"\") returned %d segments, want 1", len(segs))
	}
	if segs[0].Text != "" {
		t.Errorf("text = %q, want empty", segs[0].Text)
	}

	ph := Placeholder(segs[0].Style)
	if ph.Text != " " {
		t.Errorf("Placeholder text = %q, want single space", ph.Text)
	}
}

func TestDecode_DirectiveOnlyInputKeepsStyle(t *testing.T) {
	var d Decoder

	segs := d.Feed("\x1b[1;35m")
	if len(segs) != 0 {
		t.Fatalf("Feed() = %+v, want no segments for directive-only input", segs)
	}
	if !d.Style().Bold || d.Style().Foreground != paletteColor(5) {
		t.Errorf("carried style = %+v, want bold magenta", d.Style())
	}

	next := d.Feed("text")
	if len(next) != 1 || next[0].Text != "text" {
		t.Fatalf("following chunk = %+v, want one text segment", next)
	}
	if !next[0].Style.Bold || next[0].Style.Foreground != paletteColor(5) {
		t.Errorf("following chunk style = %+v, want bold magenta carried over", next[0].Style)
	}
}

func TestDecoder_StyleCarriesAcrossChunks(t *testing.T) {
	var d Decoder

	first := d.Feed("\x1b[32mgre")
	second := d.Feed("en\x1b[0m done")

	if len(first) != 1 || first[0].Text != "gre" {
		t.Fatalf("first chunk = %+v", first)
	}
	if len(second) != 2 {
		t.Fatalf("second chunk returned %d segments, want 2", len(second))
	}
	if second[0].Style.Foreground != paletteColor(2) {
		t.Errorf("carried foreground = %v, want green", second[0].Style.Foreground.Hex())
	}
	if !second[1].Style.IsZero() {
		t.Errorf("style after reset = %+v, want zero", second[1].Style)
	}

	d.Reset()
	if !d.Style().IsZero() {
		t.Errorf("style after Reset = %+v, want zero", d.Style())
	}
}

// Re-serializing segments through Style.SGR and decoding again must preserve
// color and attribute equivalence, though not the original byte sequence.
func TestDecode_RoundTripEquivalence(t *testing.T) {
	in := "\x1b[1;31malpha\x1b[0m \x1b[38;5;196;48;5;22;4mbeta\x1b[0m"

	first := Decode(in)

	var rejoined string
	for _, seg := range first {
		rejoined += seg.Style.SGR() + seg.Text
	}

	second := Decode(rejoined)

	var literals []Segment
	for _, seg := range second {
		if seg.Text != "" {
			literals = append(literals, seg)
		}
	}

	if len(literals) != len(first) {
		t.Fatalf("round trip produced %d literal segments, want %d", len(literals), len(first))
	}

	for i := range first {
		if literals[i].Text != first[i].Text {
			t.Errorf("segment %d text = %q, want %q", i, literals[i].Text, first[i].Text)
		}
		if literals[i].Style != first[i].Style {
			t.Errorf("segment %d style = %+v, want %+v", i, literals[i].Style, first[i].Style)
		}
	}
}

func TestIndexedColor(t *testing.T) {
	tests := []struct {
		index int
		want  Color
	}{
		{index: 0, want: RGB(0, 0, 0)},
		{index: 15, want: RGB(255, 255, 255)},
		{index: 16, want: RGB(0, 0, 0)},
		{index: 21, want: RGB(0, 0, 255)},
		{index: 231, want: RGB(255, 255, 255)},
		{index: 244, want: RGB(128, 128, 128)},
		{index: 300, want: Color{}},
		{index: -1, want: Color{}},
	}

	for _, tt := range tests {
		if got := indexedColor(tt.index); got != tt.want {
			t.Errorf("indexedColor(%d) = %v, want %v", tt.index, got.Hex(), tt.want.Hex())
		}
	}
}

func TestSegmentWidth(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{text: "abc", want: 3},
		{text: "你好", want: 4},
		{text: "", want: 0},
	}

	for _, tt := range tests {
		seg := Segment{Text: tt.text}
		if got := seg.Width(); got != tt.want {
			t.Errorf("Width(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text",
			in:   "hello world",
			want: "hello world",
		},
		{
			name: "single color sequence",
			in:   "\x1b[31mred\x1b[0m text",
			want: "red text",
		},
		{
			name: "multiple sequences",
			in:   "a\x1b[1mb\x1b[0mc\x1b[32md\x1b[0m",
			want: "abcd",
		},
		{
			name: "unicode around ansi",
			in:   "✓ \x1b[36mblue\x1b[0m 你好",
			want: "✓ blue 你好",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strip(tt.in); got != tt.want {
				t.Fatalf("Strip() = %q, want %q", got, tt.want)
			}
		})
	}
}
