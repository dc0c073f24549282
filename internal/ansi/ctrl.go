package ansi

// Terminal control sequences shared by the attach teardown, watch-mode
// repaint, and panic cursor recovery.
const (
	Reset       = "\x1b[0m"
	ClearScreen = "\x1b[2J"
	ShowCursor  = "\x1b[?25h"
	HideCursor  = "\x1b[?25l"
	CursorHome  = "\x1b[H"
)
