// Package draw renders to ANSI terminals: a half-block pixel canvas plus helpers
// for cursor control and chunked output over slow links.
package draw

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockEmpty     = ' '
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// ANSI color sequences used by HUD overlays.
const (
	ColorReset        = "\033[0m"
	ColorBrightCyan   = "\033[96m"
	ColorBrightYellow = "\033[93m"
	ColorBrightRed    = "\033[91m"
)
