package draw

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"golang.org/x/term"
)

// Escape sequences for whole-screen control.
const (
	seqClearScreen = "\033[H\033[2J"
	seqHideCursor  = "\033[?25l"
	seqShowCursor  = "\033[?25h"
)

// maxChunkSize keeps each write under a typical MTU so frames stream smoothly over SSH.
const maxChunkSize = 1400

// ErrNoTerminalSize is returned when a size function reports a non-positive dimension.
var ErrNoTerminalSize = errors.New("draw: terminal size unavailable")

// appendCursor appends the sequence moving the cursor to the 1-based (col, row).
func appendCursor(dst []byte, col, row int) []byte {
	dst = append(dst, "\033["...)
	dst = strconv.AppendInt(dst, int64(row), 10)
	dst = append(dst, ';')
	dst = strconv.AppendInt(dst, int64(col), 10)
	return append(dst, 'H')
}

// writeChunks writes data in pieces of at most maxChunkSize bytes.
func writeChunks(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := w.Write(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// ChunkWriter collects one frame of overlay text and cursor moves, then writes it
// with Flush. Positions are 1-based canvas cells shifted by the offset.
type ChunkWriter struct {
	buf            []byte
	out            *bufio.Writer
	offCol, offRow int
}

var _ io.Writer = (*ChunkWriter)(nil)

// NewChunkWriter returns a ChunkWriter for w with the given canvas offset.
func NewChunkWriter(w io.Writer, offsetCol, offsetRow int) *ChunkWriter {
	return &ChunkWriter{
		out:    bufio.NewWriterSize(w, 8192),
		offCol: offsetCol,
		offRow: offsetRow,
	}
}

// SetOffset changes the canvas offset, e.g. after a resize.
func (cw *ChunkWriter) SetOffset(offsetCol, offsetRow int) {
	cw.offCol, cw.offRow = offsetCol, offsetRow
}

// MoveCursor queues a move to the canvas cell (col, row).
func (cw *ChunkWriter) MoveCursor(col, row int) {
	cw.buf = appendCursor(cw.buf, col+cw.offCol, row+cw.offRow)
}

// Write queues raw bytes. Canvas.Render writes through it.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	cw.buf = append(cw.buf, p...)
	return len(p), nil
}

// WriteString queues s at the current cursor.
func (cw *ChunkWriter) WriteString(s string) {
	cw.buf = append(cw.buf, s...)
}

// WriteRune queues r at the current cursor.
func (cw *ChunkWriter) WriteRune(r rune) {
	cw.buf = utf8.AppendRune(cw.buf, r)
}

// WriteAt queues s at the canvas cell (col, row).
func (cw *ChunkWriter) WriteAt(col, row int, s string) {
	cw.MoveCursor(col, row)
	cw.WriteString(s)
}

// WriteColoredAt queues s at (col, row) in color, resetting the color after it.
func (cw *ChunkWriter) WriteColoredAt(col, row int, color, s string) {
	cw.MoveCursor(col, row)
	cw.buf = append(append(append(cw.buf, color...), s...), ColorReset...)
}

// ClearScreen queues a full clear.
func (cw *ChunkWriter) ClearScreen() {
	cw.WriteString(seqClearScreen)
}

// Len returns the number of bytes waiting for Flush.
func (cw *ChunkWriter) Len() int {
	return len(cw.buf)
}

// Flush writes everything queued in chunks and empties the queue.
func (cw *ChunkWriter) Flush() error {
	err := writeChunks(cw.out, cw.buf)
	cw.buf = cw.buf[:0]
	if err != nil {
		return err
	}
	return cw.out.Flush()
}

// TermSizeFunc reports a terminal's size in cells.
type TermSizeFunc func() (width, height int, err error)

// DefaultTermSizeFunc measures the process's own stdout.
var DefaultTermSizeFunc TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears w's terminal and homes the cursor.
func ClearScreen(w io.Writer) {
	io.WriteString(w, seqClearScreen)
}

// HideCursor hides the cursor.
func HideCursor(w io.Writer) {
	io.WriteString(w, seqHideCursor)
}

// ShowCursor shows the cursor again.
func ShowCursor(w io.Writer) {
	io.WriteString(w, seqShowCursor)
}

// TerminalSizeRawWith returns the size reported by sizeFunc, or by
// DefaultTermSizeFunc when sizeFunc is nil. A zero size (an SSH client that has
// not sent its window yet) is reported as ErrNoTerminalSize.
func TerminalSizeRawWith(sizeFunc TermSizeFunc) (width, height int, err error) {
	if sizeFunc == nil {
		sizeFunc = DefaultTermSizeFunc
	}
	width, height, err = sizeFunc()
	if err != nil {
		return 0, 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, 0, ErrNoTerminalSize
	}
	return width, height, nil
}
