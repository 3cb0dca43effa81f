package draw

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestChunkWriterAppliesOffset(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 3, 2)
	cw.WriteAt(1, 1, "hi")

	if cw.Len() == 0 {
		t.Fatalf("expected buffered output before flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got, want := out.String(), "\033[3;4Hhi"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if cw.Len() != 0 {
		t.Fatalf("expected empty buffer after flush")
	}
}

func TestChunkWriterColoredText(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	cw.WriteColoredAt(5, 1, ColorBrightCyan, "WAVE")
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	got := out.String()
	if !strings.HasSuffix(got, ColorBrightCyan+"WAVE"+ColorReset) {
		t.Fatalf("expected colored text with reset, got %q", got)
	}
}

func TestChunkWriterFlushesLargeOutput(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 0, 0)
	big := strings.Repeat("x", maxChunkSize*3+7)
	cw.WriteString(big)
	if err := cw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if out.String() != big {
		t.Fatalf("output corrupted across chunks: got %d bytes", out.Len())
	}
}

func TestTerminalSizeRawWith(t *testing.T) {
	w, h, err := TerminalSizeRawWith(func() (int, int, error) { return 80, 24, nil })
	if err != nil || w != 80 || h != 24 {
		t.Fatalf("expected 80x24, got %dx%d (err %v)", w, h, err)
	}

	_, _, err = TerminalSizeRawWith(func() (int, int, error) { return 0, 0, nil })
	if !errors.Is(err, ErrNoTerminalSize) {
		t.Fatalf("expected ErrNoTerminalSize, got %v", err)
	}

	boom := errors.New("boom")
	_, _, err = TerminalSizeRawWith(func() (int, int, error) { return 0, 0, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected size func error passed through, got %v", err)
	}
}
