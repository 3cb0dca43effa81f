// Package input turns raw terminal bytes into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key counts as held after its last byte arrived.
// Terminals send auto-repeat but no key-up, so holding has to be inferred.
const keyHoldDuration = 30 * time.Millisecond

// Input is the key state for one frame.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Space   bool
	Enter   bool
	Tab     bool   // Toggles the wave details panel
	Pressed []byte // Every byte received this frame
}

type key int

const (
	keyQuit key = iota
	keyLeft
	keyRight
	keyUp
	keyDown
	keySpace
	keyEnter
	keyTab
	numKeys
)

// bindings maps plain bytes to keys: WASD, IJKL, and the usual specials.
var bindings = func() map[byte]key {
	m := map[byte]key{' ': keySpace, '\n': keyEnter, '\r': keyEnter, '\t': keyTab}
	for k, letters := range map[key]string{
		keyQuit:  "qQ",
		keyLeft:  "aAjJ",
		keyRight: "dDlL",
		keyUp:    "wWiI",
		keyDown:  "sSkK",
	} {
		for i := range len(letters) {
			m[letters[i]] = k
		}
	}
	return m
}()

// arrows maps the final byte of an ESC [ x cursor sequence to its key.
var arrows = map[byte]key{'A': keyUp, 'B': keyDown, 'C': keyRight, 'D': keyLeft}

// Stream reads a terminal in the background and remembers when each key was last seen.
type Stream struct {
	ch       chan byte
	lastSeen [numKeys]time.Time
	closed   bool
}

// StartStream starts reading r. The stream reports Quit once r is exhausted.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		defer close(s.ch)
		for {
			b, err := r.ReadByte()
			if err != nil {
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has been exhausted.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput takes every byte that has arrived since the last call, without
// blocking, and returns the keys held now. Keys pressed together stay held
// together, so combinations like thrust and fire work.
func ReadInput(s *Stream) Input {
	return readInputAt(s, time.Now())
}

func readInputAt(s *Stream, now time.Time) Input {
	buf := s.drain()

	for i := 0; i < len(buf); i++ {
		if buf[i] == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			if k, ok := arrows[buf[i+2]]; ok {
				s.lastSeen[k] = now
				i += 2
				continue
			}
		}
		if k, ok := bindings[buf[i]]; ok {
			s.lastSeen[k] = now
		}
	}

	held := func(k key) bool { return now.Sub(s.lastSeen[k]) < keyHoldDuration }
	return Input{
		Quit:    s.closed || held(keyQuit),
		Left:    held(keyLeft),
		Right:   held(keyRight),
		Up:      held(keyUp),
		Down:    held(keyDown),
		Space:   held(keySpace),
		Enter:   held(keyEnter),
		Tab:     held(keyTab),
		Pressed: buf,
	}
}

// drain returns the bytes waiting on the channel and notes when it has closed.
func (s *Stream) drain() []byte {
	var buf []byte
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				return buf
			}
			buf = append(buf, b)
		default:
			return buf
		}
	}
}

// ResetKeyInput forgets held keys so a press that changed screens does not
// carry over into the next one.
func ResetKeyInput(s *Stream) {
	s.lastSeen = [numKeys]time.Time{}
}
