// Package client renders one player's view of the shared world and forwards their
// keystrokes to the server. Each SSH session or local terminal runs one Client.
package client

import (
	"bufio"
	"io"
	"time"

	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/input"
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/object"
)

// Client drives a single terminal.
type Client struct {
	server server.GameServer
	handle *server.ClientHandle
	state  *ClientState

	canvas      *draw.Canvas
	chunkWriter *draw.ChunkWriter // Text overlay, flushed with the canvas
	writer      io.Writer
	termSize    draw.TermSizeFunc

	inputStream *input.Stream
	lastInput   time.Time
	username    string
}

// ClientOptions configures NewClient.
type ClientOptions struct {
	TermSizeFunc draw.TermSizeFunc // Defaults to the local terminal
	Username     string
}

// NewClient registers a client with gs, reading keys from r and drawing to w.
func NewClient(gs server.GameServer, r *bufio.Reader, w io.Writer, opts ClientOptions) *Client {
	termSize := opts.TermSizeFunc
	if termSize == nil {
		termSize = draw.DefaultTermSizeFunc
	}

	state := NewClientState()
	state.View = object.Screen{
		Width:   config.ViewWidth,
		Height:  config.ViewHeight,
		CenterX: config.ViewWidth / 2,
		CenterY: config.ViewHeight / 2,
	}
	state.Camera = object.Camera{X: float64(config.WorldWidth) / 2, Y: float64(config.WorldHeight) / 2}

	c := &Client{
		server:      gs,
		handle:      gs.RegisterClient(opts.Username),
		state:       state,
		canvas:      draw.NewScaledCanvas(0, 0, config.ViewWidth, config.ViewHeight),
		chunkWriter: draw.NewChunkWriter(w, 0, 0),
		writer:      w,
		termSize:    termSize,
		inputStream: input.StartStream(r),
		lastInput:   time.Now(),
		username:    opts.Username,
	}
	c.fitTerminal(false)
	return c
}

// Run renders frames until the player quits, idles out or the server goes away.
func (c *Client) Run() error {
	draw.HideCursor(c.writer)
	defer draw.ShowCursor(c.writer)
	draw.ClearScreen(c.writer)
	defer c.server.UnregisterClient(c.handle.ID)

	frame := time.NewTicker(config.ClientTargetFrameTime)
	defer frame.Stop()

	last := time.Now()
	for c.state.Running {
		now := time.Now()
		c.state.delta = now.Sub(last)
		last = now

		c.readInput(now)
		c.drainEvents()
		c.fitTerminal(true)
		c.step()

		if err := c.drawFrame(); err != nil {
			return err
		}
		<-frame.C
	}

	draw.ClearScreen(c.writer)
	return nil
}

// readInput polls the keyboard, tracks idleness and forwards keys while playing.
func (c *Client) readInput(now time.Time) {
	in := input.ReadInput(c.inputStream)
	c.state.Input = in

	if len(in.Pressed) > 0 {
		c.lastInput = now
	}
	if c.state.idleFor(now.Sub(c.lastInput)) || in.Quit {
		c.state.Running = false
	}
	c.state.toggleStats(in.Tab)

	if c.state.GameState == GameStatePlaying {
		c.server.SendInput(c.handle.ID, in)
	}
}

// drainEvents applies every event the server has queued for this client.
func (c *Client) drainEvents() {
	for {
		select {
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				c.state.Running = false
				return
			}
			c.state.applyEvent(ev)
		default:
			return
		}
	}
}

// step advances timers and reacts to this frame's input.
func (c *Client) step() {
	c.state.tick(c.state.delta.Seconds())

	if c.state.wantsSpawn() {
		c.spawn()
		return
	}
	if c.state.GameState == GameStatePlaying {
		c.state.follow(c.server.GetClientPlayer(c.handle.ID))
	}
}

// spawn asks the server for a ship, starting a fresh run when needed.
func (c *Client) spawn() {
	input.ResetKeyInput(c.inputStream)

	if c.state.beginLife() {
		c.server.ResetScore(c.handle.ID)
	}
	c.server.SpawnPlayer(c.handle.ID)
	c.state.follow(c.server.GetClientPlayer(c.handle.ID))
}

// fitTerminal sizes the canvas to the terminal, capped at the max render size and
// centered. With clear set, a change in layout wipes the old frame first.
func (c *Client) fitTerminal(clear bool) {
	termWidth, termHeight, err := draw.TerminalSizeRawWith(c.termSize)
	if err != nil {
		return
	}
	w, h, offCol, offRow := clampTermSize(termWidth, termHeight)

	changed := w != c.canvas.TerminalWidth() || h != c.canvas.TerminalHeight() ||
		offCol != c.canvas.OffsetCol() || offRow != c.canvas.OffsetRow()
	if clear && changed {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(w, h)
	c.canvas.SetOffset(offCol, offRow)
	c.chunkWriter.SetOffset(offCol, offRow)
}

// clampTermSize caps the terminal size at the max render size and returns the
// offset that centers the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	return renderWidth, renderHeight, (termWidth - renderWidth) / 2, (termHeight - renderHeight) / 2
}
