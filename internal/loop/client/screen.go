package client

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/object"
)

// drawFrame renders the latest snapshot and the overlay, then flushes both.
func (c *Client) drawFrame() error {
	st := c.state
	// A new screen starts from a blank terminal so the previous overlay can't linger
	if st.GameState != st.prevGameState || st.isInactive != st.wasInactive {
		c.chunkWriter.ClearScreen()
		c.canvas.ForceRedraw()
		st.prevGameState, st.wasInactive = st.GameState, st.isInactive
	}

	snapshot := c.server.GetSnapshot()
	st.trackWave(snapshot.Wave.Wave, st.delta.Seconds())

	c.canvas.Clear()
	ctx := object.DrawContext{
		Canvas: c.canvas,
		Writer: c.chunkWriter,
		Camera: st.Camera,
		View:   st.View,
		World:  snapshot.World,
	}
	for _, obj := range snapshot.Objects {
		if obj == st.Player && !object.ShouldRenderBlink(st.InvincibleTime, config.PlayerBlinkFrequency) {
			continue
		}
		if err := obj.Draw(ctx); err != nil {
			return err
		}
	}
	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawPlayerNames(snapshot.UserObjects, snapshot.World)
	c.drawUI(snapshot)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current game state.
func (c *Client) drawUI(snapshot *server.WorldSnapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX, centerY := termWidth/2, termHeight/2

	switch {
	case c.state.GameState == GameStateShutdown:
		c.writeBlock(centerX, centerY-3, shutdownLines(c.state.shutdownTimer))
	case c.state.isInactive:
		left := int(config.InactivityDisconnectUser - time.Since(c.lastInput).Seconds())
		c.writeBlock(centerX, centerY-2, []string{
			"INACTIVITY WARNING",
			"",
			fmt.Sprintf("You have been inactive for too long. You will be disconnected in %d seconds.", left),
			"",
			"Press any key to continue",
		})
	case c.state.GameState == GameStatePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snapshot)
	case c.state.GameState == GameStateStart:
		c.drawStartScreen(centerX, centerY)
	case c.state.GameState == GameStateDead:
		c.drawDeadScreen(centerX, centerY)
	}
}

// blink is true for alternating 600ms periods.
func blink() bool {
	return time.Now().UnixMilli()/600%2 == 0
}

// blockWidth returns the width of the widest line.
func blockWidth(lines []string) int {
	w := 0
	for _, line := range lines {
		w = max(w, len(line))
	}
	return w
}

// writeCentered writes s centered on column centerX.
func (c *Client) writeCentered(centerX, row int, s string) {
	c.chunkWriter.WriteAt(centerX-len(s)/2, row, s)
}

// writeBlock writes lines one per row from top, each centered on centerX, and
// returns the row below the block. Empty lines only take up space.
func (c *Client) writeBlock(centerX, top int, lines []string) int {
	for i, line := range lines {
		if line != "" {
			c.writeCentered(centerX, top+i, line)
		}
	}
	return top + len(lines)
}

// writeArt writes lines left-aligned as one block centered on centerX.
func (c *Client) writeArt(centerX, top int, art []string) int {
	col := centerX - blockWidth(art)/2
	for i, line := range art {
		c.chunkWriter.WriteAt(col, top+i, line)
	}
	return top + len(art)
}

var titleArt = []string{
	`__      ___ __   _____ ___ `,
	`\ \    / /_\\ \ / / __/ __|`,
	` \ \/\/ / _ \\ V /| _|\__ \`,
	`  \_/\_/_/ \_\\_/ |___|___/`,
}

var controlLines = []string{
	"Controls",
	"W / Up  . . . . Thrust",
	"A D / < >  . .  Rotate",
	"SPACE  . . . . . Shoot",
	"TAB  . . .  Wave stats",
	"Q  . . . . . . .  Quit",
}

// drawStartScreen draws the title, the controls and the shared world's wave.
func (c *Client) drawStartScreen(centerX, centerY int) {
	row := c.writeArt(centerX, centerY-8, titleArt)
	row = c.writeBlock(centerX, row+1, []string{"~ asteroids in endless waves, over SSH ~", ""})
	row = c.writeBlock(centerX, row+1, controlLines)

	if blink() {
		c.writeCentered(centerX, row+1, ">>  Press SPACE to Start  <<")
	}
	if wave := c.state.lastWave; wave > 0 {
		text := fmt.Sprintf("The field is on wave %d", wave)
		c.writeCentered(centerX, row+3, text)
		c.canvas.MarkTextDirty(centerX-len(text)/2, row+3, len(text))
	}
}

// drawPlayingHUD draws the in-game HUD. Fields are fixed width so a value that
// shrinks overwrites its old digits.
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snapshot *server.WorldSnapshot) {
	cw := c.chunkWriter

	cw.WriteAt(2, 1, fmt.Sprintf("Score: %-8d", c.state.Score))
	lives := fmt.Sprintf("Lives: %-3d", c.state.Lives)
	cw.WriteAt(termWidth-len(lives)-1, 1, lives)
	c.writeCentered(termWidth/2, 1, fmt.Sprintf("Wave: %-4d Asteroids: %-4d", snapshot.Wave.Wave, snapshot.Asteroids))

	if snapshot.Wave.AdvancePending {
		c.writeHighlight(termWidth/2, 2, draw.ColorBrightYellow, "NEXT WAVE INCOMING")
	}
	if c.state.bannerTime > 0 && termHeight/3 >= 3 {
		c.writeHighlight(termWidth/2, termHeight/3, draw.ColorBrightCyan, waveBanner(snapshot.Wave.Wave))
	}
	if c.state.ShowStats {
		c.drawStatsPanel(termHeight, snapshot)
	}
	if c.state.Player != nil {
		c.drawMinimap(termWidth, termHeight, snapshot)
		px, py := c.state.Player.GetPosition()
		cw.WriteAt(2, termHeight, fmt.Sprintf("X:%-5.0f Y:%-5.0f", px, py))
	}

	players := fmt.Sprintf("Players: %-4d", snapshot.Players)
	cw.WriteAt(termWidth-len(players)-1, termHeight, players)
}

// writeHighlight writes colored text centered on centerX over the canvas.
func (c *Client) writeHighlight(centerX, row int, color, s string) {
	col := centerX - len(s)/2
	if col < 1 {
		return
	}
	c.chunkWriter.WriteColoredAt(col, row, color, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

func waveBanner(wave int) string {
	return fmt.Sprintf(">>  W A V E  %d  <<", wave)
}

// statsLines formats the wave details panel.
func statsLines(snapshot *server.WorldSnapshot, username string) []string {
	st := snapshot.Wave
	lines := []string{
		fmt.Sprintf("Wave          %6d", st.Wave),
		fmt.Sprintf("Tokens   %4d / %4d", st.AvailableTokens, st.TokenBudget),
		fmt.Sprintf("Active   %4d / %4d", st.ActiveEnemies, st.MaxActiveEnemies),
		fmt.Sprintf("Killed   %4d / %4d", st.KilledThisWave, st.SpawnedThisWave),
		fmt.Sprintf("Total kills   %6d", st.TotalKilled),
		fmt.Sprintf("Spawn points  %6d", st.SpawnPoints),
	}
	if st.Stalled {
		lines = append(lines, "Spawning stalled   ")
	}
	if len(snapshot.TopScores) == 0 {
		return lines
	}
	lines = append(lines, "", "Top scores")
	for i, entry := range snapshot.TopScores {
		marker := ' '
		if entry.Username == username {
			marker = '>'
		}
		name := entry.Username
		if len(name) > 10 {
			name = name[:10]
		}
		lines = append(lines, fmt.Sprintf("%c%d %-10s %6d", marker, i+1, name, entry.Score))
	}
	return lines
}

// drawStatsPanel draws the wave details panel on the left edge.
func (c *Client) drawStatsPanel(termHeight int, snapshot *server.WorldSnapshot) {
	const top = 3
	lines := statsLines(snapshot, c.username)
	if top+len(lines) >= termHeight {
		return
	}
	for i, line := range lines {
		c.chunkWriter.WriteAt(2, top+i, line)
		c.canvas.MarkTextDirty(2, top+i, len(line))
	}
}

// Minimap cell contents; self wins over others.
const (
	mapEmpty byte = iota
	mapOther
	mapSelf
)

// minimapCell picks the half block for two stacked sub-rows and whether it shows
// the local player.
func minimapCell(top, bottom byte) (r rune, self bool) {
	self = top == mapSelf || bottom == mapSelf
	switch {
	case top != mapEmpty && bottom != mapEmpty:
		return draw.BlockFull, self
	case top != mapEmpty:
		return draw.BlockUpperHalf, self
	case bottom != mapEmpty:
		return draw.BlockLowerHalf, self
	}
	return ' ', false
}

// plotMinimap marks every ship on the minimap grid.
func (s *ClientState) plotMinimap(users []*object.User, world object.Screen) {
	grid := &s.minimapGrid
	*grid = [minimapSubRows][minimapWidth]byte{}

	ww, wh := float64(world.Width), float64(world.Height)
	for _, u := range users {
		col := min(max(int(u.X/ww*minimapWidth), 0), minimapWidth-1)
		sub := min(max(int(u.Y/wh*minimapSubRows), 0), minimapSubRows-1)
		switch {
		case u == s.Player:
			grid[sub][col] = mapSelf
		case grid[sub][col] == mapEmpty:
			grid[sub][col] = mapOther
		}
	}
}

// drawMinimap draws a boxed overview of every ship under the lives counter.
// Each row packs two sub-rows with half blocks; the local ship is bright cyan.
func (c *Client) drawMinimap(termWidth, termHeight int, snapshot *server.WorldSnapshot) {
	if snapshot.World.Width <= 0 || snapshot.World.Height <= 0 {
		return
	}
	left, top := termWidth-minimapWidth-3, 3
	if left < 1 || top+minimapHeight+1 > termHeight {
		return
	}
	c.state.plotMinimap(snapshot.UserObjects, snapshot.World)

	cw := c.chunkWriter
	edge := strings.Repeat("─", minimapWidth)
	cw.WriteAt(left, top, "┌"+edge+"┐")
	for row := range minimapHeight {
		cw.WriteAt(left, top+1+row, "│")
		color := ""
		for col := range minimapWidth {
			r, self := minimapCell(c.state.minimapGrid[row*2][col], c.state.minimapGrid[row*2+1][col])
			want := ""
			if r != ' ' {
				want = draw.ColorReset
				if self {
					want = draw.ColorBrightCyan
				}
			}
			if want != color {
				cw.WriteString(cmp.Or(want, draw.ColorReset))
				color = want
			}
			cw.WriteRune(r)
		}
		if color != "" {
			cw.WriteString(draw.ColorReset)
		}
		cw.WriteString("│")
	}
	cw.WriteAt(left, top+1+minimapHeight, "└"+edge+"┘")

	for row := range minimapHeight + 2 {
		c.canvas.MarkTextDirty(left, top+row, minimapWidth+2)
	}
}

// drawDeadScreen draws the lost-ship or game-over screen with the respawn prompt.
func (c *Client) drawDeadScreen(centerX, centerY int) {
	headline, prompt := "S H I P   L O S T", ">>  Press SPACE to Continue  <<"
	if c.state.Lives <= 0 {
		headline, prompt = "G A M E   O V E R", ">>  Press SPACE to Restart  <<"
	}
	c.writeHighlight(centerX, centerY-5, draw.ColorBrightRed, headline)

	lines := []string{fmt.Sprintf("Score: %d  Wave: %d", c.state.Score, c.state.lastWave), ""}
	if c.state.Lives > 0 {
		lines = append(lines, fmt.Sprintf("Lives remaining: %d", c.state.Lives))
	}
	row := c.writeBlock(centerX, centerY-2, lines) + 1

	switch {
	case c.state.RespawnTimeRemaining > 0:
		c.writeCentered(centerX, row, fmt.Sprintf("Respawn in %.1f seconds...", c.state.RespawnTimeRemaining))
	case blink():
		c.writeCentered(centerX, row, prompt)
	}
}

// shutdownLines is the notice shown while the server drains.
func shutdownLines(remaining float64) []string {
	return []string{
		"SERVER SHUTTING DOWN",
		"",
		"The server is restarting for maintenance.",
		"Please reconnect in a moment.",
		"",
		fmt.Sprintf("Disconnecting in %d seconds...", int(remaining)+1),
		"",
		"Press Q to disconnect now",
	}
}

// drawPlayerNames writes other players' names above their ships. The cells are
// marked dirty so the canvas paints over them once the ship moves on.
func (c *Client) drawPlayerNames(users []*object.User, world object.Screen) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	for _, u := range users {
		if u == c.state.Player || u.Username == "" {
			continue
		}
		positions := object.WorldToScreen(u.X, u.Y, c.state.Camera, c.state.View, world)
		for _, pos := range positions.Positions[:positions.Count] {
			col, row := c.canvas.LogicalToTerminal(pos.X, pos.Y-u.Size-2)
			col -= len(u.Username) / 2
			if row < 1 || row > termHeight || col < 1 || col+len(u.Username) > termWidth {
				continue
			}
			c.chunkWriter.WriteAt(col, row, u.Username)
			c.canvas.MarkTextDirty(col, row, len(u.Username))
		}
	}
}
