// Command game runs the server and a single client in one process on the local
// terminal, for playing offline.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/tomz197/asteroid-waves/internal/loop/client"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// The terminal belongs to the game; logs only go to a file when asked for
	logger := log.New(logOutput(os.Getenv("GAME_LOG")))
	log.SetDefault(logger)

	opts, err := server.OptionsFromEnv(logger)
	if err != nil {
		return fmt.Errorf("invalid wave settings: %w", err)
	}

	fd := int(os.Stdin.Fd())
	saved, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer term.Restore(fd, saved)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gs := server.NewServer(opts)
	go gs.Run(ctx)

	c := client.NewClient(gs, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: os.Getenv("USER"),
	})
	if err := c.Run(); err != nil {
		return fmt.Errorf("game error: %w", err)
	}
	logger.Info("session over", "wave", gs.Status().Wave)
	return nil
}

// logOutput opens path for appending, or discards logs when path is empty or unusable.
func logOutput(path string) io.Writer {
	if path == "" {
		return io.Discard
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard
	}
	return f
}
