// Command ssh serves the shared asteroid field to any number of SSH sessions,
// plus a small HTTP status feed with the current wave.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/asteroid-waves/internal/config"
	"github.com/tomz197/asteroid-waves/internal/draw"
	"github.com/tomz197/asteroid-waves/internal/loop/client"
	gameconfig "github.com/tomz197/asteroid-waves/internal/loop/config"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/status"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultStatusAddr  = ":8081"

	drainTimeout    = 15 * time.Second // Players get this long to see the shutdown notice
	shutdownTimeout = 5 * time.Second
)

func main() {
	logger := newLogger(config.GetEnv("LOG_LEVEL", ""))
	log.SetDefault(logger)

	addr := net.JoinHostPort(config.GetEnv("SSH_HOST", defaultHost), config.GetEnv("SSH_PORT", defaultPort))
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	statusAddr := config.GetEnv("STATUS_ADDR", defaultStatusAddr)
	logger.Info("ssh config", "addr", addr, "hostKeyPath", hostKeyPath, "statusAddr", statusAddr)

	opts, err := server.OptionsFromEnv(logger)
	if err != nil {
		logger.Warn("invalid wave settings, using defaults for those keys", "err", err)
	}
	logger.Info("wave settings",
		"tokens", opts.Wave.StartingTokens,
		"growth", opts.Wave.GrowthFactor,
		"threshold", opts.Wave.KillThreshold,
		"maxActive", opts.Wave.MaxActiveEnemies,
		"delay", opts.Wave.AdvanceDelay,
		"spawnPoints", opts.SpawnPoints)

	gameCtx, stopGame := context.WithCancel(context.Background())
	defer stopGame()
	game := server.NewServer(opts)
	go game.Run(gameCtx)
	logger.Info("game server started")

	if statusAddr != "" {
		feed := status.NewFeed(game, status.Options{Logger: logger})
		go func() {
			if err := feed.Serve(gameCtx, statusAddr); err != nil {
				logger.Error("status feed stopped", "err", err)
			}
		}()
	}

	srv, err := newSSHServer(addr, hostKeyPath, game)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting ssh server", "addr", addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-sigCtx.Done()
	logger.Info("shutting down, notifying connected players")

	game.Shutdown(drainTimeout)
	st := game.Status()
	stopGame()
	logger.Info("game server stopped", "wave", st.Wave, "totalKilled", st.TotalKilled)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// newLogger returns the process logger at the named level, or info when level
// is empty or unknown.
func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level == "" {
		return logger
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		logger.Warn("ignoring LOG_LEVEL", "value", level, "err", err)
		return logger
	}
	logger.SetLevel(lvl)
	return logger
}

// newSSHServer builds the wish server that runs a game client per session.
func newSSHServer(addr, hostKeyPath string, game server.GameServer) (*ssh.Server, error) {
	opts := []ssh.Option{
		wish.WithAddress(addr),
		wish.WithMiddleware(
			gameMiddleware(game),
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Input latency matters more than packet count
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcp, ok := conn.(*net.TCPConn); ok {
				_ = tcp.SetNoDelay(true)
			}
			return conn
		}),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}
	return wish.NewServer(opts...)
}

// gameMiddleware runs a client against game for every session with a PTY.
func gameMiddleware(game server.GameServer) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			defer next(sess)

			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}
			logger := log.With("user", sess.User())
			logger.Info("new game session", "term", pty.Term, "width", pty.Window.Width, "height", pty.Window.Height)

			size := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					size.update(win.Width, win.Height)
				}
			}()

			c := client.NewClient(game, bufio.NewReader(sess), sess, client.ClientOptions{
				TermSizeFunc: size.getSize,
				Username:     displayName(sess.User()),
			})
			if err := c.Run(); err != nil {
				logger.Error("game error", "err", err)
			}
			logger.Info("session ended")
		}
	}
}

// displayName trims an SSH user name to the on-screen length limit.
func displayName(user string) string {
	runes := []rune(user)
	if len(runes) > gameconfig.MaxUsernameLength {
		runes = runes[:gameconfig.MaxUsernameLength]
	}
	return string(runes)
}

// sizeTracker follows a session's window size as the client resizes it.
type sizeTracker struct {
	mu            sync.RWMutex
	width, height int
}

var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}
