// Package status publishes the live wave state over HTTP.
//
// GET /status returns the current report as JSON. GET /ws upgrades to a websocket
// that receives a report immediately and then on every interval until the peer goes away.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/asteroid-waves/internal/loop/server"
	"github.com/tomz197/asteroid-waves/internal/wave"
)

// DefaultInterval is how often websocket subscribers receive a report.
const DefaultInterval = 500 * time.Millisecond

const writeWait = 5 * time.Second

// Source provides world snapshots to report on.
type Source interface {
	GetSnapshot() *server.WorldSnapshot
}

// Score is one leaderboard entry.
type Score struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Report is the JSON document served to status consumers.
type Report struct {
	Wave      wave.Status `json:"wave"`
	Players   int         `json:"players"`
	Asteroids int         `json:"asteroids"`
	TopScores []Score     `json:"topScores"`
}

// Options configures a Feed.
type Options struct {
	Interval time.Duration // Websocket push interval; 0 uses DefaultInterval
	Logger   *log.Logger   // Nil uses the default logger
}

// Feed serves status reports built from a Source.
type Feed struct {
	src         Source
	interval    time.Duration
	logger      *log.Logger
	upgrader    websocket.Upgrader
	subscribers atomic.Int64
}

// NewFeed creates a feed reading from src.
func NewFeed(src Source, opts Options) *Feed {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		src:      src,
		interval: interval,
		logger:   logger.WithPrefix("status"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Report builds a report from the latest snapshot.
func (f *Feed) Report() Report {
	snap := f.src.GetSnapshot()
	if snap == nil {
		return Report{TopScores: []Score{}}
	}
	scores := make([]Score, len(snap.TopScores))
	for i, entry := range snap.TopScores {
		scores[i] = Score{Username: entry.Username, Score: entry.Score}
	}
	return Report{
		Wave:      snap.Wave,
		Players:   snap.Players,
		Asteroids: snap.Asteroids,
		TopScores: scores,
	}
}

// Subscribers returns the number of connected websocket peers.
func (f *Feed) Subscribers() int {
	return int(f.subscribers.Load())
}

// Handler returns a mux serving /status and /ws.
func (f *Feed) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", f.ServeStatus)
	mux.HandleFunc("/ws", f.ServeWS)
	return mux
}

// ServeStatus writes the current report as JSON. HEAD is answered like GET.
func (f *Feed) ServeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(f.Report()); err != nil {
		f.logger.Warn("encode status failed", "err", err)
	}
}

// ServeWS upgrades the request and streams reports until the peer disconnects.
func (f *Feed) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Debug("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	defer conn.Close()

	n := f.subscribers.Add(1)
	defer f.subscribers.Add(-1)
	f.logger.Debug("subscriber connected", "remote", r.RemoteAddr, "subscribers", n)

	// Inbound messages are ignored; reading only detects the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			f.logger.Debug("set write deadline failed", "remote", r.RemoteAddr, "err", err)
			return
		}
		if err := conn.WriteJSON(f.Report()); err != nil {
			f.logger.Debug("subscriber dropped", "remote", r.RemoteAddr, "err", err)
			return
		}

		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (f *Feed) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           f.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		f.logger.Info("status feed listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
