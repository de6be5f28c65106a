package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/TFMV/techgraph/economy"
	"github.com/TFMV/techgraph/graph"
	"github.com/TFMV/techgraph/render"
)

// Config for the server
type Config struct {
	Port            int
	FramesPerSecond int
}

// Server exposes one play session over HTTP and drives its frame loop. The
// controller is single-threaded, so every access goes through mu.
type Server struct {
	config *Config
	ctrl   *graph.Controller
	wallet *economy.Wallet
	stats  *economy.Stats
	mux    *http.ServeMux
	mu     sync.Mutex

	lastFrame time.Time
}

// New creates a server for a session
func New(config *Config, ctrl *graph.Controller, wallet *economy.Wallet, stats *economy.Stats) *Server {
	if config.FramesPerSecond <= 0 {
		config.FramesPerSecond = 60
	}
	s := &Server{
		config: config,
		ctrl:   ctrl,
		wallet: wallet,
		stats:  stats,
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("/", s.handleIndex())
	s.mux.HandleFunc("/visualize", s.handleVisualize())
	s.mux.HandleFunc("/api/graph", s.handleAPIGraph())
	s.mux.HandleFunc("/api/unlock", s.handleUnlock())
	s.mux.HandleFunc("/api/click", s.handleClick())
	s.mux.HandleFunc("/api/unlocked", s.handleUnlocked())
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Frame advances the session to now. Ropes integrate with the clamped
// frame delta; passive income accrues for the full wall-clock span, so a
// stalled host still earns for the time it missed.
func (s *Server) Frame(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctrl.Frame(now)

	var elapsed float64
	if !s.lastFrame.IsZero() && now.After(s.lastFrame) {
		elapsed = now.Sub(s.lastFrame).Seconds()
	}
	s.lastFrame = now

	if economy.Accrue(s.wallet, s.stats, elapsed) > 0 {
		s.ctrl.Reevaluate()
	}
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.frameLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %d...", s.config.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) frameLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.config.FramesPerSecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Frame(now)
		}
	}
}

// handleIndex renders a minimal page that polls the SVG view
func (s *Server) handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>techgraph</title>
</head>
<body>
  <button id="click">Click</button> <span id="balance"></span>
  <div id="view"></div>
  <script>
    async function refresh() {
      const svg = await (await fetch('/visualize?format=svg')).text();
      document.getElementById('view').innerHTML = svg;
      const snap = await (await fetch('/api/graph')).json();
      document.getElementById('balance').textContent = snap.balance.toFixed(0);
      document.querySelectorAll('circle[data-id]').forEach(c => {
        c.onclick = () => fetch('/api/unlock?id=' + encodeURIComponent(c.dataset.id), {method: 'POST'});
      });
    }
    document.getElementById('click').onclick = () => fetch('/api/click', {method: 'POST'});
    setInterval(refresh, 100);
  </script>
</body>
</html>
`)
	}
}

// handleVisualize renders the current frame
func (s *Server) handleVisualize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := r.URL.Query().Get("format")
		if format == "" {
			format = "svg"
		}

		renderer, err := render.GetRenderer(format)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		snap := s.ctrl.Snapshot()
		s.mu.Unlock()

		output, err := renderer.Render(snap, render.NewDefaultOptions(format))
		if err != nil {
			http.Error(w, "Error generating visualization: "+err.Error(), http.StatusInternalServerError)
			return
		}

		switch format {
		case "svg":
			w.Header().Set("Content-Type", "image/svg+xml")
		case "json":
			w.Header().Set("Content-Type", "application/json")
		default:
			w.Header().Set("Content-Type", "text/plain")
		}
		w.Write(output)
	}
}

// handleAPIGraph returns the snapshot as JSON
func (s *Server) handleAPIGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.mu.Lock()
		snap := s.ctrl.Snapshot()
		s.mu.Unlock()

		writeJSON(w, snap)
	}
}

// UnlockResponse is the result of an unlock request
type UnlockResponse struct {
	ID       string  `json:"id"`
	Unlocked bool    `json:"unlocked"`
	Balance  float64 `json:"balance"`
}

// handleUnlock forwards the user's unlock gesture to the controller
func (s *Server) handleUnlock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Missing node ID", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		ok := s.ctrl.AttemptUnlock(id)
		balance := s.wallet.Balance()
		s.mu.Unlock()

		writeJSON(w, UnlockResponse{ID: id, Unlocked: ok, Balance: balance})
	}
}

// ClickResponse is the result of a click
type ClickResponse struct {
	Earned  float64 `json:"earned"`
	Balance float64 `json:"balance"`
}

// handleClick credits one click
func (s *Server) handleClick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.mu.Lock()
		earned := economy.Click(s.wallet, s.stats)
		s.ctrl.Reevaluate()
		balance := s.wallet.Balance()
		s.mu.Unlock()

		writeJSON(w, ClickResponse{Earned: earned, Balance: balance})
	}
}

// handleUnlocked exports the unlocked set for persistence
func (s *Server) handleUnlocked() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		s.mu.Lock()
		ids := s.ctrl.AllUnlockedIDs()
		s.mu.Unlock()

		writeJSON(w, map[string][]string{"unlocked": ids})
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
