package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/emiliopalmerini/mclass/internal/domain"
)

// LiveView is the payload of GET /live.
type LiveView struct {
	domain.SessionSnapshot
	Metrics domain.SessionMetrics `json:"metrics"`
}

// LiveHandler serves the running session. metrics may be nil.
func LiveHandler(m *Monitor, metrics http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /live", func(w http.ResponseWriter, r *http.Request) {
		snap, ok := m.Snapshot()
		if !ok {
			http.Error(w, "no session running", http.StatusServiceUnavailable)
			return
		}
		view := LiveView{
			SessionSnapshot: snap,
			Metrics: domain.ComputeMetrics(&domain.SessionRecord{
				SessionID:     snap.ID,
				EmotionCounts: snap.Counts,
			}),
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	})

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}

// ServeLive listens on addr until ctx is done.
func ServeLive(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("live server shutdown", "error", err)
		}
	}()

	logger.Info("live endpoint listening", "addr", ln.Addr().String())
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
