// Package app implements the optional status server of ReelMonitor: a live
// websocket feed of logfile lines, Prometheus metrics and the latest receiver statistics.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"ReelMonitor/internal/model"
	"ReelMonitor/internal/util"
)

// LatestStats returns the latest statistics per receiver.
type LatestStats interface {
	LatestStats() (map[string]model.InfrastructureMessage, error)
}

// Status describes the agent for /healthz.
type Status interface {
	ActiveLogfiles() []string
	Uptime() string
}

// App is the HTTP status server.
type App struct {
	Hub     *Hub
	Mux     *http.ServeMux
	Server  *http.Server
	metrics http.Handler
	stats   LatestStats
	status  Status
}

// NewApp registers the routes. metrics, stats and status may be nil.
func NewApp(hub *Hub, metrics http.Handler, stats LatestStats, status Status) *App {
	a := &App{
		Hub:     hub,
		Mux:     http.NewServeMux(),
		metrics: metrics,
		stats:   stats,
		status:  status,
	}
	a.registerRoutes()
	return a
}

// registerRoutes sets up all HTTP handlers for the application.
func (a *App) registerRoutes() {
	a.Mux.HandleFunc("/ws", a.Hub.HandleWS)
	a.Mux.HandleFunc("/api/latest", a.handleLatest)
	a.Mux.HandleFunc("/healthz", a.handleHealth)
	if a.metrics != nil {
		a.Mux.Handle("/metrics", a.metrics)
	}
}

// Start binds addr and serves in the background until Stop.
func (a *App) Start(addr string) error {
	if addr == "" {
		util.Info("[app] status server not started (empty address)")
		return nil
	}
	addr = strings.TrimPrefix(addr, "http://")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("[app] listen %s: %w", addr, err)
	}
	a.Server = &http.Server{Handler: a.Mux, ReadHeaderTimeout: 5 * time.Second}
	util.Info("[app] status server listening at http://%s", ln.Addr())

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			util.Error("[app] HTTP server error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully stops the web server and disconnects feed clients.
func (a *App) Stop() {
	if a == nil {
		return
	}
	if a.Server != nil {
		util.Info("[app] shutting down status server...")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.Server.Shutdown(ctx); err != nil {
			util.Warn("[app] HTTP server shutdown error: %v", err)
		}
	}
	a.Hub.CloseAll()
}
