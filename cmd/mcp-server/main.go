// cmd/mcp-server/main.go — Standalone HTTP MCP server for computor
//
// Exposes one shared computor session as an HTTP endpoint for AI agent
// frameworks. Variables assigned through "exec" stay visible to later calls.
//
// Usage:
//   go run ./cmd/mcp-server -port 8080 -max-depth 64
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"github.com/tevino/abool/v2"

	computor "github.com/njchilds90/computor"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// writeTools change the session table and need exclusive access.
var writeTools = map[string]bool{"exec": true, "clear": true}

type server struct {
	mu       sync.RWMutex
	sess     *computor.Session
	draining *abool.AtomicBool
}

func newServer(sess *computor.Session) *server {
	return &server{sess: sess, draining: abool.New()}
}

func (s *server) call(ctx context.Context, req computor.ToolRequest) computor.ToolResponse {
	if writeTools[req.Tool] {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}
	return s.sess.HandleToolCall(ctx, req)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// POST /tool — handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic in /tool: %v\n%s", rec, string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.draining.IsSet() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is shutting down"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req computor.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		writeJSON(w, http.StatusOK, s.call(r.Context(), req))
	})

	// GET /schema — return tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, computor.MCPToolSpec())
	})

	// GET /health — liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if s.draining.IsSet() {
			status, code = "draining", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	return mux
}

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	maxDepth := flag.Int("max-depth", computor.DefaultMaxDepth, "Bound on nested variable and function substitution")
	flag.Parse()

	s := newServer(computor.NewSession(computor.WithMaxDepth(*maxDepth)))

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("computor MCP server listening on %s", addr)
	log.Printf("  POST /tool   — execute a tool call")
	log.Printf("  GET  /schema — tool schema for agent registration")
	log.Printf("  GET  /health — health check")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		s.draining.Set()
		log.Printf("draining")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
