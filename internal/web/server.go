// Package web serves the interval-config page for the pill-ring daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/sweeney/pill-ring/internal/status"
)

// maxBodyBytes bounds the POST body so a slow or malformed client cannot
// stall the device.
const maxBodyBytes = 4 << 10

// Server serves the config page over HTTP. Interval changes are handed to
// the poll loop over a channel and applied between ticks; nothing here
// touches the timer directly.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	intervals  chan<- time.Duration
}

// New creates a Server that reads state from the tracker and sends
// validated interval changes on intervals.
func New(addr string, tracker *status.Tracker, intervals chan<- time.Duration) *Server {
	s := &Server{tracker: tracker, intervals: intervals}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		// Bounded I/O: a stalled client must not hold the handler.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the server's root handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}

	var applied bool
	var appliedTotal int64
	if r.Method == http.MethodPost {
		applied, appliedTotal = s.applyInterval(w, r)
	}

	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, applied, appliedTotal)
}

// applyInterval parses days/hours/minutes from the POST body and sends the
// new interval to the poll loop. Missing or malformed fields count as zero;
// out-of-range values are summed as-is (the form's ranges are advisory).
// A non-positive total is a silent no-op: always 200, no banner.
func (s *Server) applyInterval(w http.ResponseWriter, r *http.Request) (bool, int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		log.Printf("web: parse form: %v", err)
		return false, 0
	}

	days := intField(r, "days")
	hours := intField(r, "hours")
	minutes := intField(r, "minutes")
	total := int64(days)*86400 + int64(hours)*3600 + int64(minutes)*60
	if total <= 0 {
		return false, 0
	}

	d := time.Duration(total) * time.Second
	select {
	case s.intervals <- d:
		log.Printf("web: interval change queued: %v", d)
		return true, total
	default:
		// The loop hasn't drained the previous change yet; keep the
		// earlier one rather than block the handler.
		log.Printf("web: interval change dropped, previous still pending")
		return false, 0
	}
}

func intField(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.PostFormValue(name))
	if err != nil {
		return 0
	}
	return v
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}
