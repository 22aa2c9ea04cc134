package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/AaronLay10/InnerVoice/internal/events"
	"github.com/AaronLay10/InnerVoice/internal/playback"
	"github.com/AaronLay10/InnerVoice/internal/scenario"
	"github.com/AaronLay10/InnerVoice/internal/sink"
)

// Simulator is the playback engine as seen by the HTTP layer.
type Simulator interface {
	Start(ctx context.Context, key string) (*scenario.Scenario, <-chan playback.Result, error)
	Busy() bool
	Completed() int
	Current() *scenario.Scenario
	Catalog() *scenario.Catalog
}

// TypingReader exposes the typing slot.
type TypingReader interface {
	Typing() string
}

// Options configures a Server. Engine is nil when the catalog could not be
// loaded; Unavailable then explains why and the trigger stays disabled.
type Options struct {
	Engine      Simulator
	Unavailable error
	Typing      TypingReader
	Internal    *sink.Internal
	External    *sink.External
	Bus         *events.Bus
	TLS         *TLSConfig
}

// Server serves the page, the trigger endpoint and the event stream.
type Server struct {
	opts    Options
	baseCtx context.Context
	metrics *metricsState
	mux     *http.ServeMux
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Bus == nil {
		opts.Bus = events.NewBus(events.DefaultBufferSize)
	}
	s := &Server{
		opts:    opts,
		baseCtx: context.Background(),
		metrics: newMetricsState(),
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("/", s.uiHandler)
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/status", s.statusHandler)
	s.mux.HandleFunc("/scenarios", s.scenariosHandler)
	s.mux.HandleFunc("/simulate", s.simulateHandler)
	s.mux.HandleFunc("/panes", s.panesHandler)
	s.mux.HandleFunc("/events", s.eventsHandler)
	s.mux.HandleFunc("/ws/events", s.wsEventsHandler)
	s.mux.HandleFunc("/metrics", s.metricsHandler)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "innervoice",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

type StatusResponse struct {
	Ready     bool         `json:"ready"`
	Busy      bool         `json:"busy"`
	Typing    string       `json:"typing,omitempty"`
	Scenario  string       `json:"scenario,omitempty"`
	Title     string       `json:"title,omitempty"`
	Completed int          `json:"completed"`
	Trigger   TriggerState `json:"trigger"`
	Reason    string       `json:"reason,omitempty"`
}

func (s *Server) status() StatusResponse {
	if s.opts.Engine == nil {
		reason := "scenario catalog unavailable"
		if s.opts.Unavailable != nil {
			reason = s.opts.Unavailable.Error()
		}
		return StatusResponse{Trigger: Trigger(false, false, 0), Reason: reason}
	}

	resp := StatusResponse{
		Ready:     true,
		Busy:      s.opts.Engine.Busy(),
		Completed: s.opts.Engine.Completed(),
	}
	if cur := s.opts.Engine.Current(); cur != nil {
		resp.Scenario = cur.Key
		resp.Title = cur.Title
	}
	if s.opts.Typing != nil {
		resp.Typing = s.opts.Typing.Typing()
	}
	resp.Trigger = Trigger(true, resp.Busy, resp.Completed)
	return resp
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

type ScenarioSummary struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Steps    int    `json:"steps"`
	Thoughts int    `json:"thoughts"`
}

func (s *Server) scenariosHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, SimulateResponse{OK: false, Error: s.status().Reason})
		return
	}
	catalog := s.opts.Engine.Catalog()
	out := make([]ScenarioSummary, 0, catalog.Len())
	for _, sc := range catalog.All() {
		out = append(out, ScenarioSummary{
			Key:      sc.Key,
			Title:    sc.Title,
			Steps:    len(sc.Steps),
			Thoughts: sc.ThoughtCount(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type SimulateRequest struct {
	Scenario string `json:"scenario"`
}

type SimulateResponse struct {
	OK       bool   `json:"ok"`
	Scenario string `json:"scenario,omitempty"`
	Title    string `json:"title,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, SimulateResponse{OK: false, Error: "method not allowed"})
		return
	}

	if s.opts.Engine == nil {
		writeJSON(w, http.StatusServiceUnavailable, SimulateResponse{OK: false, Error: s.status().Reason})
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, SimulateResponse{OK: false, Error: "invalid JSON"})
		return
	}

	sc, _, err := s.opts.Engine.Start(s.baseCtx, req.Scenario)
	switch {
	case errors.Is(err, playback.ErrBusy):
		s.metrics.rejected.Add(1)
		writeJSON(w, http.StatusConflict, SimulateResponse{OK: false, Error: err.Error()})
		return
	case errors.Is(err, scenario.ErrNotFound):
		writeJSON(w, http.StatusNotFound, SimulateResponse{OK: false, Error: err.Error()})
		return
	case err != nil:
		log.Printf("api: start playback failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, SimulateResponse{OK: false, Error: err.Error()})
		return
	}

	s.metrics.started.Add(1)
	writeJSON(w, http.StatusAccepted, SimulateResponse{OK: true, Scenario: sc.Key, Title: sc.Title})
}

type PanesResponse struct {
	Internal []scenario.Thought `json:"internal"`
	External []sink.Message     `json:"external"`
}

// panesHandler returns the current contents of both panes.
func (s *Server) panesHandler(w http.ResponseWriter, r *http.Request) {
	resp := PanesResponse{Internal: []scenario.Thought{}, External: []sink.Message{}}
	if s.opts.Internal != nil {
		resp.Internal = s.opts.Internal.Entries()
	}
	if s.opts.External != nil {
		resp.External = s.opts.External.Entries()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Bus.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
// Playback started through /simulate is bound to ctx.
func (s *Server) Serve(ctx context.Context, addr string) error {
	s.baseCtx = ctx

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.opts.TLS != nil {
			tlsCfg, err := s.opts.TLS.Load()
			if err != nil {
				errCh <- err
				return
			}
			srv.TLSConfig = tlsCfg
			log.Printf("api: listening on %s (TLS)", addr)
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		log.Printf("api: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.opts.Bus.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return err
	}
	return nil
}
