package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
	"github.com/peterkuimelis/bridgegen/internal/config"
	"github.com/peterkuimelis/bridgegen/internal/dealer"
	"github.com/peterkuimelis/bridgegen/internal/lin"
	bglog "github.com/peterkuimelis/bridgegen/internal/log"
	"github.com/peterkuimelis/bridgegen/internal/session"
	"github.com/peterkuimelis/bridgegen/internal/view"
)

//go:embed static
var staticFiles embed.FS

// Server is the bridgegen web UI and JSON API server.
type Server struct {
	cfg      *config.Config
	registry *session.Registry
	mux      *http.ServeMux
}

// subscriber is implemented by event loggers that push to listeners.
type subscriber interface {
	Subscribe(fn func(bglog.SessionEvent)) (cancel func())
}

// NewServer creates a new web server. All sessions share one seeded dealer.
func NewServer(cfg *config.Config) *Server {
	orch := session.NewOrchestrator(dealer.NewShuffler(cfg.Seed), cfg.Budget)
	s := &Server{
		cfg: cfg,
		registry: session.NewRegistry(func() session.Options {
			opts := cfg.SessionOptions()
			opts.Orchestrator = orch
			return opts
		}),
		mux: http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Embedded static files
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve index.html at root
	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		f, err := staticFS.Open("index.html")
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer f.Close()
		io.Copy(w, f.(io.Reader))
	})

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// API endpoints
	s.mux.HandleFunc("GET /api/presets", s.handlePresets)
	s.mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleGetSession))
	s.mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /api/sessions/{id}/generate", s.withSession(s.handleGenerate))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/boards", s.withSession(s.handleClear))
	s.mux.HandleFunc("DELETE /api/sessions/{id}/boards/{n}", s.withSession(s.handleDeleteBoard))
	s.mux.HandleFunc("POST /api/sessions/{id}/boards/move", s.withSession(s.handleMove))
	s.mux.HandleFunc("PUT /api/sessions/{id}/boards/{n}/vulnerability", s.withSession(s.handleSetVulnerability))
	s.mux.HandleFunc("PUT /api/sessions/{id}/policy", s.withSession(s.handleSetPolicy))
	s.mux.HandleFunc("GET /api/sessions/{id}/lin", s.withSession(s.handleExportLIN))

	// Live session updates
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

// ListenAndServe starts the HTTP server, and the idle session sweep when
// web.session_idle_minutes is set.
func (s *Server) ListenAndServe(addr string) error {
	if s.cfg.Web.SessionIdle > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		idle := time.Duration(s.cfg.Web.SessionIdle) * time.Minute
		go s.registry.RunEviction(ctx, min(idle, time.Minute), idle)
	}
	return http.ListenAndServe(addr, s.mux)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.registry.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.registry.Create()
	writeJSON(w, http.StatusCreated, view.BuildSessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	writeJSON(w, http.StatusOK, view.BuildSessionView(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.registry.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// handleGenerate starts a request and answers 202 at once; completion arrives over /ws
// or by polling the session.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req view.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	set, presetBoards, err := s.cfg.Resolve(req.Preset, req.HCP, req.Distribution)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	fallback := s.cfg.Boards
	if presetBoards > 0 {
		fallback = presetBoards
	}
	count := session.ClampBoardCount(req.Count, fallback)

	done, diag, err := sess.Start(session.Request{Count: count, Constraints: set, Replace: req.Replace})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrGenerationInFlight) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}
	go func(id string) {
		if res := <-done; res.Err != nil {
			log.Printf("session %s: generation failed: %v", id, res.Err)
		}
	}(sess.ID())

	sv := view.BuildSessionView(sess)
	sv.Issues = view.BuildIssueViews(diag)
	writeJSON(w, http.StatusAccepted, sv)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.mutate(w, sess, sess.Clear())
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad board number %q", r.PathValue("n")))
		return
	}
	s.mutate(w, sess, sess.Delete(n-1))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req view.MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mutate(w, sess, sess.Move(req.From-1, req.To-1))
}

func (s *Server) handleSetVulnerability(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	n, err := strconv.Atoi(r.PathValue("n"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad board number %q", r.PathValue("n")))
		return
	}
	var req view.VulnerabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	vul, err := bridge.ParseVulnerability(req.Vulnerability)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mutate(w, sess, sess.SetVulnerability(n-1, vul))
}

func (s *Server) handleSetPolicy(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req view.PolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	policy, err := session.ParsePolicy(req.Policy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.DefaultVulnerability != "" {
		vul, err := bridge.ParseVulnerability(req.DefaultVulnerability)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		sess.SetDefaultVulnerability(vul)
	}
	s.mutate(w, sess, sess.SetPolicy(policy))
}

func (s *Server) handleExportLIN(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if sess.Len() == 0 {
		writeError(w, http.StatusNotFound, errors.New("no boards to export"))
		return
	}
	w.Header().Set("Content-Type", lin.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", lin.FileName))
	if err := lin.Write(w, sess.Boards()); err != nil {
		log.Printf("LIN export: %v", err)
	}
}

// mutate answers an editing call with the new session view or the error's status.
func (s *Server) mutate(w http.ResponseWriter, sess *session.Session, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, view.BuildSessionView(sess))
	case errors.Is(err, session.ErrGenerationInFlight), errors.Is(err, session.ErrFixedPolicyRequired):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

// handleWebSocket streams a session: one "session" snapshot on connect, then each event
// followed by a fresh snapshot.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, err := s.registry.Get(r.URL.Query().Get("session"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	sub, ok := sess.Logger().(subscriber)
	if !ok {
		writeError(w, http.StatusNotImplemented, errors.New("session log does not stream"))
		return
	}

	wsConn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow connections from any origin
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}
	defer wsConn.CloseNow()

	// Events are logged under the session lock, so the callback only queues them.
	events := make(chan bglog.SessionEvent, 64)
	cancel := sub.Subscribe(func(e bglog.SessionEvent) {
		select {
		case events <- e:
		default:
			log.Printf("session %s: websocket backlog full, dropped event #%d", e.Session, e.Seq)
		}
	})
	defer cancel()

	ctx := wsConn.CloseRead(r.Context())

	if err := wsjson.Write(ctx, wsConn, view.ServerMessage{Type: "session", Session: view.BuildSessionView(sess)}); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			msgs := []view.ServerMessage{{Type: "event", Event: view.BuildEventView(e)}}
			if e.Type == bglog.EventGenerationFailed {
				msgs = append(msgs, view.ServerMessage{Type: "error", Error: e.Details})
			}
			msgs = append(msgs, view.ServerMessage{Type: "session", Session: view.BuildSessionView(sess)})
			for _, m := range msgs {
				if err := wsjson.Write(ctx, wsConn, m); err != nil {
					log.Printf("WebSocket write error: %v", err)
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, view.ServerMessage{Type: "error", Error: err.Error()})
}
