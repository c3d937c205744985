// Package web exposes a small remote control surface over HTTP: a JSON
// status endpoint, a partial-update endpoint for the effect controls,
// and a WebSocket that pushes status to connected clients twice a second.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/effects"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

// CaptureController is the part of the capture loop the remote can drive.
type CaptureController interface {
	Start() error
	Stop()
	State() capture.State
	AudioLevel() float64
}

// LoopEngine is the part of the ambient engine the remote can drive.
type LoopEngine interface {
	ActiveLoops() int
	StopAll()
}

// StatusResponse is the JSON shape of /api/status and the WS broadcast.
type StatusResponse struct {
	State    string         `json:"state"`
	Live     bool           `json:"live"`
	MicLevel float64        `json:"micLevel"`
	Loops    int            `json:"loops"`
	Slices   []SliceStatus  `json:"slices"`
	Effects  effects.State  `json:"effects"`
}

// SliceStatus is one store entry as shown to remote clients. Samples
// stay on the server.
type SliceStatus struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Duration float64 `json:"duration"`
	Pitch    float64 `json:"pitch"`
	Age      int     `json:"age"`
}

// UpdateRequest is a partial update: only non-nil fields are applied.
type UpdateRequest struct {
	PadX        *float64 `json:"padX,omitempty"`
	PadY        *float64 `json:"padY,omitempty"`
	ReverbMix   *float64 `json:"reverb,omitempty"`
	DelayMix    *float64 `json:"delay,omitempty"`
	AmbientGain *float64 `json:"ambientGain,omitempty"`
	Feedback    *float64 `json:"feedback,omitempty"`
	Live        *bool    `json:"live,omitempty"`
	Clear       *bool    `json:"clear,omitempty"`
}

type Server struct {
	capture CaptureController
	engine  LoopEngine
	store   *slicer.Store
	graph   *effects.Graph
	logger  *log.Logger

	mu       sync.Mutex
	clients  map[*websocket.Conn]bool
	upgrader websocket.Upgrader

	httpSrv *http.Server
	done    chan struct{}
}

func NewServer(capt CaptureController, eng LoopEngine, store *slicer.Store, graph *effects.Graph, logger *log.Logger) *Server {
	return &Server{
		capture: capt,
		engine:  eng,
		store:   store,
		graph:   graph,
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}
}

// Handler returns the route table, separate from Start so tests can hit
// it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/update", s.handleUpdate)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start serves the remote control endpoint on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Handler()}

	go s.broadcastLoop()

	s.logger.Printf("server: remote control on http://%s", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("remote control server: %w", err)
	}
	return nil
}

// Stop shuts the server down and disconnects every client.
func (s *Server) Stop() {
	close(s.done)
	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpSrv.Shutdown(ctx)
	}
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.mu.Unlock()
}

func (s *Server) status() StatusResponse {
	state := s.capture.State()
	slices := s.store.All()
	out := make([]SliceStatus, len(slices))
	for i, sl := range slices {
		out[i] = SliceStatus{
			ID:       sl.ID,
			Category: string(sl.Category),
			Duration: sl.Duration,
			Pitch:    sl.Pitch,
			Age:      sl.Age(),
		}
	}
	return StatusResponse{
		State:    state.String(),
		Live:     state != capture.StateIdle,
		MicLevel: s.capture.AudioLevel(),
		Loops:    s.engine.ActiveLoops(),
		Slices:   out,
		Effects:  s.graph.Snapshot(),
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cur := s.graph.Snapshot()
	if req.PadX != nil || req.PadY != nil {
		x, y := cur.PadX, cur.PadY
		if req.PadX != nil {
			x = *req.PadX
		}
		if req.PadY != nil {
			y = *req.PadY
		}
		s.graph.SetPad(x, y)
	}
	if req.ReverbMix != nil {
		s.graph.SetReverbMix(*req.ReverbMix)
	}
	if req.DelayMix != nil {
		s.graph.SetDelayMix(*req.DelayMix)
	}
	if req.AmbientGain != nil {
		s.graph.SetAmbientGain(*req.AmbientGain)
	}
	if req.Feedback != nil {
		s.graph.SetFeedback(*req.Feedback)
	}

	if req.Clear != nil && *req.Clear {
		cleared := s.store.Clear()
		s.engine.StopAll()
		s.logger.Printf("server: remote cleared %d slices", len(cleared))
	}

	if req.Live != nil {
		if *req.Live && s.capture.State() == capture.StateIdle {
			if err := s.capture.Start(); err != nil {
				s.logger.Printf("server: remote start failed: %v", err)
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
		} else if !*req.Live && s.capture.State() != capture.StateIdle {
			s.capture.Stop()
			s.engine.StopAll()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("server: websocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Reader exists only to notice the close.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

const broadcastInterval = 500 * time.Millisecond

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		data, err := json.Marshal(s.status())
		if err != nil {
			continue
		}

		s.mu.Lock()
		for conn := range s.clients {
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				delete(s.clients, conn)
				conn.Close()
			}
		}
		s.mu.Unlock()
	}
}
