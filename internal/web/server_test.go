package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gopxl/beep"
	"github.com/gorilla/websocket"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/effects"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

type fakeCapture struct {
	state capture.State
	level float64
}

func (f *fakeCapture) Start() error {
	f.state = capture.StateListening
	return nil
}
func (f *fakeCapture) Stop()                  { f.state = capture.StateIdle }
func (f *fakeCapture) State() capture.State   { return f.state }
func (f *fakeCapture) AudioLevel() float64    { return f.level }

type fakeEngine struct {
	loops    int
	stopAlls int
}

func (f *fakeEngine) ActiveLoops() int { return f.loops }
func (f *fakeEngine) StopAll()         { f.stopAlls++ }

func newTestServer() (*Server, *fakeCapture, *fakeEngine) {
	capt := &fakeCapture{}
	eng := &fakeEngine{}
	store := slicer.NewStore(16)
	graph := effects.NewGraph(beep.Silence(-1), 44100)
	srv := NewServer(capt, eng, store, graph, log.New(io.Discard, "", 0))
	return srv, capt, eng
}

func TestStatusEndpoint(t *testing.T) {
	srv, capt, eng := newTestServer()
	capt.state = capture.StateListening
	capt.level = 0.3
	eng.loops = 2
	srv.store.Add(&slicer.Slice{
		ID: "s1", Samples: []float64{0.1}, SampleRate: 44100,
		Duration: 0.2, Pitch: 150, Category: slicer.Percussive,
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Live || status.State != "listening" {
		t.Errorf("expected live/listening, got %+v", status)
	}
	if status.Loops != 2 || status.MicLevel != 0.3 {
		t.Errorf("unexpected status %+v", status)
	}
	if len(status.Slices) != 1 || status.Slices[0].Category != "percussive" {
		t.Errorf("unexpected slices %+v", status.Slices)
	}
}

func postUpdate(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/update", bytes.NewBufferString(body))
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestUpdatePartialMerge(t *testing.T) {
	srv, _, _ := newTestServer()
	srv.graph.SetPad(0.5, 0.5)
	srv.graph.SetReverbMix(0.3)

	rec := postUpdate(t, srv, `{"padX": 0.9, "delay": 0.6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	s := srv.graph.Snapshot()
	if s.PadX != 0.9 {
		t.Errorf("padX: got %f, want 0.9", s.PadX)
	}
	if s.PadY != 0.5 {
		t.Errorf("padY should be untouched, got %f", s.PadY)
	}
	if s.ReverbMix != 0.3 {
		t.Errorf("reverb should be untouched, got %f", s.ReverbMix)
	}
	if s.DelayMix != 0.6 {
		t.Errorf("delay: got %f, want 0.6", s.DelayMix)
	}
}

func TestUpdateClampsOutOfRange(t *testing.T) {
	srv, _, _ := newTestServer()

	postUpdate(t, srv, `{"reverb": 7.5, "feedback": -3}`)

	s := srv.graph.Snapshot()
	if s.ReverbMix != 1 {
		t.Errorf("reverb: got %f, want clamped 1", s.ReverbMix)
	}
	if s.Feedback != 0 {
		t.Errorf("feedback: got %f, want clamped 0", s.Feedback)
	}
}

func TestUpdateLiveToggle(t *testing.T) {
	srv, capt, eng := newTestServer()

	postUpdate(t, srv, `{"live": true}`)
	if capt.state != capture.StateListening {
		t.Error("expected capture started")
	}

	postUpdate(t, srv, `{"live": false}`)
	if capt.state != capture.StateIdle {
		t.Error("expected capture stopped")
	}
	if eng.stopAlls != 1 {
		t.Errorf("expected loops disposed once, got %d", eng.stopAlls)
	}
}

func TestUpdateClear(t *testing.T) {
	srv, _, eng := newTestServer()
	srv.store.Add(&slicer.Slice{ID: "x", Samples: []float64{0.1}, SampleRate: 44100, Category: slicer.Noise})

	postUpdate(t, srv, `{"clear": true}`)
	if srv.store.Len() != 0 {
		t.Errorf("expected empty store, got %d", srv.store.Len())
	}
	if eng.stopAlls != 1 {
		t.Errorf("expected StopAll once, got %d", eng.stopAlls)
	}
}

func TestUpdateRejectsGet(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/update", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestUpdateRejectsBadJSON(t *testing.T) {
	srv, _, _ := newTestServer()
	rec := postUpdate(t, srv, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestWebSocketReceivesStatus(t *testing.T) {
	srv, _, _ := newTestServer()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	defer srv.Stop()

	go srv.broadcastLoop()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var status StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if status.State != "idle" {
		t.Errorf("expected idle status, got %+v", status)
	}
}
