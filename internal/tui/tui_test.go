package tui

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/config"
	"github.com/allinfinite/R2DJ/internal/dsp"
	"github.com/allinfinite/R2DJ/internal/effects"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

// mockCapture implements CaptureController for testing.
type mockCapture struct {
	state   capture.State
	level   float64
	started int
	stopped int
	fail    error
}

func (m *mockCapture) Start() error {
	if m.fail != nil {
		return m.fail
	}
	m.started++
	m.state = capture.StateListening
	return nil
}

func (m *mockCapture) Stop() {
	m.stopped++
	m.state = capture.StateIdle
}

func (m *mockCapture) State() capture.State { return m.state }
func (m *mockCapture) AudioLevel() float64  { return m.level }

// mockEngine implements LoopEngine for testing.
type mockEngine struct {
	loops    int
	stopAlls int
}

func (m *mockEngine) ActiveLoops() int { return m.loops }
func (m *mockEngine) StopAll()         { m.stopAlls++ }

func newTestModel() (Model, *mockCapture, *mockEngine) {
	cfg := config.Default()
	capt := &mockCapture{}
	eng := &mockEngine{}
	graph := effects.NewGraph(beep.Silence(-1), 44100)
	graph.Apply(cfg.Effects)
	store := slicer.NewStore(cfg.Slicer.Capacity)
	m := NewModel(cfg, capt, eng, store, graph,
		func() dsp.Bands { return dsp.Bands{} },
		"Test Mic", true, log.New(io.Discard, "", 0), false)
	return m, capt, eng
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestQuitKey(t *testing.T) {
	m, _, _ := newTestModel()
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestSpaceStartsLive(t *testing.T) {
	m, capt, _ := newTestModel()
	_, cmd := m.Update(keyMsg(" "))
	if cmd == nil {
		t.Fatal("expected toggle command")
	}
	cmd()
	if capt.started != 1 {
		t.Errorf("expected capture started once, got %d", capt.started)
	}
}

func TestSpaceStopsLiveAndDisposesLoops(t *testing.T) {
	m, capt, eng := newTestModel()
	capt.state = capture.StateListening
	_, cmd := m.Update(keyMsg(" "))
	cmd()
	if capt.stopped != 1 {
		t.Errorf("expected capture stopped once, got %d", capt.stopped)
	}
	if eng.stopAlls != 1 {
		t.Errorf("expected loops disposed once, got %d", eng.stopAlls)
	}
}

func TestStartFailureFlashesError(t *testing.T) {
	m, capt, _ := newTestModel()
	capt.fail = fmt.Errorf("no default input device")
	_, cmd := m.Update(keyMsg(" "))
	msg := cmd()
	fm, ok := msg.(flashMsg)
	if !ok {
		t.Fatalf("expected flashMsg, got %T", msg)
	}
	if !fm.IsErr {
		t.Error("expected error flash")
	}
}

func TestKnobKeys(t *testing.T) {
	m, _, _ := newTestModel()
	before := m.Graph.Snapshot()

	m.Update(keyMsg("R"))
	m.Update(keyMsg("D"))
	m.Update(keyMsg("V"))
	m.Update(keyMsg("F"))

	after := m.Graph.Snapshot()
	if after.ReverbMix != before.ReverbMix+knobStep {
		t.Errorf("reverb: got %f, want %f", after.ReverbMix, before.ReverbMix+knobStep)
	}
	if after.DelayMix != before.DelayMix+knobStep {
		t.Errorf("delay: got %f, want %f", after.DelayMix, before.DelayMix+knobStep)
	}
	if after.AmbientGain != before.AmbientGain+knobStep {
		t.Errorf("gain: got %f, want %f", after.AmbientGain, before.AmbientGain+knobStep)
	}
	if after.Feedback != before.Feedback+knobStep {
		t.Errorf("feedback: got %f, want %f", after.Feedback, before.Feedback+knobStep)
	}

	m.Update(keyMsg("r"))
	if got := m.Graph.Snapshot().ReverbMix; got != before.ReverbMix {
		t.Errorf("reverb after down: got %f, want %f", got, before.ReverbMix)
	}
}

func TestPadArrows(t *testing.T) {
	m, _, _ := newTestModel()
	before := m.Graph.Snapshot()

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})

	after := m.Graph.Snapshot()
	if after.PadX != before.PadX+knobStep {
		t.Errorf("padX: got %f, want %f", after.PadX, before.PadX+knobStep)
	}
	if after.PadY != before.PadY+knobStep {
		t.Errorf("padY: got %f, want %f", after.PadY, before.PadY+knobStep)
	}
}

func TestClearKey(t *testing.T) {
	m, _, eng := newTestModel()
	m.Store.Add(&slicer.Slice{ID: "x", Samples: []float64{0.1}, SampleRate: 44100, Category: slicer.Tonal})

	updated, _ := m.Update(keyMsg("c"))
	model := updated.(Model)

	if model.Store.Len() != 0 {
		t.Errorf("expected empty store, got %d", model.Store.Len())
	}
	if eng.stopAlls != 1 {
		t.Errorf("expected loops disposed, got %d StopAll calls", eng.stopAlls)
	}
}

func TestMoodInputFlow(t *testing.T) {
	m, _, _ := newTestModel()

	updated, _ := m.Update(keyMsg("t"))
	model := updated.(Model)
	if !model.moodInput {
		t.Fatal("expected mood input mode")
	}

	for _, r := range "calm" {
		u, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		model = u.(Model)
	}
	if model.moodBuffer != "calm" {
		t.Fatalf("expected buffer 'calm', got %q", model.moodBuffer)
	}

	u, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = u.(Model)
	if model.moodInput {
		t.Error("expected mood input mode exited")
	}
	if cmd == nil {
		t.Fatal("expected flash command")
	}
	if fm := cmd().(flashMsg); fm.IsErr {
		t.Errorf("expected success flash, got %+v", fm)
	}

	// "calm" should have moved the controls off the defaults.
	if model.Graph.Snapshot() == config.Default().Effects {
		t.Error("expected mood to change effect settings")
	}
}

func TestMoodInputEscCancels(t *testing.T) {
	m, _, _ := newTestModel()
	before := m.Graph.Snapshot()

	updated, _ := m.Update(keyMsg("t"))
	model := updated.(Model)
	u, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	model = u.(Model)
	u, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = u.(Model)

	if model.moodInput {
		t.Error("expected mood input mode exited")
	}
	if model.Graph.Snapshot() != before {
		t.Error("esc should not change effect settings")
	}
}

func TestFlashLifecycle(t *testing.T) {
	m, _, _ := newTestModel()
	updated, cmd := m.Update(flashMsg{Text: "exported", IsErr: false})
	model := updated.(Model)
	if model.Flash != "exported" {
		t.Errorf("expected flash text, got %q", model.Flash)
	}
	if cmd == nil {
		t.Error("expected timeout command")
	}

	updated, _ = model.Update(flashTimeoutMsg{})
	model = updated.(Model)
	if model.Flash != "" {
		t.Errorf("expected cleared flash, got %q", model.Flash)
	}
}

func TestTickUpdatesLevels(t *testing.T) {
	m, capt, _ := newTestModel()
	capt.level = 0.42
	m.Bands = func() dsp.Bands { return dsp.Bands{Low: 0.5, Mid: 0.3, High: 0.1} }

	updated, cmd := m.Update(tickMsg{})
	model := updated.(Model)
	if model.AudioLevel != 0.42 {
		t.Errorf("expected level 0.42, got %f", model.AudioLevel)
	}
	if model.BandLevels.Low != 0.5 {
		t.Errorf("expected low band 0.5, got %f", model.BandLevels.Low)
	}
	if cmd == nil {
		t.Error("expected next tick command")
	}
}

func TestViewContainsTitle(t *testing.T) {
	m, _, _ := newTestModel()
	view := m.View()
	if !strings.Contains(view, "R 2 D J") {
		t.Error("expected view to contain the title")
	}
}

func TestViewShowsIdleBadge(t *testing.T) {
	m, _, _ := newTestModel()
	view := m.View()
	if !strings.Contains(view, "Idle") {
		t.Error("expected view to contain 'Idle'")
	}
}

func TestViewShowsLiveBadgeAndMeter(t *testing.T) {
	m, capt, _ := newTestModel()
	capt.state = capture.StateListening
	m.AudioLevel = 0.5
	view := m.View()
	if !strings.Contains(view, "Live") {
		t.Error("expected view to contain 'Live'")
	}
	if !strings.Contains(view, "█") {
		t.Error("expected view to contain the mic meter")
	}
}

func TestViewShowsSlices(t *testing.T) {
	m, _, _ := newTestModel()
	m.Store.Add(&slicer.Slice{
		ID: "a", Samples: []float64{0.1}, SampleRate: 44100,
		Duration: 0.25, Pitch: 220, Category: slicer.Tonal,
	})
	view := m.View()
	if !strings.Contains(view, "tonal") {
		t.Error("expected view to show slice category")
	}
	if !strings.Contains(view, "220 Hz") {
		t.Error("expected view to show slice pitch")
	}
}

func TestViewShowsMoodPrompt(t *testing.T) {
	m, _, _ := newTestModel()
	updated, _ := m.Update(keyMsg("t"))
	view := updated.(Model).View()
	if !strings.Contains(view, "Mood>") {
		t.Error("expected view to show mood prompt")
	}
}

func TestDebugLogMsgAddsEntry(t *testing.T) {
	m, _, _ := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "hotkey", Message: "hello"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	model := updated.(Model)
	if len(model.DebugEntries) != 1 {
		t.Fatalf("expected 1 debug entry, got %d", len(model.DebugEntries))
	}
	if model.DebugEntries[0].Message != "hello" {
		t.Errorf("expected 'hello', got %q", model.DebugEntries[0].Message)
	}
}

func TestDebugLogTruncatesToMax(t *testing.T) {
	m, _, _ := newTestModel()
	var model tea.Model = m
	for i := 0; i < maxDebugLines+10; i++ {
		entry := DebugEntry{Time: "11:00:00", Category: "debug", Message: fmt.Sprintf("line %d", i)}
		model, _ = model.(Model).Update(DebugLogMsg{Entry: entry})
	}
	final := model.(Model)
	if len(final.DebugEntries) != maxDebugLines {
		t.Errorf("expected %d debug entries, got %d", maxDebugLines, len(final.DebugEntries))
	}
	if final.DebugEntries[0].Message != "line 10" {
		t.Errorf("expected oldest message to be 'line 10', got %q", final.DebugEntries[0].Message)
	}
}

func TestViewShowsDebugPanel(t *testing.T) {
	m, _, _ := newTestModel()
	entry := DebugEntry{Time: "11:00:00", Category: "hotkey", Message: "test message"}
	updated, _ := m.Update(DebugLogMsg{Entry: entry})
	view := updated.(Model).View()
	if !strings.Contains(view, "Debug") {
		t.Error("expected view to contain 'Debug' panel title")
	}
	if !strings.Contains(view, "test message") {
		t.Error("expected view to contain debug message")
	}
}

func TestViewHidesDebugPanelWhenEmpty(t *testing.T) {
	m, _, _ := newTestModel()
	view := m.View()
	if strings.Contains(view, "Debug") {
		t.Error("expected view to NOT contain 'Debug' panel when no debug lines")
	}
}

func TestParseLineStructured(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53.777842 capture: read error, retrying: EOF")
	if entry.Time != "11:27:53.777842" {
		t.Errorf("expected time '11:27:53.777842', got %q", entry.Time)
	}
	if entry.Category != "capture" {
		t.Errorf("expected category 'capture', got %q", entry.Category)
	}
	if entry.Message != "capture: read error, retrying: EOF" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}

func TestParseLineUnknownCategory(t *testing.T) {
	entry := parseLine("[DEBUG] 11:27:53 something happened")
	if entry.Category != "debug" {
		t.Errorf("expected category 'debug', got %q", entry.Category)
	}
}

func TestThemeCycle(t *testing.T) {
	next := NextTheme("synthwave")
	if next.Name != "Everforest" {
		t.Errorf("expected Everforest after synthwave, got %s", next.Name)
	}
	wrapped := NextTheme("monochrome")
	if wrapped.Name != "Synthwave" {
		t.Errorf("expected cycle to wrap to Synthwave, got %s", wrapped.Name)
	}
	fallback := LoadTheme("nonexistent")
	if fallback.Name != "Synthwave" {
		t.Errorf("expected fallback to Synthwave, got %s", fallback.Name)
	}
}
