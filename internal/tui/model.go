package tui

import (
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/clipboard"
	"github.com/allinfinite/R2DJ/internal/config"
	"github.com/allinfinite/R2DJ/internal/dsp"
	"github.com/allinfinite/R2DJ/internal/effects"
	"github.com/allinfinite/R2DJ/internal/mood"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

// CaptureController is the part of the capture loop the TUI drives.
type CaptureController interface {
	Start() error
	Stop()
	State() capture.State
	AudioLevel() float64
}

// LoopEngine is the part of the ambient engine the TUI drives.
type LoopEngine interface {
	ActiveLoops() int
	StopAll()
}

// Messages sent through the Bubble Tea update loop.

type tickMsg struct{}

type flashMsg struct {
	Text  string
	IsErr bool
}

type flashTimeoutMsg struct{}

// DebugEntry is a structured debug log entry.
type DebugEntry struct {
	Time     string // e.g. "11:27:53"
	Category string // e.g. "capture", "ambient", "hotkey"
	Message  string // the log message
}

// DebugLogMsg carries a structured debug log entry into the TUI.
type DebugLogMsg struct {
	Entry DebugEntry
}

const maxDebugLines = 50

// control knob step per keypress
const knobStep = 0.05

// Model is the Bubble Tea model for the R2DJ TUI.
type Model struct {
	Config      *config.Config
	Capture     CaptureController
	Engine      LoopEngine
	Store       *slicer.Store
	Graph       *effects.Graph
	Bands       func() dsp.Bands
	MicName     string
	MicDetected bool
	ExportDir   string
	HotkeyName  string
	Logger      *log.Logger
	DebugMode   bool

	DebugEntries []DebugEntry
	AudioLevel   float64
	BandLevels   dsp.Bands
	Flash        string
	FlashIsErr   bool

	moodInput  bool
	moodBuffer string
}

// NewModel creates a new TUI model.
func NewModel(cfg *config.Config, capt CaptureController, eng LoopEngine, store *slicer.Store, graph *effects.Graph, bands func() dsp.Bands, micName string, micDetected bool, logger *log.Logger, debug bool) Model {
	return Model{
		Config:      cfg,
		Capture:     capt,
		Engine:      eng,
		Store:       store,
		Graph:       graph,
		Bands:       bands,
		MicName:     micName,
		MicDetected: micDetected,
		ExportDir:   config.DefaultExportDir(),
		HotkeyName:  cfg.Hotkey.Key,
		Logger:      logger,
		DebugMode:   debug,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages and transitions state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.moodInput {
			return m.updateMoodInput(msg)
		}
		return m.updateKeys(msg)

	case tickMsg:
		if m.Capture != nil {
			m.AudioLevel = m.Capture.AudioLevel()
		}
		if m.Bands != nil {
			m.BandLevels = m.Bands()
		}
		return m, tickCmd()

	case flashMsg:
		m.Flash = msg.Text
		m.FlashIsErr = msg.IsErr
		return m, scheduleFlashTimeout()

	case flashTimeoutMsg:
		m.Flash = ""
		m.FlashIsErr = false

	case DebugLogMsg:
		m.DebugEntries = append(m.DebugEntries, msg.Entry)
		if len(m.DebugEntries) > maxDebugLines {
			m.DebugEntries = m.DebugEntries[len(m.DebugEntries)-maxDebugLines:]
		}
	}

	return m, nil
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		return m, m.toggleLiveCmd()

	case "left":
		return m, m.nudgePad(-knobStep, 0)
	case "right":
		return m, m.nudgePad(knobStep, 0)
	case "up":
		return m, m.nudgePad(0, knobStep)
	case "down":
		return m, m.nudgePad(0, -knobStep)

	case "r":
		m.Graph.SetReverbMix(m.Graph.Snapshot().ReverbMix - knobStep)
	case "R":
		m.Graph.SetReverbMix(m.Graph.Snapshot().ReverbMix + knobStep)
	case "d":
		m.Graph.SetDelayMix(m.Graph.Snapshot().DelayMix - knobStep)
	case "D":
		m.Graph.SetDelayMix(m.Graph.Snapshot().DelayMix + knobStep)
	case "v":
		m.Graph.SetAmbientGain(m.Graph.AmbientGain() - knobStep)
	case "V":
		m.Graph.SetAmbientGain(m.Graph.AmbientGain() + knobStep)
	case "f":
		m.Graph.SetFeedback(m.Graph.Feedback() - knobStep)
	case "F":
		m.Graph.SetFeedback(m.Graph.Feedback() + knobStep)

	case "c":
		cleared := m.Store.Clear()
		m.Engine.StopAll()
		m.Logger.Printf("slicer: cleared %d slices", len(cleared))
		return m, flash("slices cleared", false)

	case "x":
		return m, m.exportCmd()

	case "p":
		return m, m.copyPresetCmd()

	case "t":
		m.moodInput = true
		m.moodBuffer = ""

	case "ctrl+t":
		next := NextTheme(m.Config.Theme)
		m.Config.Theme = next.Name
		applyTheme(next)
	}

	return m, nil
}

func (m Model) updateMoodInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.moodInput = false
		m.moodBuffer = ""

	case tea.KeyEnter:
		text := m.moodBuffer
		m.moodInput = false
		m.moodBuffer = ""
		if mood.Apply(text, m.Graph) {
			m.Logger.Printf("mood: applied %q", text)
			return m, flash("mood applied", false)
		}
		return m, flash("no mood words recognized", true)

	case tea.KeyBackspace:
		if len(m.moodBuffer) > 0 {
			m.moodBuffer = m.moodBuffer[:len(m.moodBuffer)-1]
		}

	case tea.KeySpace:
		m.moodBuffer += " "

	case tea.KeyRunes:
		m.moodBuffer += string(msg.Runes)
	}

	return m, nil
}

// toggleLiveCmd flips live mode. Stopping capture also hard-stops every
// loop; in-flight audio is cut, not faded.
func (m Model) toggleLiveCmd() tea.Cmd {
	capt := m.Capture
	eng := m.Engine
	logger := m.Logger
	return func() tea.Msg {
		if capt.State() == capture.StateIdle {
			if err := capt.Start(); err != nil {
				logger.Printf("capture: start failed: %v", err)
				return flashMsg{Text: err.Error(), IsErr: true}
			}
			return flashMsg{Text: "live", IsErr: false}
		}
		capt.Stop()
		eng.StopAll()
		return flashMsg{Text: "stopped", IsErr: false}
	}
}

func (m Model) nudgePad(dx, dy float64) tea.Cmd {
	s := m.Graph.Snapshot()
	m.Graph.SetPad(s.PadX+dx, s.PadY+dy)
	return nil
}

func (m Model) exportCmd() tea.Cmd {
	store := m.Store
	dir := m.ExportDir
	logger := m.Logger
	return func() tea.Msg {
		session, err := slicer.Export(dir, store.All())
		if err != nil {
			logger.Printf("export: %v", err)
			return flashMsg{Text: err.Error(), IsErr: true}
		}
		logger.Printf("export: wrote slices to %s", session)
		return flashMsg{Text: "exported to " + session, IsErr: false}
	}
}

func (m Model) copyPresetCmd() tea.Cmd {
	state := m.Graph.Snapshot()
	logger := m.Logger
	return func() tea.Msg {
		if err := clipboard.CopyPreset(state); err != nil {
			logger.Printf("clipboard: %v", err)
			return flashMsg{Text: err.Error(), IsErr: true}
		}
		return flashMsg{Text: "preset copied", IsErr: false}
	}
}

func flash(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return flashMsg{Text: text, IsErr: isErr}
	}
}

func scheduleFlashTimeout() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return flashTimeoutMsg{}
	})
}

const tickInterval = 100 * time.Millisecond

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}
