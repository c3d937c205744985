package effects

// Control-to-parameter mapping. Every UI control lives in [0,1]; setters
// clamp so a misbehaving remote client cannot push the chain outside its
// working range.

// CutoffHz maps the chaos pad X position to the lowpass cutoff.
func CutoffHz(padX float64) float64 {
	return 200 + clamp(padX)*1800
}

// State is a snapshot of every control, used by the TUI, the remote
// control surface, and preset export.
type State struct {
	PadX        float64 `json:"padX" toml:"pad_x"`
	PadY        float64 `json:"padY" toml:"pad_y"`
	ReverbMix   float64 `json:"reverb" toml:"reverb"`
	DelayMix    float64 `json:"delay" toml:"delay"`
	AmbientGain float64 `json:"ambientGain" toml:"ambient_gain"`
	Feedback    float64 `json:"feedback" toml:"feedback"`
}

// SetPad moves the chaos pad: X drives the lowpass cutoff, Y the
// distortion amount. No smoothing is applied; abrupt jumps are part of
// playing the instrument.
func (g *Graph) SetPad(x, y float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.padX = clamp(x)
	g.padY = clamp(y)
}

// SetReverbMix sets the reverb wet mix directly from the knob.
func (g *Graph) SetReverbMix(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reverbMix = clamp(v)
}

// SetDelayMix sets the delay wet mix directly from the knob.
func (g *Graph) SetDelayMix(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delayMix = clamp(v)
}

// SetAmbientGain sets the master multiplier applied to all slice playback.
func (g *Graph) SetAmbientGain(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ambientGain = clamp(v)
}

// SetFeedback sets the feedback-intensity control that scales loop
// retrigger probability. It is stored here with the rest of the shared
// state even though it never touches the audio path.
func (g *Graph) SetFeedback(v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.feedback = clamp(v)
}

// Apply sets every control at once, e.g. from a mood preset. Each field
// is clamped independently.
func (g *Graph) Apply(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.padX = clamp(s.PadX)
	g.padY = clamp(s.PadY)
	g.reverbMix = clamp(s.ReverbMix)
	g.delayMix = clamp(s.DelayMix)
	g.ambientGain = clamp(s.AmbientGain)
	g.feedback = clamp(s.Feedback)
}

// Snapshot returns the current control state.
func (g *Graph) Snapshot() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return State{
		PadX:        g.padX,
		PadY:        g.padY,
		ReverbMix:   g.reverbMix,
		DelayMix:    g.delayMix,
		AmbientGain: g.ambientGain,
		Feedback:    g.feedback,
	}
}

// AmbientGain returns the master multiplier, read by loops at trigger time.
func (g *Graph) AmbientGain() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ambientGain
}

// Feedback returns the feedback-intensity control, read by loops at
// trigger time.
func (g *Graph) Feedback() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.feedback
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
