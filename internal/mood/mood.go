// Package mood turns a typed phrase into effect settings. Words map
// through a small lexicon onto a valence/arousal coordinate which is
// then projected onto the chaos pad and sliders.
package mood

import (
	"strings"

	"github.com/allinfinite/R2DJ/internal/effects"
)

// Coord is a point in valence/arousal space. Both axes run 0.0 to 1.0;
// valence is sad-to-happy, arousal is calm-to-excited.
type Coord struct {
	Valence float64
	Arousal float64
}

// lexicon maps lowercase keywords to their coordinate. Derived from a
// standard circumplex layout, quantized to one decimal.
var lexicon = map[string]Coord{
	"happy":     {0.9, 0.7},
	"joyful":    {0.9, 0.8},
	"excited":   {0.8, 0.9},
	"ecstatic":  {0.9, 1.0},
	"playful":   {0.8, 0.7},
	"energetic": {0.7, 0.9},
	"upbeat":    {0.8, 0.8},

	"calm":     {0.7, 0.2},
	"peaceful": {0.8, 0.1},
	"relaxed":  {0.7, 0.2},
	"serene":   {0.8, 0.2},
	"dreamy":   {0.6, 0.3},
	"mellow":   {0.6, 0.3},
	"content":  {0.7, 0.3},

	"sad":        {0.1, 0.3},
	"melancholy": {0.2, 0.3},
	"gloomy":     {0.2, 0.2},
	"lonely":     {0.2, 0.3},
	"tired":      {0.3, 0.1},
	"bored":      {0.3, 0.2},
	"depressed":  {0.1, 0.2},

	"angry":      {0.1, 0.9},
	"furious":    {0.0, 1.0},
	"tense":      {0.2, 0.8},
	"anxious":    {0.2, 0.7},
	"frustrated": {0.2, 0.8},
	"stressed":   {0.2, 0.8},
	"scared":     {0.2, 0.9},

	"dark":    {0.2, 0.5},
	"heavy":   {0.3, 0.6},
	"bright":  {0.8, 0.6},
	"light":   {0.8, 0.4},
	"warm":    {0.8, 0.4},
	"cold":    {0.3, 0.4},
	"wild":    {0.6, 0.9},
	"chaotic": {0.4, 1.0},
	"soft":    {0.7, 0.2},
	"loud":    {0.5, 0.9},
}

// Analyze averages the coordinates of every recognized word in text.
// Unknown words contribute nothing. The second return is false when no
// word matched, in which case the caller should change nothing.
func Analyze(text string) (Coord, bool) {
	var sum Coord
	matched := 0

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:'\"")
		if c, ok := lexicon[word]; ok {
			sum.Valence += c.Valence
			sum.Arousal += c.Arousal
			matched++
		}
	}

	if matched == 0 {
		return Coord{}, false
	}
	return Coord{
		Valence: sum.Valence / float64(matched),
		Arousal: sum.Arousal / float64(matched),
	}, true
}

// Preset projects a coordinate onto the control surface. Arousal drives
// the pad (brightness and drive) and the regeneration slider; valence
// splits the space between reverb wash (low valence) and delay bounce
// (high valence).
func Preset(c Coord) effects.State {
	return effects.State{
		PadX:        c.Arousal,
		PadY:        c.Arousal * 0.6,
		ReverbMix:   0.2 + (1-c.Valence)*0.6,
		DelayMix:    0.1 + c.Valence*0.5,
		AmbientGain: 0.4 + c.Arousal*0.4,
		Feedback:    c.Arousal * 0.8,
	}
}

// Apply analyzes text and, when at least one word matched, applies the
// resulting preset to the graph. Reports whether anything changed.
func Apply(text string, graph *effects.Graph) bool {
	c, ok := Analyze(text)
	if !ok {
		return false
	}
	graph.Apply(Preset(c))
	return true
}
