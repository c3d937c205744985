package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/allinfinite/R2DJ/internal/capture"
	"github.com/allinfinite/R2DJ/internal/slicer"
)

// Styles are initialized from the synthwave theme and swapped wholesale
// by applyTheme.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6AC1")).
			Background(lipgloss.Color("#1A1A2E")).
			MarginBottom(1)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00E5FF")).
			Padding(1, 2).
			Background(lipgloss.Color("#1A1A2E"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E5FF")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E"))

	liveBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6AC1")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	idleBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64FFDA")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	busyBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAB40")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8A80")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E0E0E0")).
			Background(lipgloss.Color("#1A1A2E"))

	meterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6AC1")).
			Background(lipgloss.Color("#1A1A2E"))

	meterLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E"))

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B388FF")).
			Background(lipgloss.Color("#1A1A2E")).
			Italic(true)

	statusOkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64FFDA")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	statusBadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF8A80")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	debugTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E")).
			Bold(true)

	debugRuleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E"))

	debugTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E"))

	debugCategoryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFAB40")).
				Background(lipgloss.Color("#1A1A2E"))

	debugMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Background(lipgloss.Color("#1A1A2E"))

	debugSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444")).
			Background(lipgloss.Color("#1A1A2E"))
)

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

// View renders the TUI.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  R 2 D J  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Status:  "))
	b.WriteString(m.renderBadge())
	if m.Capture != nil && m.Capture.State() != capture.StateIdle {
		b.WriteString(bodyStyle.Render("  "))
		b.WriteString(m.renderMicMeter())
	}
	b.WriteString("\n")
	b.WriteString(m.renderBandMeter())
	b.WriteString("\n\n")

	b.WriteString(m.renderSliceTable())
	b.WriteString("\n")
	b.WriteString(m.renderControls())
	b.WriteString("\n\n")

	if m.moodInput {
		b.WriteString(labelStyle.Render("Mood> "))
		b.WriteString(inputStyle.Render(m.moodBuffer + "▌"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter to apply, esc to cancel"))
	} else {
		keyName := strings.TrimPrefix(m.HotkeyName, "KEY_")
		b.WriteString(helpStyle.Render(fmt.Sprintf("space live · arrows pad · r/R d/D v/V f/F knobs · t mood · c clear · x export · p preset · hold %s to jam · q quit", keyName)))
	}

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

func (m Model) renderStatusBar() string {
	var mic string
	if m.MicDetected {
		mic = statusOkStyle.Render("✓")
		if m.MicName != "" {
			mic += helpStyle.Render(" (" + m.MicName + ")")
		}
	} else {
		mic = statusBadStyle.Render("✗")
	}
	loops := 0
	if m.Engine != nil {
		loops = m.Engine.ActiveLoops()
	}
	slices := 0
	if m.Store != nil {
		slices = m.Store.Len()
	}
	return helpStyle.Render("Mic: ") + mic +
		helpStyle.Render(fmt.Sprintf("  Slices: %d/%d  Loops: %d", slices, m.Config.Slicer.Capacity, loops))
}

func (m Model) renderBadge() string {
	if m.FlashIsErr && m.Flash != "" {
		text := m.Flash
		if len(text) > 50 {
			text = text[:50] + "..."
		}
		return errorStyle.Render("● " + text)
	}
	if m.Capture == nil {
		return idleBadge.Render("● Idle")
	}
	switch m.Capture.State() {
	case capture.StateInitializing:
		return busyBadge.Render("● Opening mic...")
	case capture.StateListening:
		return liveBadge.Render("● Live")
	case capture.StateProcessing:
		return busyBadge.Render("● Slicing...")
	default:
		if m.Flash != "" {
			return idleBadge.Render("● " + m.Flash)
		}
		return idleBadge.Render("● Idle")
	}
}

const meterWidth = 20

func (m Model) renderMicMeter() string {
	scaled := math.Sqrt(m.AudioLevel)
	filled := int(math.Round(scaled * float64(meterWidth)))
	if filled > meterWidth {
		filled = meterWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return meterLabelStyle.Render("Mic  ") + meterStyle.Render(bar)
}

const bandMeterWidth = 10

func (m Model) renderBandMeter() string {
	render := func(label string, v float64) string {
		filled := int(math.Round(math.Min(1, v) * bandMeterWidth))
		bar := strings.Repeat("▪", filled) + strings.Repeat("·", bandMeterWidth-filled)
		return meterLabelStyle.Render(label+" ") + meterStyle.Render(bar)
	}
	return render("Low ", m.BandLevels.Low) +
		bodyStyle.Render("  ") + render("Mid ", m.BandLevels.Mid) +
		bodyStyle.Render("  ") + render("High", m.BandLevels.High)
}

const sliceTableMaxRows = 8

func (m Model) renderSliceTable() string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("Slices:"))
	b.WriteString("\n")

	if m.Store == nil || m.Store.Len() == 0 {
		b.WriteString(bodyStyle.Render("(listening for sounds)"))
		return b.String()
	}

	slices := m.Store.All()
	if len(slices) > sliceTableMaxRows {
		slices = slices[len(slices)-sliceTableMaxRows:]
	}
	for i, s := range slices {
		catStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(s.Category.Color())).
			Background(bodyStyle.GetBackground())
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(catStyle.Render(fmt.Sprintf("● %-10s", s.Category)))
		b.WriteString(bodyStyle.Render(fmt.Sprintf(" %5.2fs  %s  age %ds", s.Duration, renderPitch(s), s.Age())))
	}
	return b.String()
}

func renderPitch(s *slicer.Slice) string {
	if s.Pitch <= 0 {
		return "   --- "
	}
	return fmt.Sprintf("%4.0f Hz", s.Pitch)
}

func (m Model) renderControls() string {
	s := m.Graph.Snapshot()
	return labelStyle.Render("Pad ") +
		bodyStyle.Render(fmt.Sprintf("x %.2f y %.2f", s.PadX, s.PadY)) +
		labelStyle.Render("  Rev ") + bodyStyle.Render(fmt.Sprintf("%.2f", s.ReverbMix)) +
		labelStyle.Render("  Dly ") + bodyStyle.Render(fmt.Sprintf("%.2f", s.DelayMix)) +
		labelStyle.Render("  Vol ") + bodyStyle.Render(fmt.Sprintf("%.2f", s.AmbientGain)) +
		labelStyle.Render("  Fbk ") + bodyStyle.Render(fmt.Sprintf("%.2f", s.Feedback))
}

const debugPanelMaxLines = 5

// Debug table column widths. Row content must fit within panelContentWidth.
const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder

	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugTitleStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugTitleStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugTitleStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}

		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}

		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}

		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}

	return db.String()
}
