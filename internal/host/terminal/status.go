package terminal

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/input/key"
)

// Status is what the host shows on its bottom line.
type Status struct {
	State   autoplay.State
	Entries int
	Elapsed time.Duration
	Paused  bool
	Message string
	Help    string
}

var (
	styleDefault   = tcell.StyleDefault
	styleRecording = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	stylePlaying   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen).Bold(true)
	styleStopped   = tcell.StyleDefault.Reverse(true)
	styleHeld      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

func stateLabel(s autoplay.State) (string, tcell.Style) {
	switch s {
	case autoplay.Recording:
		return " REC ", styleRecording
	case autoplay.Playing:
		return " PLAY ", stylePlaying
	default:
		return " STOP ", styleStopped
	}
}

// Draw renders the held keys, the message and the status line.
func (h *Host) Draw(st Status) {
	h.screen.Clear()
	if h.height == 0 {
		h.screen.Show()
		return
	}

	y := 0
	if st.Message != "" && h.height > 2 {
		h.text(0, y, st.Message, styleDefault)
		y++
	}
	if h.height > 1 {
		h.text(0, y, "held: "+joinKeys(h.state.PressedKeys()), styleHeld)
	}

	bottom := h.height - 1
	label, style := stateLabel(st.State)
	x := h.text(0, bottom, label, style)

	info := fmt.Sprintf(" %d entries  t=%s", st.Entries, st.Elapsed.Truncate(10*time.Millisecond))
	if st.Paused {
		info += "  [paused]"
	}
	x = h.text(x, bottom, info, styleDefault)
	if st.Help != "" {
		h.text(x+2, bottom, st.Help, styleDefault.Dim(true))
	}

	h.screen.Show()
}

// text draws s at (x, y) clipped to the screen and returns the next column.
func (h *Host) text(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		if x >= h.width {
			break
		}
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

func joinKeys(keys []key.Key) string {
	if len(keys) == 0 {
		return "-"
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return strings.Join(names, " ")
}
