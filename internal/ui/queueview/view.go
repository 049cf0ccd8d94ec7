package queueview

import (
	"fmt"
	"strings"

	"github.com/llehouerou/upnext/internal/track"
	"github.com/llehouerou/upnext/internal/ui/render"
)

const (
	defaultWidth  = 80
	defaultHeight = 20
	// border (2) + header + separator + status + help
	chromeHeight = 6
	durationCols = 8
)

// View renders the monitor.
func (m Model) View() string {
	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = defaultWidth, defaultHeight
	}
	inner := max(width-2, 10)

	var b strings.Builder
	b.WriteString(m.renderHeader(inner))
	b.WriteString("\n")
	b.WriteString(dimmedStyle.Render(render.Separator(inner)))
	b.WriteString("\n")
	b.WriteString(m.renderTracks(inner, max(height-chromeHeight, 1)))

	panel := panelStyle.Width(inner).Render(b.String())
	return panel + "\n" + m.renderStatus(inner) + "\n" + m.help.View(m.keys)
}

func (m Model) renderHeader(width int) string {
	left := fmt.Sprintf("Queue (%d/%d)", m.view.ActiveIndex+1, len(m.view.Tracks))
	if m.view.ActiveIndex < 0 {
		left = fmt.Sprintf("Queue (0/%d)", len(m.view.Tracks))
	}
	right := m.ctrl.State().String()
	if m.view.Fetching {
		right = m.spinner.View() + fetchingStyle.Render(" fetching related ") + right
	}
	return render.Row(headerStyle.Render(left), right, width)
}

func (m Model) renderTracks(width, rows int) string {
	if len(m.view.Tracks) == 0 {
		return dimmedStyle.Render(render.TruncateAndPad("Queue is empty", width))
	}

	start := visibleStart(m.cursor, len(m.view.Tracks), rows)
	end := min(start+rows, len(m.view.Tracks))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderTrack(i, m.view.Tracks[i], width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTrack(i int, t track.Track, width int) string {
	prefix := "  "
	if i == m.view.ActiveIndex {
		prefix = playingSymbol + " "
	}

	label := t.Title
	if t.Artist != "" {
		label = t.Artist + " - " + t.Title
	}
	if label == "" {
		label = t.ID
	}

	textWidth := max(width-durationCols-2, 1)
	line := prefix + render.TruncateAndPad(label, textWidth) + fmt.Sprintf("%*s", durationCols, render.Duration(t.DurationSeconds))

	switch {
	case i == m.cursor:
		return cursorStyle.Render(line)
	case i == m.view.ActiveIndex:
		return playingStyle.Render(line)
	case i < m.view.ActiveIndex:
		return dimmedStyle.Render(line)
	default:
		return trackStyle.Render(line)
	}
}

func (m Model) renderStatus(width int) string {
	if m.status != "" {
		return errorStyle.Render(render.Truncate(m.status, width))
	}
	if active, ok := m.view.Active(); ok {
		return dimmedStyle.Render(render.Truncate(
			fmt.Sprintf("%s · %d upcoming", active.Kind(), m.view.Remaining()), width))
	}
	return ""
}

// visibleStart returns the first visible row so the cursor stays on screen.
func visibleStart(cursor, total, rows int) int {
	if total <= rows {
		return 0
	}
	start := max(cursor-rows/2, 0)
	return min(start, total-rows)
}
