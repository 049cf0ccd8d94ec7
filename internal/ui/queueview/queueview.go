// Package queueview is a terminal monitor for the mirrored queue.
package queueview

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/upnext/internal/errmsg"
	"github.com/llehouerou/upnext/internal/mirror"
	"github.com/llehouerou/upnext/internal/playback"
)

// Controller is the engine surface the monitor drives.
type Controller interface {
	Next() error
	Skip(index int) error
	Remove(index int) error
	Play() error
	Pause() error
	State() playback.State
}

// ViewMsg carries a new mirrored view.
type ViewMsg mirror.View

// Model is the monitor state.
type Model struct {
	mirror  *mirror.Mirror
	sub     *mirror.Subscription
	ctrl    Controller
	view    mirror.View
	cursor  int
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	width   int
	height  int
	status  string
}

// New creates a monitor subscribed to mir.
func New(mir *mirror.Mirror, ctrl Controller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = fetchingStyle

	return Model{
		mirror:  mir,
		sub:     mir.Subscribe(),
		ctrl:    ctrl,
		view:    mir.Snapshot(),
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts listening for mirror updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForView(), m.spinner.Tick)
}

// Close unsubscribes from the mirror.
func (m Model) Close() {
	m.mirror.Unsubscribe(m.sub)
}

// waitForView blocks until the mirror publishes a new view. It returns nil
// once the model is closed.
func (m Model) waitForView() tea.Cmd {
	sub := m.sub
	return func() tea.Msg {
		v, ok := <-sub.C
		if !ok {
			return nil
		}
		return ViewMsg(v)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case ViewMsg:
		m.view = mirror.View(msg)
		m.clampCursor()
		return m, m.waitForView()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.jump):
		if len(m.view.Tracks) > 0 {
			m.report(errmsg.OpQueueSkip, m.ctrl.Skip(m.cursor))
		}
	case key.Matches(msg, m.keys.next):
		m.report(errmsg.OpQueueSkip, m.ctrl.Next())
	case key.Matches(msg, m.keys.playPause):
		if m.ctrl.State() == playback.StatePlaying {
			m.report(errmsg.OpPlaybackPause, m.ctrl.Pause())
		} else {
			m.report(errmsg.OpPlaybackStart, m.ctrl.Play())
		}
	case key.Matches(msg, m.keys.remove):
		if len(m.view.Tracks) > 0 {
			m.report(errmsg.OpQueueRemove, m.ctrl.Remove(m.cursor))
		}
	}
	return m, nil
}

func (m *Model) report(op errmsg.Op, err error) {
	m.status = errmsg.Format(op, err)
}

func (m *Model) clampCursor() {
	m.cursor = max(min(m.cursor, len(m.view.Tracks)-1), 0)
}
