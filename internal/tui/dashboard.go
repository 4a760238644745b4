package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/models"
)

const (
	maxFeedEvents    = 500
	historyLimit     = 50
	statusInterval   = 5 * time.Second
	noticeTTL        = 3 * time.Second
	statusPaneHeight = 9
	defaultWidth     = 80
	defaultHeight    = 24
)

const (
	actionRestart = "restart"
	actionLogout  = "logout"
)

type dashboardModel struct {
	ctx    context.Context
	relay  adapter.RelayAdapter
	stream <-chan tea.Msg
	build  models.AppBuildInfo

	// copyText writes to the system clipboard; replaced in tests.
	copyText func(string) error

	status    models.StatusResponse
	statusErr string
	live      bool

	events []models.LifecycleEvent
	qr     string

	busy          string
	notice        string
	errMsg        string
	confirmLogout bool
	showBuildInfo bool

	feed   viewport.Model
	width  int
	height int
}

func newDashboardModel(ctx context.Context, relay adapter.RelayAdapter, stream <-chan tea.Msg, build models.AppBuildInfo) dashboardModel {
	m := dashboardModel{
		ctx:      ctx,
		relay:    relay,
		stream:   stream,
		build:    build,
		copyText: clipboard.WriteAll,
		feed:     viewport.New(defaultWidth, defaultHeight-statusPaneHeight),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	return m
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(
		waitForStream(m.stream),
		m.cmdLoadStatus(),
		m.cmdLoadHistory(),
		cmdStatusTick(),
	)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.feed.Width = max(msg.Width-4, 10)
		m.feed.Height = max(msg.Height-statusPaneHeight-6, 3)
		m.refreshFeed()
		return m, nil

	case eventMsg:
		m.live = true
		m.appendEvents(msg.event)
		if msg.event.Type == models.EventTypeQR {
			m.qr = msg.event.QR
		}
		if msg.event.Type == models.EventTypeReady {
			m.qr = ""
		}
		// state changes ride along with events
		return m, tea.Batch(waitForStream(m.stream), m.cmdLoadStatus())

	case streamStateMsg:
		m.live = msg.connected
		if msg.err != nil {
			m.errMsg = "event stream: " + humanizeServerUnavailableError(msg.err)
		}
		return m, waitForStream(m.stream)

	case statusLoadedMsg:
		if msg.err != nil {
			m.statusErr = humanizeServerUnavailableError(msg.err)
			return m, nil
		}
		m.statusErr = ""
		m.status = msg.status
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			// an absent journal only means there is no backlog to show
			return m, nil
		}
		backlog := slices.Clone(msg.events)
		slices.Reverse(backlog)
		m.events = mergeHistory(backlog, m.events)
		m.refreshFeed()
		return m, nil

	case controlDoneMsg:
		m.busy = ""
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("%s failed: %s", msg.action, humanizeServerUnavailableError(msg.err))
			return m, m.cmdLoadStatus()
		}
		m.errMsg = ""
		m.notice = msg.action + " requested"
		return m, tea.Batch(m.cmdLoadStatus(), cmdClearStatus())

	case copiedMsg:
		if msg.err != nil {
			m.errMsg = "copy failed: " + msg.err.Error()
			return m, nil
		}
		m.notice = "QR code copied to clipboard"
		return m, cmdClearStatus()

	case clearStatusMsg:
		m.notice = ""
		return m, nil

	case statusTickMsg:
		return m, tea.Batch(m.cmdLoadStatus(), cmdStatusTick())

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	return m, nil
}

func (m dashboardModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.errMsg != "" && (msg.String() == "enter" || key.Matches(msg, keys.esc)) {
		m.errMsg = ""
		return m, nil
	}

	if m.showBuildInfo {
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.buildInfo) {
			m.showBuildInfo = false
		}
		return m, nil
	}

	if m.confirmLogout {
		switch {
		case key.Matches(msg, keys.yes):
			m.confirmLogout = false
			m.busy = actionLogout
			return m, m.cmdControl(actionLogout, m.relay.Logout)
		case key.Matches(msg, keys.no):
			m.confirmLogout = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.restart):
		if m.busy != "" {
			return m, nil
		}
		m.busy = actionRestart
		return m, m.cmdControl(actionRestart, m.relay.Restart)
	case key.Matches(msg, keys.logout):
		if m.busy != "" {
			return m, nil
		}
		m.confirmLogout = true
		return m, nil
	case key.Matches(msg, keys.copy):
		return m, m.cmdCopyQR()
	case key.Matches(msg, keys.refresh):
		return m, m.cmdLoadStatus()
	case key.Matches(msg, keys.buildInfo):
		m.showBuildInfo = true
		return m, nil
	}

	var cmd tea.Cmd
	m.feed, cmd = m.feed.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.build))
	}

	var b strings.Builder
	b.WriteString(formatStatus(m.status))
	b.WriteString("\n")
	b.WriteString("Stream:       ")
	if m.live {
		b.WriteString(noticeStyle.Render("live"))
	} else {
		b.WriteString("waiting for events")
	}
	if m.statusErr != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("status: " + m.statusErr))
	}
	if m.qr != "" {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("QR pending: press c to copy the pairing code"))
	}
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Events"))
	b.WriteString("\n")
	b.WriteString(m.feed.View())

	hotKeys := "r: restart  l: logout  c: copy QR  s: refresh  v: about  ↑/↓: scroll"
	if m.busy != "" {
		hotKeys = m.busy + " in progress..."
	}
	page := renderPage(titleStyle.Render("WA RELAY"), b.String(), helpStyle.Render(hotKeys))

	switch {
	case m.confirmLogout:
		page += "\n\n" + confirmModel{message: "Log out and erase stored credentials?"}.View()
	case m.errMsg != "":
		page += "\n\n" + errorOverlayModel{message: m.errMsg}.View()
	case m.notice != "":
		page += "\n\n  " + noticeStyle.Render(m.notice)
	}

	return appStyle.Render(page)
}

func (m *dashboardModel) appendEvents(events ...models.LifecycleEvent) {
	m.events = append(m.events, events...)
	if over := len(m.events) - maxFeedEvents; over > 0 {
		m.events = slices.Delete(m.events, 0, over)
	}
	m.refreshFeed()
}

func (m *dashboardModel) refreshFeed() {
	atBottom := m.feed.AtBottom()

	lines := make([]string, 0, len(m.events))
	for _, e := range m.events {
		lines = append(lines, formatEvent(e, m.feed.Width))
	}
	m.feed.SetContent(strings.Join(lines, "\n"))

	if atBottom {
		m.feed.GotoBottom()
	}
}

// mergeHistory prepends backlog entries not already present in live.
func mergeHistory(backlog, live []models.LifecycleEvent) []models.LifecycleEvent {
	seen := make(map[string]struct{}, len(live))
	for _, e := range live {
		if e.ID != "" {
			seen[e.ID] = struct{}{}
		}
	}

	merged := make([]models.LifecycleEvent, 0, len(backlog)+len(live))
	for _, e := range backlog {
		if _, ok := seen[e.ID]; ok && e.ID != "" {
			continue
		}
		merged = append(merged, e)
	}
	merged = append(merged, live...)
	if over := len(merged) - maxFeedEvents; over > 0 {
		merged = merged[over:]
	}
	return merged
}

func (m dashboardModel) cmdLoadStatus() tea.Cmd {
	ctx, relay := m.ctx, m.relay
	return func() tea.Msg {
		status, err := relay.Status(ctx)
		return statusLoadedMsg{status: status, err: err}
	}
}

func (m dashboardModel) cmdLoadHistory() tea.Cmd {
	ctx, relay := m.ctx, m.relay
	return func() tea.Msg {
		history, err := relay.History(ctx, models.HistoryRequest{Limit: historyLimit})
		return historyLoadedMsg{events: history.Events, err: err}
	}
}

func (m dashboardModel) cmdControl(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return controlDoneMsg{action: action, err: fn(ctx)}
	}
}

func (m dashboardModel) cmdCopyQR() tea.Cmd {
	qr, copyText := m.qr, m.copyText
	return func() tea.Msg {
		if qr == "" {
			return copiedMsg{err: errNoQR}
		}
		return copiedMsg{err: copyText(qr)}
	}
}

func cmdStatusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

func cmdClearStatus() tea.Cmd {
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
