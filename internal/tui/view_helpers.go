package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-wa-relay/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

const eventTimeLayout = "15:04:05"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		lines := strings.Split(data, "\n")
		for _, line := range lines {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
	} else {
		b.WriteString("  -\n")
	}

	b.WriteString("\n")
	b.WriteString("  ")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString("  ")
		b.WriteString(hotKeys)
		b.WriteString("\n")
	}
	b.WriteString("  q: quit")

	return b.String()
}

// formatEvent renders one feed line: time, type and the variant's payload.
func formatEvent(e models.LifecycleEvent, width int) string {
	ts := "--:--:--"
	if !e.Timestamp.IsZero() {
		ts = e.Timestamp.Local().Format(eventTimeLayout)
	}

	var detail string
	switch e.Type {
	case models.EventTypeQR:
		detail = "scan the QR code to pair (c copies it)"
	case models.EventTypeAuthFailure:
		detail = e.Message
	case models.EventTypeDisconnected:
		detail = "reason: " + e.Reason
	case models.EventTypeMessage:
		detail = e.From + ": " + e.Body
	case models.EventTypeBotMessage:
		detail = "-> " + e.To + ": " + e.Body
	}

	line := fmt.Sprintf("%s  %-14s %s", ts, e.Type, oneLine(detail))
	return fitText(strings.TrimRight(line, " "), width)
}

func formatStatus(s models.StatusResponse) string {
	var b strings.Builder

	b.WriteString("State:        ")
	b.WriteString(stateStyle(s.State).Render(valueOrNA(s.State)))
	if s.Initializing {
		b.WriteString(" (initializing)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Generation:   %d\n", s.Generation)
	b.WriteString("Session dir:  ")
	b.WriteString(valueOrNA(s.SessionDir))
	if s.CredentialsPresent {
		b.WriteString(" (credentials stored)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subscribers:  %d\n", s.Subscribers)
	b.WriteString("Since:        ")
	b.WriteString(sinceText(s.LastTransition))

	return b.String()
}

func sinceText(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format(time.DateTime)
}

func oneLine(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
