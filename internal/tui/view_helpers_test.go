package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-wa-relay/models"
)

func TestFormatEvent(t *testing.T) {
	ts := time.Date(2026, 1, 2, 13, 4, 5, 0, time.Local)

	tests := []struct {
		name  string
		event models.LifecycleEvent
		want  string
	}{
		{
			name:  "ready",
			event: models.LifecycleEvent{Type: models.EventTypeReady, Timestamp: ts},
			want:  "13:04:05  ready",
		},
		{
			name:  "qr",
			event: models.LifecycleEvent{Type: models.EventTypeQR, Timestamp: ts, QR: "2@abc"},
			want:  "13:04:05  qr             scan the QR code to pair (c copies it)",
		},
		{
			name:  "disconnected",
			event: models.LifecycleEvent{Type: models.EventTypeDisconnected, Timestamp: ts, Reason: "LOGOUT"},
			want:  "13:04:05  disconnected   reason: LOGOUT",
		},
		{
			name:  "auth failure",
			event: models.LifecycleEvent{Type: models.EventTypeAuthFailure, Timestamp: ts, Message: "bad session"},
			want:  "13:04:05  auth_failure   bad session",
		},
		{
			name:  "message flattened",
			event: models.LifecycleEvent{Type: models.EventTypeMessage, Timestamp: ts, From: "5511@c.us", Body: "hi\nthere"},
			want:  "13:04:05  message        5511@c.us: hi there",
		},
		{
			name:  "bot message",
			event: models.LifecycleEvent{Type: models.EventTypeBotMessage, Timestamp: ts, To: "5511@c.us", Body: "hello"},
			want:  "13:04:05  bot_message    -> 5511@c.us: hello",
		},
		{
			name:  "no timestamp",
			event: models.LifecycleEvent{Type: models.EventTypeAuthenticated},
			want:  "--:--:--  authenticated",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatEvent(tt.event, 0))
		})
	}
}

func TestFormatEvent_Truncates(t *testing.T) {
	e := models.LifecycleEvent{Type: models.EventTypeMessage, From: "a", Body: "ééééééééééééééééééééééééé"}

	got := formatEvent(e, 30)

	assert.Equal(t, 30, len([]rune(got)))
	assert.True(t, len(got) > 0 && got[len(got)-3:] == "...")
}

func TestFitText(t *testing.T) {
	assert.Equal(t, "abc", fitText("abc", 0))
	assert.Equal(t, "abc", fitText("abc", 3))
	assert.Equal(t, "ab", fitText("abcdef", 2))
	assert.Equal(t, "a...", fitText("abcdef", 4))
}

func TestHumanizeServerUnavailableError(t *testing.T) {
	assert.Empty(t, humanizeServerUnavailableError(nil))
	assert.Equal(t, "relay is unreachable", humanizeServerUnavailableError(errors.New("Get \"http://x\": dial tcp: connection refused")))
	assert.Equal(t, "boom", humanizeServerUnavailableError(errors.New("boom")))
}

func TestRenderBuildInfoWindow(t *testing.T) {
	view := renderBuildInfoWindow(models.NewAppBuildInfo("", "2026-01-02", "abc123"))

	assert.Contains(t, view, "Version: N/A")
	assert.Contains(t, view, "Date: 2026-01-02")
	assert.Contains(t, view, "Commit: abc123")
	assert.Contains(t, view, "esc: back")
}
