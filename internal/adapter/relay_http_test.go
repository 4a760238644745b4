package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

func newTestRelayAdapter(t *testing.T, serverURL string, app config.ClientApp) RelayAdapter {
	t.Helper()
	a, err := NewHTTPRelayAdapter(config.ClientAdapter{RelayAddress: serverURL, RequestTimeout: 2 * time.Second}, app, logger.Nop())
	require.NoError(t, err)
	return a
}

func TestRelay_Restart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wa/restart", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Restart(context.Background())
	assert.NoError(t, err)
}

func TestRelay_LogoutFailureCarriesCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wa/logout", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"ok":false,"error":"EBUSY: resource busy or locked"}`))
	}))
	defer srv.Close()

	err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Logout(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternalServerError)
	assert.Contains(t, err.Error(), "EBUSY")
}

func TestRelay_SendsControlToken(t *testing.T) {
	app := config.ClientApp{ControlTokenKey: "secret", ControlTokenIssuer: "go-wa-relay", ControlTokenDuration: time.Minute}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
		require.NoError(t, err)
		subject, err := utils.ValidateControlToken(token, "secret", "go-wa-relay")
		require.NoError(t, err)
		assert.Equal(t, "dashboard", subject)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	assert.NoError(t, newTestRelayAdapter(t, srv.URL, app).Restart(context.Background()))
}

func TestRelay_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Restart(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRelay_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/wa/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"state":"active","initializing":false,"generation":3,"session_dir":".wwebjs_auth/session-bot01","credentials_present":true}`))
	}))
	defer srv.Close()

	status, err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "active", status.State)
	assert.Equal(t, uint64(3), status.Generation)
	assert.True(t, status.CredentialsPresent)
}

func TestRelay_History(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wa/history", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("limit"))
		assert.Equal(t, []string{"qr", "ready"}, r.URL.Query()["type"])
		_, _ = w.Write([]byte(`{"events":[{"type":"ready"},{"type":"qr","qr":"2@x"}],"length":2}`))
	}))
	defer srv.Close()

	history, err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).History(context.Background(), models.HistoryRequest{
		Types: []models.EventType{models.EventTypeQR, models.EventTypeReady},
		Limit: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, history.Length)
	assert.Equal(t, "2@x", history.Events[1].QR)
}

func TestRelay_Subscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wa/events", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: qr\ndata: {\"type\":\"qr\",\"qr\":\"2@abc\"}\n\n")
		fmt.Fprint(w, "event: ready\ndata: {\"type\":\"ready\"}\n\n")
		fmt.Fprint(w, "data: {broken}\n\n")
		fmt.Fprint(w, "event: message\ndata: {\"type\":\"message\",\"from\":\"1@c.us\",\"body\":\"oi\",\"timestamp\":1700000000}\n\n")
	}))
	defer srv.Close()

	var got []models.LifecycleEvent
	err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Subscribe(context.Background(), func(e models.LifecycleEvent) {
		got = append(got, e)
	})

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.EventTypeQR, got[0].Type)
	assert.Equal(t, models.EventTypeReady, got[1].Type)
	assert.Equal(t, "oi", got[2].Body)
	assert.Equal(t, int64(1700000000), got[2].MessageTimestamp)
}

func TestRelay_SubscribeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestRelayAdapter(t, srv.URL, config.ClientApp{}).Subscribe(context.Background(), func(models.LifecycleEvent) {})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestReadEventStream_MultilineData(t *testing.T) {
	stream := "data: {\"type\":\"auth_failure\",\ndata: \"message\":\"bad\"}\n\n"

	var got []models.LifecycleEvent
	err := readEventStream(strings.NewReader(stream), func(e models.LifecycleEvent) { got = append(got, e) }, logger.Nop())

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bad", got[0].Message)
}
