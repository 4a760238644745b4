package adapter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

const dashboardSubject = "dashboard"

type httpRelayAdapter struct {
	client *utils.HTTPClient
	// stream has no timeout; the event stream stays open indefinitely.
	stream *utils.HTTPClient

	appCfg config.ClientApp
	logger *logger.Logger
}

// NewHTTPRelayAdapter constructs the dashboard's [RelayAdapter]. When
// appCfg.ControlTokenKey is set every request carries a freshly minted
// bearer token.
func NewHTTPRelayAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, log *logger.Logger) (RelayAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.RelayAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid relay address: %w", err)
	}

	return &httpRelayAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		stream: utils.NewHTTPClient(baseURL, 0),
		appCfg: appCfg,
		logger: log,
	}, nil
}

// Restart implements [RelayAdapter].
func (h *httpRelayAdapter) Restart(ctx context.Context) error {
	return h.control(ctx, "/wa/restart")
}

// Logout implements [RelayAdapter]. A failed erase is reported by the relay
// as 500 and surfaces as [ErrInternalServerError] carrying the cause.
func (h *httpRelayAdapter) Logout(ctx context.Context) error {
	return h.control(ctx, "/wa/logout")
}

func (h *httpRelayAdapter) control(ctx context.Context, path string) error {
	req, err := h.request(ctx, h.client)
	if err != nil {
		return err
	}

	resp, err := req.Post(path)
	if err != nil {
		return fmt.Errorf("control request %s: %w", path, err)
	}

	return mapHTTPError(resp)
}

// Status implements [RelayAdapter].
func (h *httpRelayAdapter) Status(ctx context.Context) (models.StatusResponse, error) {
	var status models.StatusResponse

	req, err := h.request(ctx, h.client)
	if err != nil {
		return status, err
	}

	resp, err := req.Get("/wa/status")
	if err != nil {
		return status, fmt.Errorf("status request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return status, err
	}

	if err = json.Unmarshal(resp.Body(), &status); err != nil {
		return status, fmt.Errorf("decode status: %w", err)
	}
	return status, nil
}

// History implements [RelayAdapter].
func (h *httpRelayAdapter) History(ctx context.Context, historyReq models.HistoryRequest) (models.HistoryResponse, error) {
	var history models.HistoryResponse

	req, err := h.request(ctx, h.client)
	if err != nil {
		return history, err
	}

	if historyReq.Limit > 0 {
		req.SetQueryParam("limit", strconv.FormatUint(historyReq.Limit, 10))
	}
	for _, t := range historyReq.Types {
		req.QueryParam.Add("type", t.String())
	}

	resp, err := req.Get("/wa/history")
	if err != nil {
		return history, fmt.Errorf("history request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return history, err
	}

	if err = json.Unmarshal(resp.Body(), &history); err != nil {
		return history, fmt.Errorf("decode history: %w", err)
	}
	return history, nil
}

// Subscribe implements [RelayAdapter].
func (h *httpRelayAdapter) Subscribe(ctx context.Context, fn func(models.LifecycleEvent)) error {
	req, err := h.request(ctx, h.stream)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Accept", "text/event-stream").
		SetDoNotParseResponse(true).
		Get("/wa/events")
	if err != nil {
		return fmt.Errorf("subscribe request: %w", err)
	}

	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(body, 4096))
		return fmt.Errorf("subscribe: http %d: %s", resp.StatusCode(), strings.TrimSpace(string(raw)))
	}

	return readEventStream(body, fn, h.logger)
}

func (h *httpRelayAdapter) request(ctx context.Context, client *utils.HTTPClient) (*resty.Request, error) {
	req := client.R().SetContext(ctx)

	if h.appCfg.ControlTokenKey == "" {
		return req, nil
	}

	token, err := utils.GenerateControlToken(h.appCfg.ControlTokenIssuer, dashboardSubject, h.appCfg.ControlTokenDuration, h.appCfg.ControlTokenKey)
	if err != nil {
		return nil, fmt.Errorf("mint control token: %w", err)
	}
	return req.SetAuthToken(token), nil
}

// readEventStream decodes server-sent event frames from r until EOF.
// Only the data lines are used; the event type is repeated in the payload.
func readEventStream(r io.Reader, fn func(models.LifecycleEvent), log *logger.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if data.Len() == 0 {
				continue
			}
			var event models.LifecycleEvent
			if err := json.Unmarshal([]byte(data.String()), &event); err != nil {
				log.Warn().Err(err).Str("func", "readEventStream").Msg("undecodable event")
			} else {
				fn(event)
			}
			data.Reset()
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read event stream: %w", err)
	}
	return nil
}
