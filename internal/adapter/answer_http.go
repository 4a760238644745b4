package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

const answerPath = "/api/chat/message"

type httpAnswerAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPAnswerAdapter constructs the HTTP/REST implementation of
// [AnswerAdapter] rooted at cfg.AnswerAddress.
func NewHTTPAnswerAdapter(cfg config.Adapter, log *logger.Logger) (AnswerAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.AnswerAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid answer address: %w", err)
	}

	return &httpAnswerAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.AnswerTimeout),
		logger: log,
	}, nil
}

// Answer implements [AnswerAdapter]. It POSTs req to /api/chat/message and
// returns the "resposta" field of the reply.
func (h *httpAnswerAdapter) Answer(ctx context.Context, req models.AnswerRequest) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(answerPath)
	if err != nil {
		return "", fmt.Errorf("answer request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	var answer models.AnswerResponse
	if err = json.Unmarshal(resp.Body(), &answer); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedAnswer, err)
	}

	if answer.Reply == nil || strings.TrimSpace(*answer.Reply) == "" {
		return "", ErrEmptyAnswer
	}

	return *answer.Reply, nil
}
