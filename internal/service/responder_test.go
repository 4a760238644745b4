package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/mock"
	"github.com/MKhiriev/go-wa-relay/models"
)

func newTestResponder(t *testing.T, ctrl *gomock.Controller) (*Responder, *mock.MockAnswerAdapter, *mock.MockChatClient, *recordingPublisher) {
	t.Helper()
	answers := mock.NewMockAnswerAdapter(ctrl)
	client := mock.NewMockChatClient(ctrl)
	events := &recordingPublisher{}
	return NewResponder(answers, events, 0, logger.Nop()), answers, client, events
}

func TestResponder_RepliesToPrivateMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, answers, client, events := newTestResponder(t, ctrl)
	ctx := context.Background()
	msg := models.InboundMessage{From: "5511999@c.us", Body: "oi", Timestamp: 1700000000}

	gomock.InOrder(
		client.EXPECT().GetChat(ctx, msg.From).Return(models.Chat{ID: msg.From}, nil),
		answers.EXPECT().Answer(ctx, models.AnswerRequest{Message: "oi", SessionID: msg.From}).Return("olá!", nil),
		client.EXPECT().SendMessage(ctx, msg.From, "olá!").Return(nil),
	)

	r.Respond(ctx, client, msg)

	require.Len(t, events.events, 2)
	assert.Equal(t, models.MessageEvent(msg), events.events[0])
	assert.Equal(t, models.BotMessageEvent(msg.From, "olá!"), events.events[1])
}

func TestResponder_IgnoresBroadcast(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, client, events := newTestResponder(t, ctrl)

	r.Respond(context.Background(), client, models.InboundMessage{From: models.BroadcastAddress, Body: "status"})

	assert.Empty(t, events.events)
}

func TestResponder_IgnoresGroups(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, client, events := newTestResponder(t, ctrl)
	ctx := context.Background()

	client.EXPECT().GetChat(ctx, "123-456@g.us").Return(models.Chat{ID: "123-456@g.us", IsGroup: true}, nil)

	r.Respond(ctx, client, models.InboundMessage{From: "123-456@g.us", Body: "hello group"})

	assert.Empty(t, events.events)
}

func TestResponder_FallbackOnAnswerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "bad gateway", err: adapter.ErrBadGateway},
		{name: "malformed body", err: adapter.ErrMalformedAnswer},
		{name: "empty reply", err: adapter.ErrEmptyAnswer},
		{name: "timeout", err: context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			r, answers, client, events := newTestResponder(t, ctrl)
			ctx := context.Background()

			client.EXPECT().GetChat(ctx, "a@c.us").Return(models.Chat{ID: "a@c.us"}, nil)
			answers.EXPECT().Answer(ctx, gomock.Any()).Return("", tt.err)
			client.EXPECT().SendMessage(ctx, "a@c.us", FallbackReply).Return(nil)

			r.Respond(ctx, client, models.InboundMessage{From: "a@c.us", Body: "?"})

			require.Len(t, events.events, 2)
			assert.Equal(t, FallbackReply, events.events[1].Body)
		})
	}
}

func TestResponder_GetChatErrorStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, client, events := newTestResponder(t, ctrl)
	ctx := context.Background()

	client.EXPECT().GetChat(ctx, "a@c.us").Return(models.Chat{}, errors.New("page closed"))

	r.Respond(ctx, client, models.InboundMessage{From: "a@c.us", Body: "?"})

	assert.Empty(t, events.events)
}

func TestResponder_SendErrorSkipsBotMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, answers, client, events := newTestResponder(t, ctrl)
	ctx := context.Background()

	client.EXPECT().GetChat(ctx, "a@c.us").Return(models.Chat{ID: "a@c.us"}, nil)
	answers.EXPECT().Answer(ctx, gomock.Any()).Return("reply", nil)
	client.EXPECT().SendMessage(ctx, "a@c.us", "reply").Return(errors.New("not connected"))

	r.Respond(ctx, client, models.InboundMessage{From: "a@c.us", Body: "?"})

	require.Len(t, events.events, 1)
	assert.Equal(t, models.EventTypeMessage, events.events[0].Type)
}

func TestResponder_RecoversPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, _, client, _ := newTestResponder(t, ctrl)
	ctx := context.Background()

	client.EXPECT().GetChat(ctx, "a@c.us").DoAndReturn(func(context.Context, string) (models.Chat, error) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		r.Respond(ctx, client, models.InboundMessage{From: "a@c.us", Body: "?"})
	})
}

// slowAnswers counts concurrent Answer calls.
type slowAnswers struct {
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (s *slowAnswers) Answer(ctx context.Context, req models.AnswerRequest) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return "ok", nil
}

func TestResponder_BoundsConcurrentAnswers(t *testing.T) {
	answers := &slowAnswers{}
	r := NewResponder(answers, &recordingPublisher{}, 2, logger.Nop())
	client := &fakeClient{destroyed: make(chan struct{})}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Respond(context.Background(), client, models.InboundMessage{From: fmt.Sprintf("%d@c.us", i), Body: "hi"})
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, answers.peak.Load(), int32(2))
	assert.Positive(t, answers.peak.Load())
}
