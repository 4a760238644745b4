package service

import (
	"context"

	"github.com/sourcegraph/conc/panics"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// FallbackReply is sent when the answer service fails or returns nothing
// usable.
const FallbackReply = "could not respond right now"

// Responder forwards private inbound messages to the answer service and
// sends the reply back through the chat client.
type Responder struct {
	answers adapter.AnswerAdapter
	events  Publisher
	logger  *logger.Logger

	// sem bounds concurrent answer requests; nil means unbounded.
	sem chan struct{}
}

// NewResponder returns a Responder. maxConcurrent bounds in-flight answer
// requests; zero leaves them unbounded.
func NewResponder(answers adapter.AnswerAdapter, events Publisher, maxConcurrent int, log *logger.Logger) *Responder {
	r := &Responder{
		answers: answers,
		events:  events,
		logger:  log,
	}
	if maxConcurrent > 0 {
		r.sem = make(chan struct{}, maxConcurrent)
	}
	return r
}

// Respond implements [MessageResponder]. Messages from the broadcast
// pseudo-address and group chats are dropped silently. Any error or panic is
// logged and swallowed.
func (r *Responder) Respond(ctx context.Context, client adapter.ChatSender, msg models.InboundMessage) {
	var catcher panics.Catcher
	catcher.Try(func() {
		r.respond(ctx, client, msg)
	})

	if recovered := catcher.Recovered(); recovered != nil {
		r.logger.Error().Err(recovered.AsError()).
			Str("func", "*Responder.Respond").
			Str("from", msg.From).
			Msg("panic while handling message")
	}
}

func (r *Responder) respond(ctx context.Context, client adapter.ChatSender, msg models.InboundMessage) {
	log := r.logger.With().Str("func", "*Responder.respond").Str("from", msg.From).Logger()

	if msg.IsBroadcast() {
		return
	}

	chat, err := client.GetChat(ctx, msg.From)
	if err != nil {
		log.Err(err).Msg("error looking up chat")
		return
	}
	if chat.IsGroup {
		return
	}

	r.events.Publish(models.MessageEvent(msg))

	reply := r.answer(ctx, msg)

	if err = client.SendMessage(ctx, msg.From, reply); err != nil {
		log.Err(err).Msg("error sending reply")
		return
	}

	r.events.Publish(models.BotMessageEvent(msg.From, reply))
}

// answer returns the generated reply or FallbackReply.
func (r *Responder) answer(ctx context.Context, msg models.InboundMessage) string {
	if r.sem != nil {
		select {
		case r.sem <- struct{}{}:
			defer func() { <-r.sem }()
		case <-ctx.Done():
			return FallbackReply
		}
	}

	reply, err := r.answers.Answer(ctx, models.AnswerRequest{Message: msg.Body, SessionID: msg.From})
	if err != nil {
		r.logger.Warn().Err(err).Str("func", "*Responder.answer").Str("from", msg.From).Msg("answer failed, using fallback")
		return FallbackReply
	}

	return reply
}
