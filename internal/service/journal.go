package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/store"
	"github.com/MKhiriev/go-wa-relay/models"
)

// JournalSubscriberID is the relay subscriber id used by the journal.
const JournalSubscriberID = "journal"

// JournalService records relayed events and serves them back as history.
type JournalService struct {
	journal store.EventJournal
	stream  EventStream
	logger  *logger.Logger
}

// NewJournalService returns a journal over journal, fed by stream. A nil
// journal disables recording and history.
func NewJournalService(journal store.EventJournal, stream EventStream, log *logger.Logger) *JournalService {
	return &JournalService{
		journal: journal,
		stream:  stream,
		logger:  log.WithComponent("journal"),
	}
}

// Run appends every relayed event to the journal until ctx is done.
// Append failures are logged and skipped.
func (j *JournalService) Run(ctx context.Context) error {
	if j.journal == nil {
		<-ctx.Done()
		return nil
	}

	sub := j.stream.Subscribe(JournalSubscriberID)
	defer j.stream.Unsubscribe(JournalSubscriberID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-sub.Events:
			if !ok {
				return nil
			}
			if err := j.journal.Append(ctx, event); err != nil {
				j.logger.Warn().Err(err).
					Str("func", "*JournalService.Run").
					Str("event_id", event.ID).
					Msg("could not journal event")
			}
		}
	}
}

// History returns the most recent journaled events matching req.
func (j *JournalService) History(ctx context.Context, req models.HistoryRequest) (models.HistoryResponse, error) {
	if j.journal == nil {
		return models.HistoryResponse{}, ErrJournalDisabled
	}

	for _, t := range req.Types {
		if !t.Valid() {
			return models.HistoryResponse{}, fmt.Errorf("%w: %q", ErrInvalidEventType, t)
		}
	}

	events, err := j.journal.List(ctx, req)
	if err != nil {
		return models.HistoryResponse{}, fmt.Errorf("listing events: %w", err)
	}
	if events == nil {
		events = []models.LifecycleEvent{}
	}

	return models.HistoryResponse{Events: events, Length: len(events)}, nil
}
