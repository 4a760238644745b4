package service

import (
	"fmt"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/internal/store"
	"github.com/MKhiriev/go-wa-relay/internal/utils"
	"github.com/MKhiriev/go-wa-relay/models"
)

// Services aggregates the business-logic components consumed by handlers
// and workers. Handlers depend only on the interface fields.
type Services struct {
	LifecycleService LifecycleService
	EventStream      EventStream
	HistoryService   HistoryService
	AppInfoService   AppInfoService

	Controller *Controller
	Journal    *JournalService
}

// NewServices wires the event relay, the responder, the lifecycle controller
// and the journal. The chat client factory and the answer adapter are the
// external collaborators.
func NewServices(
	cfg *config.StructuredConfig,
	storages *store.Storages,
	factory adapter.ClientFactory,
	answers adapter.AnswerAdapter,
	build models.AppBuildInfo,
	log *logger.Logger,
) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, build, log)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	events := NewEventBroadcaster(cfg.Workers.EventBuffer, utils.NewUUIDGenerator())
	responder := NewResponder(answers, events, cfg.Workers.MaxConcurrentReplies, log.WithComponent("responder"))

	controller := NewController(
		factory,
		storages.SessionStore.Identity(),
		storages.SessionStore,
		events,
		responder,
		NewControllerOptions(cfg.Workers),
		log,
	)

	journal := NewJournalService(storages.EventJournal, events, log)

	return &Services{
		LifecycleService: controller,
		EventStream:      events,
		HistoryService:   journal,
		AppInfoService:   appInfo,
		Controller:       controller,
		Journal:          journal,
	}, nil
}
