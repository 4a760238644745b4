package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sourcegraph/conc"

	"github.com/MKhiriev/go-wa-relay/internal/adapter"
	"github.com/MKhiriev/go-wa-relay/internal/config"
	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// ControllerOptions tunes the timing of the lifecycle controller.
type ControllerOptions struct {
	// InitRetryInterval is the pause after a failed initialization.
	InitRetryInterval time.Duration
	// InitMaxAttempts caps the attempts of one creation cycle; 0 is unbounded.
	InitMaxAttempts int
	// RecreateDelay is the pause between disconnect cleanup and recreation.
	RecreateDelay time.Duration
	// SettleDelay is the pause before erasing credentials after a logout
	// disconnect.
	SettleDelay time.Duration
	// DestroyTimeout bounds Destroy calls; 0 waits indefinitely.
	DestroyTimeout time.Duration
}

// NewControllerOptions extracts the controller timings from cfg.
func NewControllerOptions(cfg config.Workers) ControllerOptions {
	return ControllerOptions{
		InitRetryInterval: cfg.InitRetryInterval,
		InitMaxAttempts:   cfg.InitMaxAttempts,
		RecreateDelay:     cfg.RecreateDelay,
		SettleDelay:       cfg.SettleDelay,
		DestroyTimeout:    cfg.DestroyTimeout,
	}
}

// Controller owns the single chat client of the process and drives it
// through its lifecycle: creation, initialization with retry, disconnect
// recovery, restart and logout.
//
// All fields below mu are guarded by it. Blocking work (Initialize, Destroy,
// delays, erasure) runs outside the lock in goroutines tracked by wg.
type Controller struct {
	factory    adapter.ClientFactory
	identity   models.SessionIdentity
	sessions   SessionStore
	events     Publisher
	replies    MessageResponder
	opts       ControllerOptions
	clientOpts adapter.ClientOptions
	logger     *logger.Logger
	now        func() time.Time

	mu             sync.Mutex
	state          State
	lastTransition time.Time
	initializing   bool
	generation     uint64
	client         adapter.ChatClient
	clientGen      uint64
	closed         bool

	// cleanupToken identifies the owner of the current cleaning_session
	// phase; zero outside of it. Only the owner may erase or move on.
	cleanupToken uint64
	tokenSeq     uint64
	// erasing counts erasures in flight; no client is created meanwhile.
	erasing int

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup
}

// NewController returns an idle controller. Nothing happens until Start.
func NewController(
	factory adapter.ClientFactory,
	identity models.SessionIdentity,
	sessions SessionStore,
	events Publisher,
	replies MessageResponder,
	opts ControllerOptions,
	log *logger.Logger,
) *Controller {
	if opts.InitRetryInterval <= 0 {
		opts.InitRetryInterval = config.DefaultInitRetryInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		factory:        factory,
		identity:       identity,
		sessions:       sessions,
		events:         events,
		replies:        replies,
		opts:           opts,
		clientOpts:     adapter.DefaultClientOptions(),
		logger:         log.WithComponent("controller"),
		now:            time.Now,
		state:          StateIdle,
		lastTransition: time.Now(),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start begins the first creation cycle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrControllerClosed
	}

	if !c.CreateClient() {
		c.logger.Debug().Str("func", "*Controller.Start").Msg("creation already in progress")
	}
	return nil
}

// Close detaches and destroys the current client, cancels pending delays,
// retries and erasures, and waits for every tracked goroutine to finish.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cl := c.client
	c.client = nil
	c.mu.Unlock()

	c.cancel()
	c.destroy(ctx, cl)

	if recovered := c.wg.WaitAndRecover(); recovered != nil {
		return fmt.Errorf("controller goroutine panicked: %w", recovered.AsError())
	}
	return nil
}

// CreateClient starts a creation cycle in the background and reports
// whether it did. It is a no-op while an initialization is in flight, while
// a client is live, while credentials are being erased, after Close, or
// while the controller is tearing a client down.
func (c *Controller) CreateClient() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acquireLocked() {
		return false
	}

	c.wg.Go(c.initializeLoop)
	return true
}

// acquireLocked sets the initialization flag. c.mu must be held.
func (c *Controller) acquireLocked() bool {
	if c.closed || c.initializing || c.client != nil || c.erasing > 0 {
		return false
	}
	if !CanTransition(c.state, StateInitializing) {
		return false
	}

	c.initializing = true
	c.transitionLocked(StateInitializing)
	return true
}

// initializeLoop owns the initialization flag acquired by CreateClient and
// retries failed attempts at a constant interval.
func (c *Controller) initializeLoop() {
	log := c.logger.With().Str("func", "*Controller.initializeLoop").Logger()

	backoff := retry.NewConstant(c.opts.InitRetryInterval)
	if c.opts.InitMaxAttempts > 0 {
		backoff = retry.WithMaxRetries(uint64(c.opts.InitMaxAttempts-1), backoff)
	}

	attempt := 0
	err := retry.Do(c.ctx, backoff, func(ctx context.Context) error {
		attempt++
		if attempt > 1 && !c.reacquire() {
			// another cycle took over, or an operator action ended this one
			return nil
		}

		if err := c.initializeOnce(ctx); err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("client initialization failed")
			return retry.RetryableError(err)
		}

		log.Info().Int("attempt", attempt).Msg("client initialized")
		return nil
	})
	if err == nil || c.ctx.Err() != nil {
		return
	}

	log.Error().Err(err).Int("attempts", attempt).Msg("giving up on client initialization")

	c.mu.Lock()
	if c.state == StateRecreating {
		c.transitionLocked(StateIdle)
	}
	c.mu.Unlock()
}

// reacquire takes the flag for a retry. Retries only continue a cycle that
// was left in recreating.
func (c *Controller) reacquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecreating {
		return false
	}
	return c.acquireLocked()
}

// initializeOnce constructs a client for a new generation and initializes it.
// The flag is cleared here, whatever the outcome.
func (c *Controller) initializeOnce(ctx context.Context) error {
	c.mu.Lock()
	if c.closed || c.state != StateInitializing {
		// an operator action ran between acquiring the flag and construction
		c.initializing = false
		c.mu.Unlock()
		return ErrSuperseded
	}

	c.generation++
	gen := c.generation

	cl, err := c.factory.NewClient(c.identity, c.clientOpts, func(event models.LifecycleEvent) {
		c.Dispatch(gen, event)
	})
	if err != nil {
		c.initializing = false
		c.transitionLocked(StateRecreating)
		c.mu.Unlock()
		return fmt.Errorf("constructing client: %w", err)
	}

	c.client = cl
	c.clientGen = gen
	c.mu.Unlock()

	initErr := cl.Initialize(ctx)

	c.mu.Lock()
	current := c.client != nil && c.clientGen == gen
	c.initializing = false

	if current && initErr == nil {
		if c.state == StateInitializing {
			c.transitionLocked(StateActive)
		}
		c.mu.Unlock()
		return nil
	}

	if current {
		c.client = nil
		c.transitionLocked(StateRecreating)
	}
	c.mu.Unlock()

	c.destroy(c.ctx, cl)

	if !current {
		return fmt.Errorf("generation %d: %w", gen, ErrSuperseded)
	}
	return fmt.Errorf("generation %d: %w", gen, initErr)
}

// Dispatch routes an event emitted by the client of generation gen. Events
// of any other generation are dropped.
func (c *Controller) Dispatch(gen uint64, event models.LifecycleEvent) {
	log := c.logger.With().
		Str("func", "*Controller.Dispatch").
		Uint64("generation", gen).
		Str("event", event.Type.String()).
		Logger()

	c.mu.Lock()
	if c.client == nil || gen != c.clientGen {
		c.mu.Unlock()
		log.Debug().Msg("dropping event of a superseded client")
		return
	}
	cl := c.client

	switch event.Type {
	case models.EventTypeReady:
		if c.state == StateInitializing {
			c.transitionLocked(StateActive)
		}
		c.mu.Unlock()
		c.events.Publish(event)

	case models.EventTypeQR, models.EventTypeAuthenticated, models.EventTypeAuthFailure:
		c.mu.Unlock()
		c.events.Publish(event)

	case models.EventTypeDisconnected:
		c.client = nil
		c.transitionLocked(StateDisconnecting)
		c.mu.Unlock()

		log.Info().Str("reason", event.Reason).Msg("client disconnected")
		c.events.Publish(event)
		c.spawn(func() { c.recoverFromDisconnect(cl, event.Reason) })

	case models.EventTypeMessage:
		c.mu.Unlock()
		msg := event.InboundMessage()
		c.spawn(func() { c.replies.Respond(c.ctx, activeSender{c}, msg) })

	default:
		c.mu.Unlock()
		log.Warn().Msg("unexpected event from client")
	}
}

// recoverFromDisconnect destroys the disconnected client, erases the
// credentials when the session was logged out, and starts a new client.
// Once an operator action takes the state over it stops.
func (c *Controller) recoverFromDisconnect(cl adapter.ChatClient, reason string) {
	log := c.logger.With().Str("func", "*Controller.recoverFromDisconnect").Str("reason", reason).Logger()

	c.destroy(c.ctx, cl)

	if strings.EqualFold(reason, models.LogoutReason) {
		c.mu.Lock()
		var token uint64
		if c.state == StateDisconnecting {
			token = c.enterCleaningLocked()
		}
		c.mu.Unlock()

		if token == 0 {
			log.Debug().Msg("state taken over before cleanup, stopping")
			return
		}

		if !c.wait(c.opts.SettleDelay) {
			return
		}

		if !c.beginErase(token) {
			log.Info().Msg("skipping erase, session was taken over")
			return
		}

		err := c.sessions.Erase(c.ctx)
		if err != nil {
			log.Warn().Err(err).Str("dir", c.sessions.Dir()).Msg("could not erase session after logout, continuing")
		} else {
			log.Info().Str("dir", c.sessions.Dir()).Msg("session erased after logout")
		}

		if !c.finishErase(token, StateRecreating) {
			log.Debug().Msg("state taken over during erase, stopping")
			return
		}
	} else if !c.transitionFrom(StateRecreating, StateDisconnecting) {
		log.Debug().Msg("state taken over before recreation, stopping")
		return
	}

	if !c.wait(c.opts.RecreateDelay) {
		return
	}

	if !c.createIfRecreating() {
		log.Debug().Msg("recreation skipped, state changed or creation already in progress")
	}
}

// Restart detaches and destroys the current client and starts a new one.
// Destroy errors are logged; the call always succeeds. When an
// initialization is in flight no second client is constructed; that cycle
// retries once its attempt ends. An erasure in flight defers creation until
// it finishes.
func (c *Controller) Restart(ctx context.Context) error {
	log := logger.FromContext(ctx).With().Str("func", "*Controller.Restart").Logger()

	c.mu.Lock()
	cl := c.client
	c.client = nil
	inFlight := c.initializing
	c.transitionLocked(StateRecreating)
	c.mu.Unlock()

	c.destroy(context.WithoutCancel(ctx), cl)

	if inFlight {
		log.Debug().Msg("initialization in flight, its retry recreates the client")
		return nil
	}

	if !c.CreateClient() {
		log.Debug().Msg("creation deferred or already in progress")
	}
	return nil
}

// Logout detaches and destroys the current client and erases the stored
// credentials. If erasure fails the error is returned and no client is
// created; otherwise a new client is started. An operator action issued
// while the erase runs takes precedence over either outcome.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	cl := c.client
	c.client = nil
	token := c.enterCleaningLocked()
	c.erasing++
	c.mu.Unlock()

	c.destroy(context.WithoutCancel(ctx), cl)

	// erasure outlives the request; only Close may cancel it
	if err := c.sessions.Erase(c.ctx); err != nil {
		c.finishErase(token, StateIdle)
		return fmt.Errorf("logout: %w", err)
	}

	if c.finishErase(token, StateRecreating) && !c.CreateClient() {
		logger.FromContext(ctx).Debug().Str("func", "*Controller.Logout").Msg("creation already in progress")
	}
	return nil
}

// enterCleaningLocked moves to cleaning_session and hands out a fresh
// ownership token, superseding any earlier owner. c.mu must be held.
func (c *Controller) enterCleaningLocked() uint64 {
	if !c.transitionLocked(StateCleaningSession) {
		return 0
	}
	c.tokenSeq++
	c.cleanupToken = c.tokenSeq
	return c.cleanupToken
}

// ownsCleanupLocked reports whether token still owns cleaning_session.
// c.mu must be held.
func (c *Controller) ownsCleanupLocked(token uint64) bool {
	return token != 0 && c.state == StateCleaningSession && c.cleanupToken == token
}

// beginErase reserves an erasure slot if token still owns the cleanup.
func (c *Controller) beginErase(token uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ownsCleanupLocked(token) {
		return false
	}
	c.erasing++
	return true
}

// finishErase releases an erasure slot and, if token still owns the
// cleanup, moves to next. It reports ownership. A creation deferred by the
// erasure starts once none is left.
func (c *Controller) finishErase(token uint64, next State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.erasing--
	if c.ownsCleanupLocked(token) {
		c.transitionLocked(next)
		return true
	}

	if c.erasing == 0 && c.state == StateRecreating && c.acquireLocked() {
		c.wg.Go(c.initializeLoop)
	}
	return false
}

// createIfRecreating starts a creation cycle only if nothing moved the
// state away from recreating in the meantime.
func (c *Controller) createIfRecreating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecreating || !c.acquireLocked() {
		return false
	}
	c.wg.Go(c.initializeLoop)
	return true
}

// Status returns a snapshot of the controller. Subscribers is left zero.
func (c *Controller) Status() models.StatusResponse {
	c.mu.Lock()
	status := models.StatusResponse{
		State:          c.state.String(),
		Initializing:   c.initializing,
		Generation:     c.generation,
		SessionDir:     c.sessions.Dir(),
		LastTransition: c.lastTransition,
	}
	c.mu.Unlock()

	status.CredentialsPresent = c.sessions.Exists()
	return status
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transitionLocked moves to state to if the table allows it. c.mu must be
// held.
func (c *Controller) transitionLocked(to State) bool {
	if c.state == to {
		return true
	}
	if !CanTransition(c.state, to) {
		c.logger.Warn().
			Str("func", "*Controller.transitionLocked").
			Str("from", c.state.String()).
			Str("to", to.String()).
			Msg("invalid state transition skipped")
		return false
	}

	c.logger.Debug().
		Str("func", "*Controller.transitionLocked").
		Str("from", c.state.String()).
		Str("to", to.String()).
		Msg("state transition")

	c.state = to
	c.lastTransition = c.now()
	if to != StateCleaningSession {
		c.cleanupToken = 0
	}
	return true
}

// transitionFrom moves to state to only when the current state is one of
// from, leaving an operator-initiated transition in place.
func (c *Controller) transitionFrom(to State, from ...State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range from {
		if c.state == s {
			return c.transitionLocked(to)
		}
	}
	return false
}

// spawn runs fn in a tracked goroutine unless the controller is closed.
func (c *Controller) spawn(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.wg.Go(fn)
}

// destroy releases cl, logging failures.
func (c *Controller) destroy(ctx context.Context, cl adapter.ChatClient) {
	if cl == nil {
		return
	}

	if c.opts.DestroyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.DestroyTimeout)
		defer cancel()
	}

	if err := cl.Destroy(ctx); err != nil {
		c.logger.Warn().Err(err).Str("func", "*Controller.destroy").Msg("error destroying client")
	}
}

// wait sleeps for d and reports false if the controller was closed first.
func (c *Controller) wait(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// activeSender sends through whichever client is live when a reply is
// ready, so a reply outlives a restart of the client that received the
// message.
type activeSender struct {
	c *Controller
}

func (a activeSender) current() (adapter.ChatClient, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()

	if a.c.client == nil || a.c.state != StateActive {
		return nil, ErrNoActiveClient
	}
	return a.c.client, nil
}

func (a activeSender) SendMessage(ctx context.Context, to, body string) error {
	cl, err := a.current()
	if err != nil {
		return err
	}
	return cl.SendMessage(ctx, to, body)
}

func (a activeSender) GetChat(ctx context.Context, chatID string) (models.Chat, error) {
	cl, err := a.current()
	if err != nil {
		return models.Chat{}, err
	}
	return cl.GetChat(ctx, chatID)
}
