package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// SessionStore is the on-disk credential area of the single chat-client
// identity. The transport reads and writes the directory's contents; the
// store only reports presence and erases it.
type SessionStore struct {
	identity models.SessionIdentity
	eraser   *Eraser
	policy   RetryPolicy
	logger   *logger.Logger
}

// NewSessionStore returns a SessionStore for identity that erases with
// eraser under policy.
func NewSessionStore(identity models.SessionIdentity, eraser *Eraser, policy RetryPolicy, log *logger.Logger) *SessionStore {
	log.Debug().Str("dir", identity.Dir()).Msg("creating session store")
	return &SessionStore{
		identity: identity,
		eraser:   eraser,
		policy:   policy,
		logger:   log,
	}
}

// Identity returns the identity the store was created for.
func (s *SessionStore) Identity() models.SessionIdentity {
	return s.identity
}

// Dir returns {root}/session-{client id}.
func (s *SessionStore) Dir() string {
	return s.identity.Dir()
}

// Exists reports whether the session directory is present.
func (s *SessionStore) Exists() bool {
	info, err := os.Stat(s.Dir())
	return err == nil && info.IsDir()
}

// Erase removes the session directory under the store's retry policy.
func (s *SessionStore) Erase(ctx context.Context) error {
	return s.eraser.EraseDir(ctx, s.Dir(), s.policy)
}

// Watch calls onChange with the current presence of the session directory
// whenever it is created, removed or renamed, until ctx is done.
func (s *SessionStore) Watch(ctx context.Context, onChange func(present bool)) error {
	w, err := s.openWatcher()
	if err != nil {
		return err
	}
	s.watchLoop(ctx, w, onChange)
	return nil
}

func (s *SessionStore) openWatcher() (*fsnotify.Watcher, error) {
	if err := os.MkdirAll(s.identity.Root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatcherFailed, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatcherFailed, err)
	}

	if err = w.Add(s.identity.Root); err != nil {
		w.Close()
		return nil, fmt.Errorf("%w: %w", ErrWatcherFailed, err)
	}

	return w, nil
}

func (s *SessionStore) watchLoop(ctx context.Context, w *fsnotify.Watcher, onChange func(present bool)) {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != s.identity.DirName() {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				present := s.Exists()
				s.logger.Debug().Str("func", "*SessionStore.watchLoop").
					Str("op", event.Op.String()).
					Bool("present", present).
					Msg("session directory changed")
				onChange(present)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn().Err(err).Str("func", "*SessionStore.watchLoop").Msg("watcher error")
		}
	}
}
