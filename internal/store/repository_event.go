// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-wa-relay/internal/logger"
	"github.com/MKhiriev/go-wa-relay/models"
)

// eventRepository is the SQLite-backed implementation of [EventJournal].
// Each row keeps the event's id, type and timestamp as columns for
// filtering plus the full JSON payload.
type eventRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewEventRepository constructs an [EventJournal] backed by db.
func NewEventRepository(db *DB, log *logger.Logger) EventJournal {
	log.Debug().Msg("creating event repository")
	return &eventRepository{
		db:     db,
		logger: log,
	}
}

// Append stores event.
func (r *eventRepository) Append(ctx context.Context, event models.LifecycleEvent) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		log.Err(err).Str("func", "*eventRepository.Append").Msg("error encoding event")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	query, args, err := sq.Insert(eventsTable).
		Columns(columnID, columnType, columnTS, columnPayload).
		Values(event.ID, string(event.Type), event.Timestamp.UTC(), string(payload)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*eventRepository.Append").Msg("error building query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*eventRepository.Append").Msg("error inserting event")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		log.Error().Err(err).Str("func", "*eventRepository.Append").Msg("event was not saved")
		return ErrEventNotSaved
	}

	return nil
}

// List returns the most recent events matching req, newest first.
func (r *eventRepository) List(ctx context.Context, req models.HistoryRequest) ([]models.LifecycleEvent, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListQuery(req)
	if err != nil {
		log.Err(err).Str("func", "*eventRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*eventRepository.List").Msg("error querying events")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	events := make([]models.LifecycleEvent, 0)
	for rows.Next() {
		var payload string
		if err = rows.Scan(&payload); err != nil {
			log.Err(err).Str("func", "*eventRepository.List").Msg("error scanning row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}

		var event models.LifecycleEvent
		if err = json.Unmarshal([]byte(payload), &event); err != nil {
			log.Err(err).Str("func", "*eventRepository.List").Msg("error decoding payload")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return events, nil
}

func buildListQuery(req models.HistoryRequest) (string, []any, error) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	builder := sq.Select(columnPayload).From(eventsTable)
	if len(req.Types) > 0 {
		types := make([]string, 0, len(req.Types))
		for _, t := range req.Types {
			types = append(types, string(t))
		}
		builder = builder.Where(sq.Eq{columnType: types})
	}

	return builder.OrderBy(columnSeq + " DESC").Limit(limit).ToSql()
}
