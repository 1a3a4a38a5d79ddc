package database

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the audit-log data access operations.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveModerationEvent inserts a new audit-log row.
	SaveModerationEvent(ctx context.Context, event *ModerationEvent) error

	// RecentModerationEvents returns the most recent 'limit' audit rows,
	// newest first.
	RecentModerationEvents(ctx context.Context, limit int) ([]ModerationEvent, error)

	// RunMaintenance performs periodic database maintenance (VACUUM).
	RunMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveModerationEvent(ctx context.Context, event *ModerationEvent) error {
	if event == nil {
		return fmt.Errorf("cannot save nil moderation event")
	}
	if event.UserID == 0 {
		return fmt.Errorf("moderation event must have a non-zero user_id")
	}

	event.CreatedAt = time.Now().UTC()

	query := `INSERT INTO moderation_events
		(chat_id, message_id, user_id, display_name, handle, message_text,
		 photo_path, fired_signal, banned, reported, message_time, created_at)
		VALUES (:chat_id, :message_id, :user_id, :display_name, :handle, :message_text,
		 :photo_path, :fired_signal, :banned, :reported, :message_time, :created_at)`

	res, err := s.db.NamedExecContext(ctx, query, event)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert moderation event",
			"chat_id", event.ChatID, "user_id", event.UserID, "error", err)
		return fmt.Errorf("failed to insert moderation event: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		event.ID = id
	}
	return nil
}

func (s *sqlxStore) RecentModerationEvents(ctx context.Context, limit int) ([]ModerationEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	events := []ModerationEvent{}
	query := `SELECT * FROM moderation_events ORDER BY created_at DESC, id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &events, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query moderation events: %w", err)
	}
	return events, nil
}

func (s *sqlxStore) RunMaintenance(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Running database maintenance")
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	return nil
}
