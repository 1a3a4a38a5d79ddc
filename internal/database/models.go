package database

import "time"

// ModerationEvent is one audit-log row: the outcome of moderating a single
// spam message.
type ModerationEvent struct {
	ID          int64     `db:"id"`
	ChatID      int64     `db:"chat_id"`
	MessageID   int64     `db:"message_id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Handle      string    `db:"handle"`
	MessageText string    `db:"message_text"`
	PhotoPath   string    `db:"photo_path"`
	FiredSignal string    `db:"fired_signal"`
	Banned      bool      `db:"banned"`
	Reported    bool      `db:"reported"`
	MessageTime time.Time `db:"message_time"`
	CreatedAt   time.Time `db:"created_at"`
}
