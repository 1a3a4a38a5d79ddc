// Package moderation contains the message pipeline: assembling inbound
// events into message records, classifying them, and driving the bounded
// delete/ban/report/log action sequence for spam verdicts.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/spamwatch/internal/model"
)

// ErrSenderUnresolved is returned when both lookup strategies keep failing
// and no retries remain.
var ErrSenderUnresolved = errors.New("sender could not be resolved")

// resolveAttempts bounds the whole two-step lookup: one initial attempt plus
// one retry. The bound keeps worst-case latency in the moderation hot path
// predictable.
const resolveAttempts = 2

// SenderDirectory abstracts the backend lookups that turn a sender id into
// an addressable reference.
type SenderDirectory interface {
	// LookupMember is the fast path: resolve the sender as a member of the
	// channel the message arrived in.
	LookupMember(ctx context.Context, chatID, userID int64) (*model.ResolvedSender, error)

	// LookupByID is the fallback keyed only by the raw sender id.
	LookupByID(ctx context.Context, userID int64) (*model.ResolvedSender, error)
}

// Resolver resolves senders with a bounded retry loop. Resolution has no
// side effects beyond the lookups themselves; results are never cached
// across messages because the backing session cache may be cold after a
// restart.
type Resolver struct {
	dir      SenderDirectory
	attempts int
	logger   *slog.Logger
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(dir SenderDirectory, logger *slog.Logger) *Resolver {
	return &Resolver{
		dir:      dir,
		attempts: resolveAttempts,
		logger:   logger.With("component", "sender_resolver"),
	}
}

// Resolve attempts the fast member lookup and falls back to the raw-id
// lookup. The whole two-step attempt is retried up to the configured bound;
// after that it reports ErrSenderUnresolved instead of retrying forever.
func (r *Resolver) Resolve(ctx context.Context, chatID, userID int64) (*model.ResolvedSender, error) {
	var lastErr error

	for attempt := 1; attempt <= r.attempts; attempt++ {
		sender, err := r.dir.LookupMember(ctx, chatID, userID)
		if err == nil {
			return sender, nil
		}
		r.logger.DebugContext(ctx, "Fast sender lookup failed, trying fallback",
			"user_id", userID, "chat_id", chatID, "attempt", attempt, "error", err)

		sender, err = r.dir.LookupByID(ctx, userID)
		if err == nil {
			return sender, nil
		}
		lastErr = err
		r.logger.WarnContext(ctx, "Sender resolution attempt failed",
			"user_id", userID, "attempt", attempt, "max_attempts", r.attempts, "error", err)
	}

	return nil, fmt.Errorf("%w: user %d after %d attempts: %v", ErrSenderUnresolved, userID, r.attempts, lastErr)
}
