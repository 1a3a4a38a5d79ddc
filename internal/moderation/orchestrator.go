package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edgard/spamwatch/internal/database"
	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/spam"
)

// ChannelActions abstracts the platform primitives the orchestrator drives.
// Every implementation error is caught and logged at the call site; none may
// crash the pipeline.
type ChannelActions interface {
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	BanSender(ctx context.Context, chatID int64, sender *model.ResolvedSender) error
	ReportSpam(ctx context.Context, chatID int64, messageID int) error
	SendLog(ctx context.Context, text string) error
}

// AuditStore is the subset of the database store the orchestrator writes to.
type AuditStore interface {
	SaveModerationEvent(ctx context.Context, event *database.ModerationEvent) error
}

// Orchestrator executes the moderation action sequence for a spam verdict:
// delete, ban, report, audit log, in that order, with independent failure
// isolation between steps.
type Orchestrator struct {
	actions  ChannelActions
	resolver *Resolver
	store    AuditStore
	logger   *slog.Logger
}

// NewOrchestrator creates an Orchestrator. store may be nil, in which case
// audit entries go to the log channel only.
func NewOrchestrator(actions ChannelActions, resolver *Resolver, store AuditStore, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		actions:  actions,
		resolver: resolver,
		store:    store,
		logger:   logger.With("component", "moderation_orchestrator"),
	}
}

// Moderate runs the action sequence for a message already judged as spam.
// Delete always precedes ban; ban is attempted regardless of delete's
// outcome; the audit log is emitted regardless of report's outcome. No step
// is retried beyond the bounded retry inside sender resolution.
func (o *Orchestrator) Moderate(ctx context.Context, ev Event, msg *model.Message, verdict spam.Verdict) {
	log := o.logger.With("chat_id", ev.ChatID, "message_id", ev.MessageID, "user_id", msg.Sender.NumericID)

	if err := o.actions.DeleteMessage(ctx, ev.ChatID, ev.MessageID); err != nil {
		log.ErrorContext(ctx, "Failed to delete message", "error", err)
	}

	banned := false
	sender, err := o.resolver.Resolve(ctx, ev.ChatID, msg.Sender.NumericID)
	if err != nil {
		log.ErrorContext(ctx, "UNABLE_TO_BAN: sender resolution failed",
			"display_name", msg.Sender.DisplayName, "text", msg.Text, "error", err)
	} else if err := o.actions.BanSender(ctx, ev.ChatID, sender); err != nil {
		log.ErrorContext(ctx, "Failed to ban sender",
			"display_name", msg.Sender.DisplayName, "handle", msg.Sender.Handle,
			"text", msg.Text, "error", err)
	} else {
		banned = true
	}

	// Report is fire-and-forget for control flow: its outcome is recorded
	// but never gates the audit step.
	reported := true
	if err := o.actions.ReportSpam(ctx, ev.ChatID, ev.MessageID); err != nil {
		reported = false
		log.WarnContext(ctx, "Failed to report sender", "error", err)
	}

	o.audit(ctx, ev, msg, verdict, banned, reported)
}

func (o *Orchestrator) audit(ctx context.Context, ev Event, msg *model.Message, verdict spam.Verdict, banned, reported bool) {
	photo := msg.PhotoArtifactPath
	if photo == "" {
		photo = "N/A"
	}

	messageTime := time.Unix(msg.Timestamp, 0).UTC()
	entry := fmt.Sprintf("Time: %s\nUser: %s / %s / %d\nMessage: %s\nPhoto: %s\nAction: banned & reported\n",
		messageTime.Format(time.RFC3339),
		msg.Sender.DisplayName, msg.Sender.Handle, msg.Sender.NumericID,
		msg.Text, photo)

	if err := o.actions.SendLog(ctx, entry); err != nil {
		o.logger.ErrorContext(ctx, "Failed to send audit log entry",
			"user_id", msg.Sender.NumericID, "error", err)
	}

	if o.store == nil {
		return
	}
	event := &database.ModerationEvent{
		ChatID:      ev.ChatID,
		MessageID:   int64(ev.MessageID),
		UserID:      msg.Sender.NumericID,
		DisplayName: msg.Sender.DisplayName,
		Handle:      msg.Sender.Handle,
		MessageText: msg.Text,
		PhotoPath:   msg.PhotoArtifactPath,
		FiredSignal: string(verdict.FiredSignal),
		Banned:      banned,
		Reported:    reported,
		MessageTime: messageTime,
	}
	if err := o.store.SaveModerationEvent(ctx, event); err != nil {
		o.logger.ErrorContext(ctx, "Failed to persist moderation event",
			"user_id", msg.Sender.NumericID, "error", err)
	}
}
