package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/spamwatch/internal/model"
)

// Actions implements the moderation action primitives and sender lookups on
// top of the Bot API. One instance serves all monitored channels.
type Actions struct {
	bot             *bot.Bot
	logChannelID    int64
	reportChannelID int64
	logger          *slog.Logger
}

// NewActions creates the action adapter. reportChannelID may be zero, which
// turns report forwarding into a no-op.
func NewActions(b *bot.Bot, logChannelID, reportChannelID int64, logger *slog.Logger) *Actions {
	return &Actions{
		bot:             b,
		logChannelID:    logChannelID,
		reportChannelID: reportChannelID,
		logger:          logger.With("component", "telegram_actions"),
	}
}

// DeleteMessage removes a message from the chat.
func (a *Actions) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	ok, err := a.bot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message %d in chat %d: %w", messageID, chatID, err)
	}
	if !ok {
		return fmt.Errorf("delete of message %d in chat %d was rejected", messageID, chatID)
	}
	return nil
}

// BanSender permanently revokes the sender's ability to post, send media,
// or invite users. UntilDate zero makes the restriction permanent.
func (a *Actions) BanSender(ctx context.Context, chatID int64, sender *model.ResolvedSender) error {
	if sender == nil {
		return fmt.Errorf("cannot ban nil sender")
	}

	ok, err := a.bot.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      chatID,
		UserID:      sender.UserID,
		Permissions: &models.ChatPermissions{},
		UntilDate:   0,
	})
	if err != nil {
		return fmt.Errorf("failed to restrict user %d in chat %d: %w", sender.UserID, chatID, err)
	}
	if !ok {
		return fmt.Errorf("restriction of user %d in chat %d was rejected", sender.UserID, chatID)
	}
	return nil
}

// ReportSpam forwards the offending message to the review channel. The Bot
// API has no abuse-report endpoint, so a forwarded copy for human review is
// the closest equivalent.
func (a *Actions) ReportSpam(ctx context.Context, chatID int64, messageID int) error {
	if a.reportChannelID == 0 {
		a.logger.DebugContext(ctx, "No report channel configured, skipping forward",
			"chat_id", chatID, "message_id", messageID)
		return nil
	}

	_, err := a.bot.ForwardMessage(ctx, &bot.ForwardMessageParams{
		ChatID:     a.reportChannelID,
		FromChatID: chatID,
		MessageID:  messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to forward message %d from chat %d for review: %w", messageID, chatID, err)
	}
	return nil
}

// SendLog posts a plain-text audit entry to the log channel.
func (a *Actions) SendLog(ctx context.Context, text string) error {
	_, err := a.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: a.logChannelID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send log entry: %w", err)
	}
	return nil
}

// LookupMember resolves the sender as a member of the given chat.
func (a *Actions) LookupMember(ctx context.Context, chatID, userID int64) (*model.ResolvedSender, error) {
	member, err := a.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: chatID,
		UserID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("chat member lookup for user %d failed: %w", userID, err)
	}

	user, status := memberInfo(member)
	if user == nil {
		return nil, fmt.Errorf("chat member lookup for user %d returned no user", userID)
	}
	return &model.ResolvedSender{
		UserID: user.ID,
		Handle: user.Username,
		Status: status,
	}, nil
}

// LookupByID is the fallback keyed only by the raw sender id.
func (a *Actions) LookupByID(ctx context.Context, userID int64) (*model.ResolvedSender, error) {
	chat, err := a.bot.GetChat(ctx, &bot.GetChatParams{ChatID: userID})
	if err != nil {
		return nil, fmt.Errorf("chat lookup for user %d failed: %w", userID, err)
	}
	return &model.ResolvedSender{
		UserID: chat.ID,
		Handle: chat.Username,
		Status: "unknown",
	}, nil
}

func memberInfo(m *models.ChatMember) (*models.User, string) {
	switch m.Type {
	case models.ChatMemberTypeOwner:
		return m.Owner.User, string(m.Owner.Status)
	case models.ChatMemberTypeAdministrator:
		return &m.Administrator.User, string(m.Administrator.Status)
	case models.ChatMemberTypeMember:
		return m.Member.User, string(m.Member.Status)
	case models.ChatMemberTypeRestricted:
		return m.Restricted.User, string(m.Restricted.Status)
	case models.ChatMemberTypeLeft:
		return m.Left.User, string(m.Left.Status)
	case models.ChatMemberTypeBanned:
		return m.Banned.User, string(m.Banned.Status)
	}
	return nil, ""
}
