package telegram

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/moderation"
)

// Watcher turns raw Telegram updates into moderation pipeline events. It
// filters to the monitored chats, deletes join/leave service messages, and
// builds the tagged event record once so nothing downstream re-probes the
// update shape.
type Watcher struct {
	pipeline  *moderation.Pipeline
	actions   *Actions
	monitored map[int64]struct{}
	logger    *slog.Logger
}

// NewWatcher creates a Watcher over the given monitored chat IDs.
func NewWatcher(pipeline *moderation.Pipeline, actions *Actions, monitoredChats []int64, logger *slog.Logger) *Watcher {
	monitored := make(map[int64]struct{}, len(monitoredChats))
	for _, id := range monitoredChats {
		monitored[id] = struct{}{}
	}
	return &Watcher{
		pipeline:  pipeline,
		actions:   actions,
		monitored: monitored,
		logger:    logger.With("component", "watcher"),
	}
}

// Handle is the default update handler registered with the bot.
func (w *Watcher) Handle(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil {
		return
	}

	if _, ok := w.monitored[msg.Chat.ID]; !ok {
		w.logger.DebugContext(ctx, "Ignoring message from unmonitored chat", "chat_id", msg.Chat.ID)
		return
	}

	if isServiceMessage(msg) {
		w.deleteServiceMessage(ctx, msg)
		return
	}

	sender := senderIdentity(msg)
	if sender == nil {
		w.logger.DebugContext(ctx, "Skipping message without an identifiable sender",
			"chat_id", msg.Chat.ID, "message_id", msg.ID)
		return
	}

	ev := moderation.Event{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Date:      int64(msg.Date),
		Text:      messageText(msg),
		Sender:    *sender,
		Photo:     bestPhoto(msg.Photo),
	}

	w.pipeline.Process(ctx, ev)
}

// deleteServiceMessage removes join/leave notices to keep monitored channels
// clean. Failures are logged and dropped; the notice is cosmetic.
func (w *Watcher) deleteServiceMessage(ctx context.Context, msg *models.Message) {
	if err := w.actions.DeleteMessage(ctx, msg.Chat.ID, msg.ID); err != nil {
		w.logger.WarnContext(ctx, "Failed to delete service message",
			"chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
		return
	}
	w.logger.DebugContext(ctx, "Deleted service message", "chat_id", msg.Chat.ID, "message_id", msg.ID)
}

func isServiceMessage(msg *models.Message) bool {
	return len(msg.NewChatMembers) > 0 || msg.LeftChatMember != nil
}

func senderIdentity(msg *models.Message) *model.Identity {
	if msg.From == nil {
		return nil
	}
	id := model.NewIdentity(msg.From.FirstName, msg.From.LastName, msg.From.Username, msg.From.ID)
	return &id
}

// messageText merges text and caption so a photo caption is still covered by
// the text signal.
func messageText(msg *models.Message) string {
	switch {
	case msg.Text != "" && msg.Caption != "":
		return msg.Text + " " + msg.Caption
	case msg.Text != "":
		return msg.Text
	default:
		return msg.Caption
	}
}

// bestPhoto picks the highest-resolution size variant.
func bestPhoto(sizes []models.PhotoSize) *model.PhotoRef {
	if len(sizes) == 0 {
		return nil
	}

	best := sizes[0]
	for _, p := range sizes[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return &model.PhotoRef{
		FileID:       best.FileID,
		FileUniqueID: best.FileUniqueID,
		Width:        best.Width,
		Height:       best.Height,
	}
}
