package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/spam"
)

// ErrAdminSender is the skip sentinel returned by Assemble when the sender
// is on the admin allowlist. Admins are fully exempt: no message record is
// built, no classification runs, no side effects happen.
var ErrAdminSender = errors.New("sender is on the admin allowlist")

// Event is the tagged inbound-message variant built once at ingestion.
// Photo is nil for text-only messages, so nothing downstream needs to probe
// the raw update shape again.
type Event struct {
	ChatID    int64
	MessageID int
	Date      int64
	Text      string
	Sender    model.Identity
	Photo     *model.PhotoRef
}

// MediaDownloader fetches photo bytes for an inbound message.
type MediaDownloader interface {
	DownloadPhoto(ctx context.Context, fileID string) ([]byte, error)
}

// Recognizer extracts text from a photo.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Pipeline assembles inbound events into message records, classifies them,
// and hands spam verdicts to the orchestrator. One pipeline instance is
// shared across events; it holds no per-event state.
type Pipeline struct {
	classifier   *spam.Classifier
	orchestrator *Orchestrator
	downloader   MediaDownloader
	recognizer   Recognizer
	admins       map[int64]struct{}
	mediaDir     string
	logger       *slog.Logger
}

// NewPipeline creates a Pipeline and ensures the media directory exists.
func NewPipeline(
	classifier *spam.Classifier,
	orchestrator *Orchestrator,
	downloader MediaDownloader,
	recognizer Recognizer,
	adminIDs []int64,
	mediaDir string,
	logger *slog.Logger,
) (*Pipeline, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory %s: %w", mediaDir, err)
	}

	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return &Pipeline{
		classifier:   classifier,
		orchestrator: orchestrator,
		downloader:   downloader,
		recognizer:   recognizer,
		admins:       admins,
		mediaDir:     mediaDir,
		logger:       logger.With("component", "pipeline"),
	}, nil
}

// Process runs one inbound event through assemble, classify, and, on a spam
// verdict, the moderation orchestrator. It never returns an error: a single
// malformed or adversarial message must not take down the host process.
func (p *Pipeline) Process(ctx context.Context, ev Event) {
	msg, err := p.Assemble(ctx, ev)
	if err != nil {
		// Admin senders are silently exempt.
		return
	}

	verdict := p.classifier.Classify(msg)
	if !verdict.IsSpam {
		p.logger.DebugContext(ctx, "Message passed classification",
			"chat_id", ev.ChatID, "message_id", ev.MessageID, "user_id", msg.Sender.NumericID)
		return
	}

	p.logger.InfoContext(ctx, "Spam detected",
		"chat_id", ev.ChatID, "message_id", ev.MessageID,
		"user_id", msg.Sender.NumericID, "signal", verdict.FiredSignal)
	p.orchestrator.Moderate(ctx, ev, msg, verdict)
}

// Assemble builds the immutable message record for an event. It returns
// ErrAdminSender for allowlisted senders before doing any work. Photo
// download, artifact persistence, and OCR failures are substituted with an
// error marker in PhotoText rather than propagated, so the message stays
// classifiable on the name and text signals.
func (p *Pipeline) Assemble(ctx context.Context, ev Event) (*model.Message, error) {
	if _, ok := p.admins[ev.Sender.NumericID]; ok {
		return nil, ErrAdminSender
	}

	msg := &model.Message{
		Text:      ev.Text,
		Timestamp: ev.Date,
		Sender:    ev.Sender,
	}

	if ev.Photo != nil {
		msg.PhotoArtifactPath = filepath.Join(p.mediaDir,
			fmt.Sprintf("Photo_%s-%d_%d.png", ev.Sender.NameSlug, ev.Sender.NumericID, ev.Date))
		msg.PhotoText = p.extractPhotoText(ctx, ev, msg.PhotoArtifactPath)
	}

	return msg, nil
}

func (p *Pipeline) extractPhotoText(ctx context.Context, ev Event, artifactPath string) string {
	data, err := p.downloader.DownloadPhoto(ctx, ev.Photo.FileID)
	if err != nil {
		p.logger.WarnContext(ctx, "Photo download failed, substituting error marker",
			"file_id", ev.Photo.FileID, "error", err)
		return errorMarker(ev.Photo)
	}

	if err := os.WriteFile(artifactPath, data, 0o644); err != nil {
		p.logger.WarnContext(ctx, "Failed to persist photo artifact, substituting error marker",
			"path", artifactPath, "error", err)
		return errorMarker(ev.Photo)
	}

	recognized, err := p.recognizer.Recognize(ctx, data)
	if err != nil {
		p.logger.WarnContext(ctx, "OCR failed, substituting error marker",
			"file_id", ev.Photo.FileID, "error", err)
		return errorMarker(ev.Photo)
	}
	return recognized
}

func errorMarker(photo *model.PhotoRef) string {
	return "[ERROR] " + photo.Describe()
}
