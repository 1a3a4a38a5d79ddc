package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/spamwatch/internal/database"
	"github.com/edgard/spamwatch/internal/moderation"
	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/spam"
)

type fakeActions struct {
	calls []string

	deleteErr error
	banErr    error
	reportErr error
	logErr    error

	bannedSender *model.ResolvedSender
	logText      string
}

func (f *fakeActions) DeleteMessage(_ context.Context, _ int64, _ int) error {
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func (f *fakeActions) BanSender(_ context.Context, _ int64, sender *model.ResolvedSender) error {
	f.calls = append(f.calls, "ban")
	f.bannedSender = sender
	return f.banErr
}

func (f *fakeActions) ReportSpam(_ context.Context, _ int64, _ int) error {
	f.calls = append(f.calls, "report")
	return f.reportErr
}

func (f *fakeActions) SendLog(_ context.Context, text string) error {
	f.calls = append(f.calls, "log")
	f.logText = text
	return f.logErr
}

type fakeAuditStore struct {
	saved *database.ModerationEvent
	err   error
}

func (f *fakeAuditStore) SaveModerationEvent(_ context.Context, event *database.ModerationEvent) error {
	f.saved = event
	return f.err
}

func workingDirectory() *fakeDirectory {
	return &fakeDirectory{
		lookupMember: func(_, userID int64) (*model.ResolvedSender, error) {
			return &model.ResolvedSender{UserID: userID, Handle: "spammer", Status: "member"}, nil
		},
		lookupByID: func(userID int64) (*model.ResolvedSender, error) {
			return &model.ResolvedSender{UserID: userID}, nil
		},
	}
}

func deadDirectory() *fakeDirectory {
	return &fakeDirectory{
		lookupMember: func(_, _ int64) (*model.ResolvedSender, error) {
			return nil, errors.New("lookup unavailable")
		},
		lookupByID: func(int64) (*model.ResolvedSender, error) {
			return nil, errors.New("lookup unavailable")
		},
	}
}

func spamEvent() (moderation.Event, *model.Message, spam.Verdict) {
	sender := model.NewIdentity("Slot", "Agency", "slotagency", 777)
	ev := moderation.Event{
		ChatID:    -100123,
		MessageID: 55,
		Date:      1717000000,
		Text:      "dm me for slots",
		Sender:    sender,
	}
	msg := &model.Message{
		Text:      ev.Text,
		Timestamp: ev.Date,
		Sender:    sender,
	}
	return ev, msg, spam.Verdict{IsSpam: true, FiredSignal: spam.SignalTextSubstring}
}

func TestModerateActionOrder(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{}
	store := &fakeAuditStore{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), store, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	assert.Equal(t, []string{"delete", "ban", "report", "log"}, actions.calls)
	require.NotNil(t, actions.bannedSender)
	assert.Equal(t, int64(777), actions.bannedSender.UserID)

	require.NotNil(t, store.saved)
	assert.Equal(t, int64(777), store.saved.UserID)
	assert.Equal(t, "text-substring", store.saved.FiredSignal)
	assert.True(t, store.saved.Banned)
	assert.True(t, store.saved.Reported)
}

func TestModerateDeleteFailureDoesNotStopBan(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{deleteErr: errors.New("message already gone")}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), nil, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	assert.Equal(t, []string{"delete", "ban", "report", "log"}, actions.calls)
}

func TestModerateUnresolvedSenderSkipsBanOnly(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{}
	store := &fakeAuditStore{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(deadDirectory(), discardLogger()), store, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	// Ban is skipped, but report and the audit log still happen.
	assert.Equal(t, []string{"delete", "report", "log"}, actions.calls)
	require.NotNil(t, store.saved)
	assert.False(t, store.saved.Banned)
	assert.True(t, store.saved.Reported)
}

func TestModerateReportFailureStillAudits(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{reportErr: errors.New("forward rejected")}
	store := &fakeAuditStore{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), store, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	assert.Equal(t, []string{"delete", "ban", "report", "log"}, actions.calls)
	require.NotNil(t, store.saved)
	assert.True(t, store.saved.Banned)
	assert.False(t, store.saved.Reported)
}

func TestModerateAuditEntryFormat(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), nil, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	assert.Contains(t, actions.logText, "Time: 2024-05-29T16:26:40Z")
	assert.Contains(t, actions.logText, "User: Slot Agency / slotagency / 777")
	assert.Contains(t, actions.logText, "Message: dm me for slots")
	assert.Contains(t, actions.logText, "Photo: N/A")
	assert.Contains(t, actions.logText, "Action: banned & reported")
}

func TestModerateAuditEntryIncludesPhotoPath(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), nil, discardLogger())

	ev, msg, verdict := spamEvent()
	msg.PhotoArtifactPath = "/var/media/Photo_Slot-Agency-777_1717000000.png"
	o.Moderate(context.Background(), ev, msg, verdict)

	assert.Contains(t, actions.logText, "Photo: /var/media/Photo_Slot-Agency-777_1717000000.png")
}

func TestModerateLogFailureStillPersists(t *testing.T) {
	t.Parallel()

	actions := &fakeActions{logErr: errors.New("log channel unreachable")}
	store := &fakeAuditStore{}
	o := moderation.NewOrchestrator(actions, moderation.NewResolver(workingDirectory(), discardLogger()), store, discardLogger())

	ev, msg, verdict := spamEvent()
	o.Moderate(context.Background(), ev, msg, verdict)

	require.NotNil(t, store.saved)
	assert.Equal(t, "dm me for slots", store.saved.MessageText)
}
