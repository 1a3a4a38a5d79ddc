package spam_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/spam"
)

func newTestClassifier(t *testing.T) *spam.Classifier {
	t.Helper()
	return spam.NewClassifier(spam.DefaultRuleSet())
}

func TestClassifyTextSubstring(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	msg := &model.Message{
		Text:   "please dm me for slots",
		Sender: model.NewIdentity("John", "Smith", "jsmith", 100),
	}

	v := c.Classify(msg)
	require.True(t, v.IsSpam)
	assert.Equal(t, spam.SignalTextSubstring, v.FiredSignal)
}

func TestClassifyName(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	msg := &model.Message{
		Text:   "hello, how are you",
		Sender: model.NewIdentity("Slot Agency", "Official", "", 101),
	}

	v := c.Classify(msg)
	require.True(t, v.IsSpam)
	assert.Equal(t, spam.SignalName, v.FiredSignal)
}

func TestClassifyNameDiacritics(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	tests := []struct {
		name        string
		displayName string
	}{
		{"plain", "Travel Agency"},
		{"uppercase", "TRAVEL AGENCY"},
		{"accented", "Travel Agéncy"},
		{"spaced out", "A g e n c y Support"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := &model.Message{
				Text:   "hi",
				Sender: model.Identity{DisplayName: tt.displayName, NumericID: 1},
			}
			v := c.Classify(msg)
			assert.True(t, v.IsSpam, "display name %q should fire the name signal", tt.displayName)
			assert.Equal(t, spam.SignalName, v.FiredSignal)
		})
	}
}

func TestClassifyWhitespaceObfuscation(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	texts := []string{
		"D M   For slots today",
		"d\nm\nfor bookings",
		"D M F O R confirmation",
	}
	for _, txt := range texts {
		msg := &model.Message{Text: txt, Sender: model.Identity{DisplayName: "John Smith"}}
		v := c.Classify(msg)
		assert.True(t, v.IsSpam, "text %q should fire the text-substring signal", txt)
		assert.Equal(t, spam.SignalTextSubstring, v.FiredSignal)
	}
}

func TestClassifyExactRuleRequiresWholeMessage(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	whole := &model.Message{Text: "Slots   Available", Sender: model.Identity{DisplayName: "John Smith"}}
	v := c.Classify(whole)
	require.True(t, v.IsSpam)
	assert.Equal(t, spam.SignalTextExact, v.FiredSignal)

	longer := &model.Message{Text: "slots available next week", Sender: model.Identity{DisplayName: "John Smith"}}
	v = c.Classify(longer)
	assert.False(t, v.IsSpam, "exact rule must not match as a substring of a longer message")
}

func TestClassifyPhotoText(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	spammy := &model.Message{
		Text:              "look at this",
		PhotoArtifactPath: "media/Photo_x_1.png",
		PhotoText:         "contact on\nWhatsApp  for 100% GENUINE slots",
		Sender:            model.Identity{DisplayName: "John Smith"},
	}
	v := c.Classify(spammy)
	require.True(t, v.IsSpam)
	assert.Equal(t, spam.SignalPhoto, v.FiredSignal)

	clean := &model.Message{
		Text:              "holiday picture",
		PhotoArtifactPath: "media/Photo_y_2.png",
		PhotoText:         "sunset over the lake",
		Sender:            model.Identity{DisplayName: "John Smith"},
	}
	assert.False(t, c.Classify(clean).IsSpam)
}

func TestClassifyAbsentPhotoText(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	msg := &model.Message{Text: "hello there", Sender: model.Identity{DisplayName: "John Smith"}}
	v := c.Classify(msg)
	assert.False(t, v.IsSpam)
	assert.Empty(t, v.FiredSignal)
}

func TestClassifyIsPure(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	msg := &model.Message{
		Text:      "please dm me for slots",
		PhotoText: "whatsapp",
		Sender:    model.NewIdentity("Slot Agency", "", "slots", 7),
	}

	first := c.Classify(msg)
	second := c.Classify(msg)
	assert.Equal(t, first, second)
}

func TestClassifySignalPrecedence(t *testing.T) {
	t.Parallel()
	c := newTestClassifier(t)

	// All three signals fire; name wins for reporting.
	msg := &model.Message{
		Text:              "dm me",
		PhotoArtifactPath: "media/p.png",
		PhotoText:         "whatsapp",
		Sender:            model.Identity{DisplayName: "Slot Agency"},
	}
	v := c.Classify(msg)
	require.True(t, v.IsSpam)
	assert.Equal(t, spam.SignalName, v.FiredSignal)
}
