package spam

import (
	"strings"

	"github.com/edgard/spamwatch/internal/model"
	"github.com/edgard/spamwatch/internal/text"
)

// Verdict is the result of classifying one message. FiredSignal is empty
// when the message is not spam; when several signals fire it reports the
// first by precedence: name, text-substring, text-exact, photo.
type Verdict struct {
	IsSpam      bool
	FiredSignal Signal
}

// Classifier evaluates messages against a rule set. Patterns are normalized
// once at construction; Classify itself is pure and safe for concurrent use.
type Classifier struct {
	nameRules     []string
	textSubRules  []string
	textExact     map[string]struct{}
	photoSubRules []string
}

// NewClassifier builds a Classifier from rs, normalizing every pattern with
// the mode its signal is matched under. Name and text-substring patterns
// have their internal whitespace stripped so a rule authored as "dm for"
// matches "d m f o r".
func NewClassifier(rs *RuleSet) *Classifier {
	c := &Classifier{
		nameRules:     make([]string, 0, len(rs.Name)),
		textSubRules:  make([]string, 0, len(rs.TextSubstring)),
		textExact:     make(map[string]struct{}, len(rs.TextExact)),
		photoSubRules: make([]string, 0, len(rs.Photo)),
	}

	for _, p := range rs.Name {
		if n := text.Normalize(p, text.Loose); n != "" {
			c.nameRules = append(c.nameRules, n)
		}
	}
	for _, p := range rs.TextSubstring {
		if n := text.Normalize(p, text.Loose); n != "" {
			c.textSubRules = append(c.textSubRules, n)
		}
	}
	for _, p := range rs.TextExact {
		if n := text.Normalize(p, text.LooseWithSpace); n != "" {
			c.textExact[n] = struct{}{}
		}
	}
	for _, p := range rs.Photo {
		if n := text.Normalize(p, text.LooseWithSpace); n != "" {
			c.photoSubRules = append(c.photoSubRules, n)
		}
	}

	return c
}

// Classify evaluates all three signals independently and returns spam if any
// one fires. It is total: absent fields degrade to "not spam" for their
// signal, and it never errors.
func (c *Classifier) Classify(msg *model.Message) Verdict {
	name := c.checkName(msg.Sender.DisplayName)
	textSignal, textHit := c.checkText(msg.Text)
	photo := c.checkPhoto(msg.PhotoText)

	v := Verdict{IsSpam: name || textHit || photo}
	switch {
	case name:
		v.FiredSignal = SignalName
	case textHit:
		v.FiredSignal = textSignal
	case photo:
		v.FiredSignal = SignalPhoto
	}
	return v
}

func (c *Classifier) checkName(displayName string) bool {
	normalized := text.Normalize(displayName, text.Loose)
	if normalized == "" {
		return false
	}
	for _, rule := range c.nameRules {
		if strings.Contains(normalized, rule) {
			return true
		}
	}
	return false
}

func (c *Classifier) checkText(msgText string) (Signal, bool) {
	normalized := text.Normalize(msgText, text.Loose)
	if normalized != "" {
		for _, rule := range c.textSubRules {
			if strings.Contains(normalized, rule) {
				return SignalTextSubstring, true
			}
		}
	}

	// Exact rules match only when the phrase is the entire trimmed message;
	// substring matching here would false-positive on longer texts.
	exact := text.Normalize(msgText, text.LooseWithSpace)
	if exact != "" {
		if _, ok := c.textExact[exact]; ok {
			return SignalTextExact, true
		}
	}

	return "", false
}

func (c *Classifier) checkPhoto(photoText string) bool {
	if photoText == "" {
		return false
	}
	normalized := text.Normalize(photoText, text.LooseWithSpace)
	for _, rule := range c.photoSubRules {
		if strings.Contains(normalized, rule) {
			return true
		}
	}
	return false
}
