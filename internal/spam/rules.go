// Package spam implements the rule-based spam detection used by the
// moderation pipeline. A RuleSet holds static substring and exact-match
// patterns partitioned by signal; a Classifier evaluates an assembled message
// against the set and returns a verdict. Rule sets are immutable after load
// and safe for unsynchronized concurrent reads.
package spam

import (
	"encoding/json"
	"fmt"
	"os"
)

// Signal identifies one of the independent spam-detection channels.
type Signal string

const (
	SignalName          Signal = "name"
	SignalTextSubstring Signal = "text-substring"
	SignalTextExact     Signal = "text-exact"
	SignalPhoto         Signal = "photo"
)

// RuleSet holds the four disjoint rule lists. Name and TextSubstring rules
// are matched with whitespace stripped; TextExact rules must equal the whole
// normalized message; Photo rules keep literal spacing because OCR output is
// space-normalized before matching.
type RuleSet struct {
	Name          []string `json:"name"`
	TextSubstring []string `json:"text_substring"`
	TextExact     []string `json:"text_exact"`
	Photo         []string `json:"photo"`
}

// LoadRuleSet reads a rule set from a JSON file.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rs := &RuleSet{}
	if err := json.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rs, nil
}

// DefaultRuleSet returns the compiled-in rule tables.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Name: []string{
			"owl slot",
			"slot agency",
			"agency",
			"check bio",
			"in my bio",
			"slot updates",
		},
		TextSubstring: []string{
			"ping me",
			"dm me",
			"dm for",
			"contact me",
			"pranavforhelp",
			"w h a t s a p p",
			"gwhatsapp",
			"confirmation within",
			"confirmation with in",
			"confirmation in 12",
			"confirmation in 24",
			"confirmation in 48",
			"confirmation in 6",
			"confirmation in 2",
			"1 hour confirmation",
			"very genuine booking",
			"hyderabad mumbai new delhi and chennai",
			"pmfs",
			"he really changed my life",
			"paying after booking only",
		},
		TextExact: []string{
			"slots available",
			"slot available",
			"payment after booking",
		},
		Photo: []string{
			"ping me",
			"dm me",
			"contact me",
			"w h a t s a p p",
			"whatsapp",
			"confirmation within",
			"confirmation with in",
			"paying after booking only",
			"confirmation in 12",
			"confirmation in 24",
			"confirmation in 48",
			"confirmation in 6",
			"confirmation in 2",
			"1 hour confirmation",
			"c o n f i r m a t i o n",
			"slot agency",
			"payment after",
			"payment only after",
			"ping me asap",
			"slots available",
			"100% genuine",
			"visa agent",
		},
	}
}
