// Package model defines the immutable records that flow through the
// moderation pipeline: sender identities, assembled messages, and the
// addressable sender reference used by ban and report actions.
package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// Identity carries the display-oriented sender metadata attached to a message.
// It is built once per inbound message and never mutated.
type Identity struct {
	DisplayName string
	Handle      string
	NumericID   int64
	NameSlug    string
}

// NewIdentity builds an Identity from raw sender fields. The slug is the
// display name with every non-alphanumeric rune replaced by a hyphen, used
// for deterministic artifact file names.
func NewIdentity(firstName, lastName, username string, id int64) Identity {
	parts := make([]string, 0, 2)
	if firstName != "" {
		parts = append(parts, firstName)
	}
	if lastName != "" {
		parts = append(parts, lastName)
	}
	displayName := strings.Join(parts, " ")

	return Identity{
		DisplayName: displayName,
		Handle:      username,
		NumericID:   id,
		NameSlug:    nonAlphanumeric.ReplaceAllString(displayName, "-"),
	}
}

// PhotoRef describes photo media carried by an inbound message. A nil
// *PhotoRef means the message is text-only; the distinction is decided once
// at ingestion and never re-probed downstream.
type PhotoRef struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Describe returns a serialized form of the media descriptor, used in the
// OCR error marker.
func (p *PhotoRef) Describe() string {
	b, err := json.Marshal(p)
	if err != nil {
		return p.FileID
	}
	return string(b)
}

// Message is the assembled message record handed to classification.
// PhotoArtifactPath is set iff the source update carried a photo; PhotoText
// is set only after an OCR attempt (a failed attempt stores an error marker).
// The record is immutable once classification begins.
type Message struct {
	Text              string
	Timestamp         int64
	PhotoArtifactPath string
	PhotoText         string
	Sender            Identity
}

// HasPhoto reports whether the source update carried photo media.
func (m *Message) HasPhoto() bool {
	return m.PhotoArtifactPath != ""
}

// ResolvedSender is an addressable reference usable by ban and report
// actions, distinct from Identity. It is resolved per moderation attempt and
// never cached across messages.
type ResolvedSender struct {
	UserID int64
	Handle string
	Status string
}
