// Package model defines the data entities shared across the
// orchestrator, analyzers, and arbitrator: disruptions, threads, analyzer
// responses, collations, conflicts, recovery plans and solutions,
// arbitrator output, checkpoints, and decision records. Each type
// provides a validating constructor plus an explicit Validate() that
// returns violations rather than panicking, per the module's "no runtime
// schema library" design note.
package model

import (
	"fmt"
	"strings"
)

const (
	MinDisruptionLength = 10
	MaxDisruptionLength = 10000
)

// sanitizeChars strips characters that would otherwise let the raw
// disruption text interfere with prompt templating or HTML rendering.
var sanitizeChars = strings.NewReplacer("<", "", ">", "", "{", "", "}", "")

// Disruption is the sanitized natural-language input plus an optional
// continuation id for multi-turn sessions.
type Disruption struct {
	Text           string
	ContinuationID string
}

// NewDisruption validates length and sanitizes text, returning an error
// if the raw input violates the length constraints.
func NewDisruption(rawText, continuationID string) (*Disruption, error) {
	if len(rawText) < MinDisruptionLength || len(rawText) > MaxDisruptionLength {
		return nil, fmt.Errorf("disruption text length %d outside [%d,%d]", len(rawText), MinDisruptionLength, MaxDisruptionLength)
	}
	return &Disruption{
		Text:           sanitizeChars.Replace(rawText),
		ContinuationID: continuationID,
	}, nil
}

// Validate returns any violations in the disruption (used when a
// Disruption is reconstructed off the wire rather than via NewDisruption).
func (d *Disruption) Validate() []string {
	var v []string
	if len(d.Text) < MinDisruptionLength || len(d.Text) > MaxDisruptionLength {
		v = append(v, fmt.Sprintf("text length %d outside [%d,%d]", len(d.Text), MinDisruptionLength, MaxDisruptionLength))
	}
	if strings.ContainsAny(d.Text, "<>{}") {
		v = append(v, "text contains unsanitized characters")
	}
	return v
}
