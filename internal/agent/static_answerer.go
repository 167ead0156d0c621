package agent

import (
	"context"
	"strings"
)

// StaticAnswerer answers with the best retrieved document. It is used when
// no answering collaborator is configured.
type StaticAnswerer struct{}

// Answer returns the first document's text, or a polite refusal.
func (StaticAnswerer) Answer(_ context.Context, req AnswerRequest) (string, error) {
	if len(req.Documents) == 0 {
		return fallbackAnswer, nil
	}
	d := req.Documents[0]
	return strings.TrimSpace(d.Title + ". " + d.Text), nil
}
