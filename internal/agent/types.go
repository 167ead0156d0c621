// Package agent runs customer turns: it serializes them per session, drives
// the dialogue machine, calls the external collaborators and commits the
// session only when the whole turn succeeded.
package agent

import (
	"errors"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/pricing"
)

var (
	// ErrEmptyUtterance is returned for a turn with no text.
	ErrEmptyUtterance = errors.New("empty utterance")
	// ErrEmptyTranscript is returned when transcription produced no text.
	ErrEmptyTranscript = errors.New("empty transcript")
	// ErrCollaboratorUnavailable wraps failures of the answering,
	// transcription and synthesis collaborators.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
)

// PendingPremium describes a draft that still needs input.
type PendingPremium struct {
	VehicleAge  *int            `json:"vehicle_age,omitempty"`
	Horsepower  *int            `json:"horsepower,omitempty"`
	City        string          `json:"city,omitempty"`
	Coverage    domain.Coverage `json:"coverage_level,omitempty"`
	PendingSlot domain.Slot     `json:"pending_slot"`
	Pending     bool            `json:"pending"`
}

// TurnResult is the reply to one turn. At most one of Premium,
// PremiumResult and RAGDocs is set, depending on which path answered.
type TurnResult struct {
	Transcript    string          `json:"transcript"`
	Reply         string          `json:"reply"`
	Premium       *PendingPremium `json:"premium,omitempty"`
	PremiumResult *pricing.Quote  `json:"premium_result,omitempty"`
	RAGDocs       []string        `json:"rag_docs,omitempty"`
	Audio         []byte          `json:"audio,omitempty"`
}

// Config tunes the service.
type Config struct {
	// HistoryLimit caps the transcript messages sent to the answerer.
	HistoryLimit int
	// TopK is the number of documents retrieved per question.
	TopK int
}

// DefaultConfig returns default service configuration.
func DefaultConfig() Config {
	return Config{
		HistoryLimit: 8,
		TopK:         3,
	}
}

// systemPrompt instructs the answering collaborator.
const systemPrompt = "Ste prijazen asistent zavarovalnice za avtomobilska zavarovanja. " +
	"Odgovarjajte kratko in v slovenščini, samo na podlagi priloženih dokumentov. " +
	"Premij ne izračunavajte sami; za izračun naj stranka navede starost avta, moč motorja in kritje."

const fallbackAnswer = "Na to vprašanje žal nimam odgovora. Lahko pa vam izračunam informativno premijo."
