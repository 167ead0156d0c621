package agent

import (
	"context"

	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/knowledge"
)

// AnswerRequest is what the answering collaborator sees: the system
// instruction and recent history as role-tagged messages, ending with the
// current utterance, plus the supporting documents.
type AnswerRequest struct {
	Messages  []domain.Message
	Documents []knowledge.Document
}

// Answerer replies to free-text questions.
type Answerer interface {
	Answer(ctx context.Context, req AnswerRequest) (string, error)
}

// Transcriber turns recorded audio into a single utterance.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer turns reply text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Ensure CollaboratorClient implements every collaborator.
var (
	_ Answerer    = (*CollaboratorClient)(nil)
	_ Transcriber = (*CollaboratorClient)(nil)
	_ Synthesizer = (*CollaboratorClient)(nil)
	_ Answerer    = StaticAnswerer{}
)
