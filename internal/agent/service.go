package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/krea02/ai-agent-demo/internal/dialogue"
	"github.com/krea02/ai-agent-demo/internal/domain"
	"github.com/krea02/ai-agent-demo/internal/knowledge"
	"github.com/krea02/ai-agent-demo/internal/store"
)

// Deps are the collaborators of a Service. Store, Retriever and Answerer are
// required; Transcriber and Synthesizer may be nil when audio is not served.
type Deps struct {
	Store       store.SessionStore
	Retriever   *knowledge.Retriever
	Answerer    Answerer
	Transcriber Transcriber
	Synthesizer Synthesizer
	Log         ConversationLogger
	Logger      *slog.Logger
}

// Service runs turns against stored sessions.
type Service struct {
	cfg     Config
	store   store.SessionStore
	docs    *knowledge.Retriever
	answer  Answerer
	stt     Transcriber
	tts     Synthesizer
	log     ConversationLogger
	logger  *slog.Logger
	machine *dialogue.Machine
	locks   *keyedMutex
	now     func() time.Time
}

// NewService creates a service.
func NewService(cfg Config, deps Deps) (*Service, error) {
	if deps.Store == nil || deps.Retriever == nil || deps.Answerer == nil {
		return nil, errors.New("agent: store, retriever and answerer are required")
	}
	if cfg.HistoryLimit < 0 {
		cfg.HistoryLimit = 0
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	log := deps.Log
	if log == nil {
		log = noopConversationLogger{}
	}
	return &Service{
		cfg:     cfg,
		store:   deps.Store,
		docs:    deps.Retriever,
		answer:  deps.Answerer,
		stt:     deps.Transcriber,
		tts:     deps.Synthesizer,
		log:     log,
		logger:  logger,
		machine: dialogue.NewMachine(logger),
		locks:   newKeyedMutex(),
		now:     time.Now,
	}, nil
}

// TurnOptions modify a single turn.
type TurnOptions struct {
	// Speak asks for the reply to be synthesized as audio.
	Speak bool
	// Channel labels the transport in the conversation log.
	Channel string
}

// HandleTurn applies one text utterance to the session stored under key.
// When it returns an error the stored session is unchanged.
func (s *Service) HandleTurn(ctx context.Context, key, utterance string, opts TurnOptions) (*TurnResult, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyUtterance
	}
	unlock := s.locks.Lock(key)
	defer unlock()
	return s.turn(ctx, key, utterance, opts)
}

// HandleAudioTurn transcribes audio and runs the transcript as a turn.
func (s *Service) HandleAudioTurn(ctx context.Context, key string, audio []byte, opts TurnOptions) (*TurnResult, error) {
	if s.stt == nil {
		return nil, fmt.Errorf("%w: no transcriber configured", ErrCollaboratorUnavailable)
	}
	text, err := s.stt.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("%w: transcribe: %w", ErrCollaboratorUnavailable, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTranscript
	}
	unlock := s.locks.Lock(key)
	defer unlock()
	return s.turn(ctx, key, text, opts)
}

func (s *Service) turn(ctx context.Context, key, utterance string, opts TurnOptions) (*TurnResult, error) {
	now := s.now()
	stored, err := store.GetOrNew(ctx, s.store, key, now)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess := stored.Clone()

	step, err := s.machine.Step(sess, utterance)
	if err != nil {
		return nil, fmt.Errorf("dialogue step: %w", err)
	}

	res := &TurnResult{Transcript: utterance, Reply: step.Reply}
	switch step.Kind {
	case dialogue.KindPrompt:
		res.Premium = &PendingPremium{
			VehicleAge:  step.Draft.VehicleAge,
			Horsepower:  step.Draft.Horsepower,
			City:        step.Draft.City,
			Coverage:    step.Draft.Coverage,
			PendingSlot: step.Pending,
			Pending:     true,
		}
	case dialogue.KindQuote:
		res.PremiumResult = step.Quote
	case dialogue.KindAnswer:
		reply, ids, err := s.answerQuestion(ctx, sess, utterance)
		if err != nil {
			return nil, err
		}
		if step.FollowUp != "" {
			reply = strings.TrimSpace(reply) + " " + step.FollowUp
		}
		res.Reply = reply
		res.RAGDocs = ids
	}

	if opts.Speak {
		audio, err := s.synthesize(ctx, res.Reply)
		if err != nil {
			return nil, err
		}
		res.Audio = audio
	}

	sess.Append(domain.RoleUser, utterance, now)
	sess.Append(domain.RoleAssistant, res.Reply, now)
	sess.UpdatedAt = now
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logTurn(key, opts.Channel, utterance, res, step)
	s.logger.Info("turn handled",
		"session_id", key,
		"kind", step.Kind.String(),
		"intent", step.Intent.String(),
		"state", sess.State.Kind(),
		"reset", step.Reset,
	)
	return res, nil
}

// answerQuestion builds the answering request from the transcript before
// the current turn. sess is not modified.
func (s *Service) answerQuestion(ctx context.Context, sess *domain.Session, utterance string) (string, []string, error) {
	docs := s.docs.RetrieveOrFirst(utterance, s.cfg.TopK)

	history := sess.History(s.cfg.HistoryLimit)
	msgs := make([]domain.Message, 0, len(history)+2)
	msgs = append(msgs, domain.Message{Role: domain.RoleSystem, Content: systemPrompt})
	msgs = append(msgs, history...)
	msgs = append(msgs, domain.Message{Role: domain.RoleUser, Content: utterance})

	reply, err := s.answer.Answer(ctx, AnswerRequest{Messages: msgs, Documents: docs})
	if err != nil {
		return "", nil, fmt.Errorf("%w: answer: %w", ErrCollaboratorUnavailable, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = fallbackAnswer
	}
	return reply, knowledge.IDs(docs), nil
}

func (s *Service) synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.tts == nil {
		return nil, fmt.Errorf("%w: no synthesizer configured", ErrCollaboratorUnavailable)
	}
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: synthesize: %w", ErrCollaboratorUnavailable, err)
	}
	return audio, nil
}

// Speak synthesizes text outside of a turn.
func (s *Service) Speak(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyUtterance
	}
	return s.synthesize(ctx, text)
}

// ResetSession forgets the session. Resetting an unknown session succeeds.
func (s *Service) ResetSession(ctx context.Context, key string) error {
	unlock := s.locks.Lock(key)
	defer unlock()
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	s.log.Log(ConversationLogEvent{
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
		SessionID: key,
		Channel:   "api",
		EventType: "session_reset",
	})
	return nil
}

// Transcript returns the stored conversation for key, oldest first.
func (s *Service) Transcript(ctx context.Context, key string) ([]domain.Message, error) {
	sess, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess.Transcript, nil
}

// Ping checks the session store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Close flushes the conversation log.
func (s *Service) Close() error {
	return s.log.Close()
}

func (s *Service) logTurn(key, channel, utterance string, res *TurnResult, step dialogue.Result) {
	if channel == "" {
		channel = "api"
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)
	s.log.Log(ConversationLogEvent{
		Timestamp:  ts,
		SessionID:  key,
		Channel:    channel,
		Direction:  "inbound",
		EventType:  "user_message",
		ContentRaw: utterance,
		Content:    cleanForReadability(utterance),
	})
	meta := map[string]any{"kind": step.Kind.String(), "intent": step.Intent.String()}
	if res.PremiumResult != nil {
		meta["annual"] = res.PremiumResult.Annual
		meta["coverage_level"] = res.PremiumResult.Coverage
	}
	if len(res.RAGDocs) > 0 {
		meta["rag_docs"] = res.RAGDocs
	}
	s.log.Log(ConversationLogEvent{
		Timestamp:  ts,
		SessionID:  key,
		Channel:    channel,
		Direction:  "outbound",
		EventType:  "assistant_message",
		ContentRaw: res.Reply,
		Content:    cleanForReadability(res.Reply),
		Meta:       meta,
	})
}

// keyedMutex serializes work per key. Entries are dropped when unused.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyLock)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
