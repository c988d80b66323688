package chat

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/convodesk/support-engine/internal/compose"
	"github.com/convodesk/support-engine/internal/conversation"
	"github.com/convodesk/support-engine/internal/faq"
	"github.com/convodesk/support-engine/internal/genai"
	"github.com/convodesk/support-engine/internal/guardrail"
	"github.com/convodesk/support-engine/internal/match"
	"github.com/convodesk/support-engine/internal/observability"
)

// Request is one inbound user turn.
type Request struct {
	Message string
	// MessageID is the client-supplied idempotency key; generated when
	// absent.
	MessageID string
	Identity  conversation.Identity
}

// Metadata describes how a response was produced.
type Metadata struct {
	Confidence float64          `json:"confidence"`
	UsedAI     bool             `json:"usedAi"`
	Tier       match.Confidence `json:"tier"`
	Guardrail  guardrail.Reason `json:"guardrail,omitempty"`
}

// Response is the outcome of one handled message. The user always
// receives some text, never a raw error.
type Response struct {
	Text     string   `json:"text"`
	Metadata Metadata `json:"metadata"`
}

// Service is the chat pipeline entry point.
type Service struct {
	logger    zerolog.Logger
	store     *faq.Store
	matcher   match.Matcher
	pipeline  *guardrail.Pipeline
	generator genai.Generator
	deduper   *Deduper
	lock      *conversation.Lock
	history   *conversation.Buffer
	cfg       ServiceConfig
}

// ServiceConfig holds chat pipeline settings.
type ServiceConfig struct {
	// GenerateTimeout bounds the generative call; the conversation lock
	// is never held longer than this.
	GenerateTimeout time.Duration
	// LockWait bounds how long a turn waits for its conversation lock.
	LockWait time.Duration
	// FallbackMessages are returned on provider failure; one is picked
	// at random.
	FallbackMessages []string
	// HistoryTurns is how many buffered turns feed the system context.
	HistoryTurns int
}

// NewService wires the chat pipeline.
func NewService(
	logger zerolog.Logger,
	store *faq.Store,
	matcher match.Matcher,
	pipeline *guardrail.Pipeline,
	generator genai.Generator,
	deduper *Deduper,
	lock *conversation.Lock,
	history *conversation.Buffer,
	cfg ServiceConfig,
) *Service {
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 2 * time.Minute
	}
	if cfg.LockWait <= 0 {
		cfg.LockWait = conversation.DefaultLockTTL
	}
	if len(cfg.FallbackMessages) == 0 {
		cfg.FallbackMessages = guardrail.DefaultRules().FallbackMessages
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 6
	}
	return &Service{
		logger:    logger.With().Str("component", "chat").Logger(),
		store:     store,
		matcher:   matcher,
		pipeline:  pipeline,
		generator: generator,
		deduper:   deduper,
		lock:      lock,
		history:   history,
		cfg:       cfg,
	}
}

// HandleMessage runs one turn through the pipeline: dedup, conversation
// lock, guardrails, FAQ matching, tiering, and finally either a direct
// FAQ answer or a generative call.
func (s *Service) HandleMessage(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, faq.ErrValidation
	}
	if req.MessageID == "" {
		req.MessageID = uuid.NewString()
	}

	logger := observability.WithConversation(s.logger, req.Identity.UserID, req.Identity.SessionID).
		With().Str("message_id", req.MessageID).Logger()

	// Dedup first: a replay must short-circuit before any provider call.
	if err := s.deduper.Claim(ctx, req.MessageID); err != nil {
		return nil, err
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.cfg.LockWait)
	defer cancel()
	release, err := s.lock.Acquire(lockCtx, req.Identity)
	if err != nil {
		logger.Warn().Err(err).Msg("Conversation lock not acquired")
		return nil, err
	}
	defer release()

	if decision := s.pipeline.Preprocess(ctx, req.Message, req.Identity); decision != nil {
		resp := &Response{
			Text: decision.Response,
			Metadata: Metadata{
				Tier:      match.ConfidenceNone,
				Guardrail: decision.Reason,
			},
		}
		s.appendHistory(ctx, req, resp.Text)
		return resp, nil
	}

	result := s.findMatch(ctx, req.Message, logger)
	plan := compose.Compose(req.Message, result)

	if plan.SkipAI {
		logger.Info().Float64("score", result.Score).Msg("Direct FAQ answer, generative call skipped")
		resp := &Response{
			Text: plan.DirectResponse,
			Metadata: Metadata{
				Confidence: result.Score,
				Tier:       plan.Tier,
			},
		}
		s.appendHistory(ctx, req, resp.Text)
		return resp, nil
	}

	text := s.generate(ctx, req, plan, logger)
	resp := &Response{
		Text: text,
		Metadata: Metadata{
			Confidence: result.Score,
			UsedAI:     true,
			Tier:       plan.Tier,
		},
	}
	s.appendHistory(ctx, req, resp.Text)
	return resp, nil
}

// findMatch runs the matcher unless the message is conversational
// filler, too short and vague, or a contextual follow-up.
func (s *Service) findMatch(ctx context.Context, message string, logger zerolog.Logger) match.Result {
	switch {
	case guardrail.IsGeneric(message):
		logger.Debug().Msg("Generic message, skipping FAQ search")
		return match.NoMatch()
	case guardrail.IsContextualFollowUp(message):
		logger.Debug().Msg("Contextual follow-up, deferring to conversation history")
		return match.NoMatch()
	case s.pipeline.IsShortVague(message):
		logger.Debug().Msg("Short vague message, skipping FAQ search")
		return match.NoMatch()
	}

	records := s.store.Load(ctx)
	result, err := s.matcher.Match(ctx, message, records)
	if err != nil {
		logger.Warn().Err(err).Msg("Matcher failed, continuing without FAQ context")
		return match.NoMatch()
	}
	return result
}

// generate calls the provider with a bounded deadline and falls back to
// a canned message on failure. The conversation lock is released by the
// caller's defer on every path.
func (s *Service) generate(ctx context.Context, req Request, plan compose.Plan, logger zerolog.Logger) string {
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.GenerateTimeout)
	defer cancel()

	text, err := s.generator.Generate(genCtx, s.systemContext(ctx, req, plan), req.Message)
	if err != nil {
		logger.Error().Err(err).Msg("Generative call failed, using fallback response")
		return s.cfg.FallbackMessages[rand.Intn(len(s.cfg.FallbackMessages))]
	}
	return text
}

// systemContext assembles the FAQ context and recent conversation turns
// for the generative call.
func (s *Service) systemContext(ctx context.Context, req Request, plan compose.Plan) string {
	var parts []string
	if plan.FAQContext != "" {
		parts = append(parts, plan.FAQContext)
	}

	if s.history != nil {
		messages, err := s.history.Messages(ctx, req.Identity)
		if err == nil && len(messages) > 0 {
			if len(messages) > s.cfg.HistoryTurns {
				messages = messages[len(messages)-s.cfg.HistoryTurns:]
			}
			var sb strings.Builder
			sb.WriteString("Recent conversation:\n")
			for _, m := range messages {
				sb.WriteString(m.Role)
				sb.WriteString(": ")
				sb.WriteString(m.Content)
				sb.WriteString("\n")
			}
			parts = append(parts, sb.String())
		}
	}

	return strings.Join(parts, "\n\n")
}

// appendHistory records the turn. Best effort: a failed write never
// fails the request that produced it.
func (s *Service) appendHistory(ctx context.Context, req Request, reply string) {
	if s.history == nil {
		return
	}
	err := s.history.Append(ctx, req.Identity,
		conversation.Message{Role: "user", Content: req.Message},
		conversation.Message{Role: "assistant", Content: reply},
	)
	if err != nil {
		s.logger.Warn().Err(err).Msg("History append failed")
	}
}
