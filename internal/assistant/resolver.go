package assistant

import (
	"context"
	"strings"

	"replify_backend/internal/conversation/domain"
	"replify_backend/platform/logger"
)

// HandoffMessage is sent to the customer whenever the conversation is handed
// to a human agent.
const HandoffMessage = "I understand — let me connect you with one of our team members who will " +
	"be able to assist you further. Please hold on while we get someone for you 🙏"

// ApologyMessage is sent when generation fails. The conversation stays in the
// normal flow so the customer can retry or self-escalate by keyword.
const ApologyMessage = "Sorry, I'm having a little trouble right now. " +
	"Please try again in a moment or type 'agent' to speak with someone."

// Outcome is the resolved reply for one inbound customer message.
type Outcome struct {
	Reply string
	// Escalate flags the conversation for a human agent.
	Escalate bool
	// Reason annotates the escalation: "trigger_phrase" or "model_sentinel".
	Reason string
}

// Resolver turns an inbound customer message into a reply: trigger phrases
// short-circuit to the hand-off message, otherwise the generator answers from
// the business profile and history. It persists nothing.
type Resolver struct {
	detector *Detector
	gen      Generator
	log      *logger.Logger
}

// NewResolver creates a resolver.
func NewResolver(detector *Detector, gen Generator, log *logger.Logger) *Resolver {
	return &Resolver{detector: detector, gen: gen, log: log}
}

// Resolve produces the reply for one inbound text. History must not include
// the inbound message itself; it is appended here as the final user turn.
func (r *Resolver) Resolve(ctx context.Context, inbound string, profile BusinessProfile, history []Turn) Outcome {
	if r.detector.Detect(inbound) {
		r.log.Info("escalation trigger detected")
		return Outcome{Reply: HandoffMessage, Escalate: true, Reason: "trigger_phrase"}
	}

	turns := make([]Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, Turn{Role: domain.RoleUser, Content: inbound})

	text, err := r.gen.Generate(ctx, BuildSystemInstruction(profile), turns)
	if err != nil {
		r.log.Error("reply generation failed", "error", err.Error())
		return Outcome{Reply: ApologyMessage, Escalate: false}
	}

	if strings.Contains(text, SentinelToken) {
		r.log.Info("model signalled hand-off")
		return Outcome{Reply: HandoffMessage, Escalate: true, Reason: "model_sentinel"}
	}

	return Outcome{Reply: strings.TrimSpace(text), Escalate: false}
}
