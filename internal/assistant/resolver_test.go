package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"replify_backend/platform/logger"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
	turns []Turn
}

func (f *fakeGenerator) Generate(_ context.Context, _ string, turns []Turn) (string, error) {
	f.calls++
	f.turns = turns
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestResolver(gen Generator) *Resolver {
	return NewResolver(NewDetector(testTriggers), gen, logger.New("test"))
}

func TestResolver_TriggerPhraseShortCircuits(t *testing.T) {
	gen := &fakeGenerator{reply: "should never be used"}
	r := newTestResolver(gen)

	out := r.Resolve(context.Background(), "I want to speak to a manager", BusinessProfile{Name: "Shop"}, nil)

	if !out.Escalate {
		t.Fatalf("expected escalation")
	}
	if out.Reply != HandoffMessage {
		t.Fatalf("expected handoff message, got %q", out.Reply)
	}
	if out.Reason != "trigger_phrase" {
		t.Fatalf("expected trigger_phrase reason, got %q", out.Reason)
	}
	if gen.calls != 0 {
		t.Fatalf("generator must not be invoked on trigger match, got %d calls", gen.calls)
	}
}

func TestResolver_SentinelDiscardsGeneratedText(t *testing.T) {
	gen := &fakeGenerator{reply: "Hmm, NEEDS_HUMAN I think"}
	r := newTestResolver(gen)

	out := r.Resolve(context.Background(), "do you ship to Mars?", BusinessProfile{Name: "Shop"}, nil)

	if !out.Escalate {
		t.Fatalf("expected escalation on sentinel")
	}
	if out.Reply != HandoffMessage {
		t.Fatalf("generated text must be discarded, got %q", out.Reply)
	}
	if out.Reason != "model_sentinel" {
		t.Fatalf("expected model_sentinel reason, got %q", out.Reason)
	}
}

func TestResolver_GenerationFailureIsNotEscalation(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("timeout")}
	r := newTestResolver(gen)

	out := r.Resolve(context.Background(), "hello", BusinessProfile{Name: "Shop"}, nil)

	if out.Escalate {
		t.Fatalf("generation failure must not escalate")
	}
	if out.Reply != ApologyMessage {
		t.Fatalf("expected apology message, got %q", out.Reply)
	}
}

func TestResolver_HappyPathTrimsAndAppendsInboundTurn(t *testing.T) {
	gen := &fakeGenerator{reply: "  We have it in 50ml for R320.  "}
	r := newTestResolver(gen)

	history := []Turn{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "Hi! How can I help?"},
	}
	out := r.Resolve(context.Background(), "price of citrus bloom?", BusinessProfile{Name: "Shop"}, history)

	if out.Escalate {
		t.Fatalf("unexpected escalation")
	}
	if out.Reply != "We have it in 50ml for R320." {
		t.Fatalf("expected trimmed reply, got %q", out.Reply)
	}
	if len(gen.turns) != 3 {
		t.Fatalf("expected history plus inbound turn, got %d turns", len(gen.turns))
	}
	last := gen.turns[len(gen.turns)-1]
	if last.Content != "price of citrus bloom?" || !strings.EqualFold(string(last.Role), "user") {
		t.Fatalf("inbound message must be the final user turn, got %+v", last)
	}
}
