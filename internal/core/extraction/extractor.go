package extraction

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/sokotally-be/internal/core/llm"
)

// Invoker is the completion capability the extractors need. *llm.Service satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, userMessage, systemPrompt string, history []llm.Message) (*llm.Completion, error)
}

// Extractor turns a message into a normalized candidate
type Extractor struct {
	invoker Invoker
}

// NewExtractor creates an extractor. A nil invoker runs the heuristic path only.
func NewExtractor(invoker Invoker) *Extractor {
	return &Extractor{invoker: invoker}
}

// Extract never fails. Any model error or unusable reply is logged and the
// message goes through the heuristic extractor instead. No conversation
// history is sent so the result depends only on the message.
func (e *Extractor) Extract(ctx context.Context, message string) Candidate {
	raw, source := e.extractRaw(ctx, message)
	c := ApplyHeuristics(message, Normalize(raw))
	c.Source = source
	return c
}

func (e *Extractor) extractRaw(ctx context.Context, message string) (RawCandidate, Source) {
	if e.invoker == nil {
		return ExtractFallback(message), SourceFallback
	}

	completion, err := e.invoker.Invoke(ctx, message, ExtractionPrompt, nil)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ LLM extraction failed, using heuristic extractor")
		return ExtractFallback(message), SourceFallback
	}

	reply := ParseReply(completion.Reply)
	if reply.Kind == ReplyFallback {
		log.Warn().
			Err(reply.Reason).
			Str("model", completion.Model).
			Msg("⚠️ LLM extraction reply unusable, using heuristic extractor")
		return ExtractFallback(message), SourceFallback
	}
	return reply.Raw, SourceLLM
}
