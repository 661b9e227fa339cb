// Package responder builds classification prompts for batches of social-media
// posts, submits them to a hosted generation model, and returns the model's
// streamed reply as a single trimmed string. The reply is not parsed here;
// consumers own parsing and validation.
package responder

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Request is a single-turn generation request.
type Request struct {
	Model  string
	Prompt string
	Params GenerationParams
	Safety SafetyPolicy
}

// Generator submits a request to a remote generation service and exposes the
// reply as a finite, non-restartable sequence of text chunks. A non-nil error
// ends the sequence.
type Generator interface {
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
}

// Responder pairs a Generator with the process-wide generation and safety
// settings. It holds no mutable state and is safe for concurrent use.
type Responder struct {
	gen    Generator
	model  string
	params GenerationParams
	safety SafetyPolicy
	logger *slog.Logger
}

// New resolves cfg once and returns a Responder bound to gen. cfg must be finalized.
func New(cfg *Config, gen Generator, logger *slog.Logger) *Responder {
	return &Responder{
		gen:    gen,
		model:  cfg.Model,
		params: cfg.Params(),
		safety: cfg.Policy(),
		logger: logger.With("system", "responder"),
	}
}

// Model returns the model name requests are sent to.
func (r *Responder) Model() string {
	return r.model
}

// Classify sends the classification prompt for posts and blocks until the reply
// stream is exhausted. A reply with no chunks yields an empty string. Any
// failure from the remote service is returned wrapped in ErrRemoteService.
func (r *Responder) Classify(ctx context.Context, posts []PostRecord) (string, error) {
	return r.respond(ctx, "classify", ComposePrompt(posts), len(posts))
}

// Summarize sends the issue summary prompt for posts under the same contract as Classify.
func (r *Responder) Summarize(ctx context.Context, posts []SummaryPost) (string, error) {
	return r.respond(ctx, "summarize", ComposeSummaryPrompt(posts), len(posts))
}

func (r *Responder) respond(ctx context.Context, op, prompt string, count int) (string, error) {
	start := time.Now()

	text, err := Collect(r.gen.Stream(ctx, r.request(prompt)))
	if err != nil {
		r.logger.ErrorContext(
			ctx, "generation failed",
			"op", op,
			"posts", count,
			"error", err,
		)
		return "", fmt.Errorf("%w: %s: %w", ErrRemoteService, op, err)
	}

	r.logger.InfoContext(
		ctx, "generation complete",
		"op", op,
		"posts", count,
		"bytes", len(text),
		"duration", time.Since(start),
	)

	return text, nil
}

func (r *Responder) request(prompt string) Request {
	return Request{
		Model:  r.model,
		Prompt: prompt,
		Params: r.params,
		Safety: r.safety,
	}
}

// Collect drains seq, concatenating chunks in arrival order, and returns the
// result with surrounding whitespace trimmed. The first error ends collection
// and no partial text is returned.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for chunk, err := range seq {
		if err != nil {
			return "", err
		}
		sb.WriteString(chunk)
	}
	return strings.TrimSpace(sb.String()), nil
}
