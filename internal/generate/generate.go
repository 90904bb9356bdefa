// Package generate defines the contract with the external diagram generation
// service: a prompt goes in, a validated document comes out.
package generate

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/archsketch/engine/internal/diagram"
	"github.com/archsketch/engine/internal/errors"
)

// Request is a generation request.
type Request struct {
	Prompt string `json:"prompt"`
}

// Service produces a document from a prompt.
type Service interface {
	Generate(ctx context.Context, req Request) (diagram.Document, error)
}

// PayloadFunc fetches the raw exchange-format payload for a request.
type PayloadFunc func(ctx context.Context, req Request) ([]byte, error)

// Decoding adapts a PayloadFunc into a Service. Payloads are run through
// diagram.Import, so a Decoding never returns an invalid document.
type Decoding struct {
	Fetch   PayloadFunc
	Timeout time.Duration // zero means no extra deadline
	Logger  *slog.Logger
}

// Generate implements Service. Failures carry one of INVALID_INPUT, TIMEOUT,
// GENERATION_FAILED or INVALID_DOCUMENT.
func (g Decoding) Generate(ctx context.Context, req Request) (diagram.Document, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return diagram.Document{}, errors.New(errors.ErrCodeInvalidInput, "prompt is empty")
	}
	if g.Fetch == nil {
		return diagram.Document{}, errors.New(errors.ErrCodeGeneration, "no generation backend configured")
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	start := time.Now()
	payload, err := g.Fetch(ctx, req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return diagram.Document{}, errors.Wrap(errors.ErrCodeTimeout, err, "generation timed out")
		}
		return diagram.Document{}, errors.Wrap(errors.ErrCodeGeneration, err, "generation failed")
	}
	doc, err := diagram.Import(payload)
	if err != nil {
		return diagram.Document{}, err
	}
	if g.Logger != nil {
		g.Logger.Info("generated diagram",
			"nodes", len(doc.Nodes), "links", len(doc.Links), "containers", len(doc.Containers),
			"elapsed", time.Since(start))
	}
	return doc, nil
}

// Fixed returns a Service that decodes the same payload for every prompt.
// Useful for offline hosts and tests.
func Fixed(payload []byte) Service {
	return Decoding{Fetch: func(context.Context, Request) ([]byte, error) { return payload, nil }}
}
