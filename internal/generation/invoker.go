package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/danadoen/nusaai/internal/domain"
	"github.com/danadoen/nusaai/internal/infra"
	"github.com/danadoen/nusaai/internal/infra/metrics"
	"github.com/danadoen/nusaai/internal/providers/genai"
)

// EmptyResponseText is returned when the provider answers with no content.
const EmptyResponseText = "No response generated."

const defaultImageMIME = "image/png"

// Backend performs the provider call.
type Backend interface {
	Generate(ctx context.Context, apiKey string, req genai.Request) (*genai.Response, error)
}

// Models names the provider models used per request kind.
type Models struct {
	Text        string
	Image       string
	AspectRatio string
}

// Invoker runs admission, key resolution, the provider call and usage
// accounting for one request.
type Invoker struct {
	gate       *Gate
	keys       *KeyResolver
	accountant *Accountant
	backend    Backend
	models     Models
	metrics    *metrics.Recorder
	logger     infra.Logger
}

// InvokerDeps groups the collaborators of an Invoker.
type InvokerDeps struct {
	Gate       *Gate
	Keys       *KeyResolver
	Accountant *Accountant
	Backend    Backend
	Models     Models
	Metrics    *metrics.Recorder
	Logger     infra.Logger
}

func NewInvoker(deps InvokerDeps) *Invoker {
	return &Invoker{
		gate:       deps.Gate,
		keys:       deps.Keys,
		accountant: deps.Accountant,
		backend:    deps.Backend,
		models:     deps.Models,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Models returns the configured model names.
func (inv *Invoker) Models() Models {
	return inv.models
}

// Generate authorizes the caller, resolves a key and calls the provider.
// Usage is recorded only after the provider call succeeded.
func (inv *Invoker) Generate(ctx context.Context, caller domain.Caller, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := inv.gate.Authorize(ctx, caller); err != nil {
		return nil, err
	}

	cred, err := inv.keys.Resolve(ctx, caller)
	if err != nil {
		return nil, err
	}

	providerReq := inv.providerRequest(req)
	start := time.Now()
	resp, err := inv.backend.Generate(ctx, cred.Key, providerReq)
	if err != nil {
		if genai.IsInvalidKey(err) {
			inv.metrics.Generation(string(req.Kind), "invalid_key", time.Since(start))
			inv.logger.Warn().Err(err).Str("key_source", cred.Source).Msg("provider rejected api key")
			return nil, fmt.Errorf("%w: %s key rejected", domain.ErrInvalidCredential, cred.Source)
		}
		inv.metrics.Generation(string(req.Kind), "provider_error", time.Since(start))
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderFailure, err)
	}
	inv.metrics.Generation(string(req.Kind), "ok", time.Since(start))

	result := normalize(req.Kind, resp)

	if err := inv.accountant.RecordUsage(ctx, caller); err != nil {
		inv.logger.Error().
			Err(err).
			Str("user_id", caller.UserID).
			Str("guest_id", caller.GuestID).
			Msg("record usage failed")
	}

	inv.logger.Info().
		Str("kind", string(req.Kind)).
		Str("model", providerReq.Model).
		Str("key_source", cred.Source).
		Str("result", string(result.Kind)).
		Dur("elapsed", time.Since(start)).
		Msg("generation completed")

	return result, nil
}

func (inv *Invoker) providerRequest(req Request) genai.Request {
	switch req.Kind {
	case KindTextWithImage:
		parts := []genai.Part{{InlineData: &genai.InlineData{MIMEType: req.Image.MIMEType, Data: req.Image.Data}}}
		if strings.TrimSpace(req.Prompt) != "" {
			parts = append(parts, genai.Part{Text: req.Prompt})
		}
		return genai.Request{Model: inv.models.Text, Parts: parts}
	case KindImageGeneration:
		return genai.Request{
			Model:       inv.models.Image,
			Parts:       []genai.Part{{Text: req.Prompt}},
			AspectRatio: inv.models.AspectRatio,
		}
	default:
		model := req.Model
		if model == "" {
			model = inv.models.Text
		}
		return genai.Request{Model: model, Parts: []genai.Part{{Text: req.Prompt}}}
	}
}

// normalize inspects the returned parts. Image generation that yields no
// image part falls back to the text answer.
func normalize(kind RequestKind, resp *genai.Response) *Result {
	if kind == KindImageGeneration {
		if img := resp.FirstImage(); img != nil {
			mime := img.MIMEType
			if mime == "" {
				mime = defaultImageMIME
			}
			return &Result{Kind: ResultImage, Image: &InlineImage{MIMEType: mime, Data: img.Data}}
		}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		text = EmptyResponseText
	}
	return &Result{Kind: ResultText, Text: text}
}
