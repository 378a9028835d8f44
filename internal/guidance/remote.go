package guidance

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/resonata/resonata-api/internal/llm"
	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/observability"
	"github.com/resonata/resonata-api/internal/prompt"
	"github.com/resonata/resonata-api/internal/style"
	"github.com/resonata/resonata-api/internal/theory"
)

const planSchemaName = "structural_plan"

// RemoteProvider asks a language model for the plan through structured output
type RemoteProvider struct {
	llm      llm.Provider
	model    string
	prompts  *prompt.Builder
	schema   *jsonschema.Schema
	langfuse *observability.LangfuseClient
	observer Observer
	now      func() time.Time
}

// NewRemoteProvider wraps an LLM provider; langfuse and observer may be nil
func NewRemoteProvider(provider llm.Provider, model string, langfuse *observability.LangfuseClient, observer Observer) (*RemoteProvider, error) {
	schema, err := llm.SchemaFor[planPayload]()
	if err != nil {
		return nil, fmt.Errorf("plan schema: %w", err)
	}
	if model == "" {
		model = llm.DefaultModel(provider.Name())
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &RemoteProvider{
		llm:      provider,
		model:    model,
		prompts:  prompt.NewPromptBuilder(),
		schema:   schema,
		langfuse: langfuse,
		observer: observer,
		now:      time.Now,
	}, nil
}

func (p *RemoteProvider) Name() string {
	return p.llm.Name()
}

// Plan sends mood, innovation level and the composer summary, then validates
// the reply. Transport failures wrap ErrGuidanceUnavailable.
func (p *RemoteProvider) Plan(ctx context.Context, in PlanInput) (*models.StructuralPlan, error) {
	if in.Profile == nil {
		return nil, fmt.Errorf("%w: no profile", models.ErrGuidanceUnavailable)
	}

	span := sentry.StartSpan(ctx, "guidance.remote")
	defer span.Finish()
	span.SetTag("provider", p.llm.Name())
	span.SetTag("composer", in.Profile.ComposerID)
	ctx = span.Context()

	promptIn := prompt.GuidanceInput{
		Profile:    in.Profile,
		Summary:    style.Summary(in.Profile),
		Mood:       in.Mood,
		Innovation: in.Innovation,
		MinSeconds: in.MinSeconds,
		MaxSeconds: in.MaxSeconds,
	}
	systemPrompt, err := p.prompts.BuildSystemPrompt(promptIn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGuidanceUnavailable, err)
	}
	userPrompt, err := p.prompts.BuildUserPrompt(promptIn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrGuidanceUnavailable, err)
	}

	started := p.now()
	resp, err := p.llm.Generate(ctx, &llm.GenerationRequest{
		Model:         p.model,
		SystemPrompt:  systemPrompt,
		InputArray:    []map[string]any{{"role": "user", "content": userPrompt}},
		ReasoningMode: "low",
		OutputSchema: &llm.OutputSchema{
			Name:        planSchemaName,
			Description: "Structural plan of a short solo piano piece, without any notes",
			Schema:      p.schema,
		},
	})

	trace := observability.GuidanceTrace{
		Provider:     p.llm.Name(),
		Model:        p.model,
		Composer:     in.Profile.ComposerID,
		Mood:         string(in.Mood),
		Band:         theory.BandFor(in.Innovation).String(),
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Started:      started,
		Err:          err,
	}
	if resp != nil {
		trace.Output = resp.RawOutput
		trace.InputTokens = resp.Usage.InputTokens
		trace.OutputTokens = resp.Usage.OutputTokens
		p.observer.TokenUsage(ctx, p.llm.Name(), p.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	if p.langfuse.IsEnabled() {
		go p.langfuse.TraceGuidance(context.WithoutCancel(ctx), trace)
	}

	if err != nil {
		span.Status = sentry.SpanStatusUnavailable
		return nil, fmt.Errorf("%w: %s: %w", models.ErrGuidanceUnavailable, p.llm.Name(), err)
	}

	plan, err := ValidatePayload(resp.RawOutput, in)
	if err != nil {
		span.Status = sentry.SpanStatusInvalidArgument
		logger.Debug("Guidance payload rejected", logger.Fields{
			"provider": p.llm.Name(),
			"error":    err.Error(),
		})
		return nil, err
	}
	span.Status = sentry.SpanStatusOK
	plan.Source = p.llm.Name()
	plan.CreatedAt = p.now()
	return plan, nil
}
