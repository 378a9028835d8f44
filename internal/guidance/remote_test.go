package guidance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonata/resonata-api/internal/llm"
	"github.com/resonata/resonata-api/internal/models"
)

type mockLLM struct {
	name         string
	lastRequest  *llm.GenerationRequest
	generateFunc func(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error)
}

func (m *mockLLM) Name() string {
	return m.name
}

func (m *mockLLM) Generate(ctx context.Context, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	m.lastRequest = request
	return m.generateFunc(ctx, request)
}

type tokenObserver struct {
	recordingObserver
	input, output int64
}

func (o *tokenObserver) TokenUsage(_ context.Context, _, _ string, in, out int64) {
	o.input, o.output = in, out
}

func TestRemoteProviderPlans(t *testing.T) {
	client := &mockLLM{name: "openai", generateFunc: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
		return &llm.GenerationResponse{RawOutput: validPayload, Usage: llm.Usage{InputTokens: 400, OutputTokens: 120}}, nil
	}}
	obs := &tokenObserver{}
	p, err := NewRemoteProvider(client, "", nil, obs)
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	plan, err := p.Plan(context.Background(), chopinInput(t))
	require.NoError(t, err)
	assert.Equal(t, "openai", plan.Source)
	assert.False(t, plan.CreatedAt.IsZero())
	assert.Len(t, plan.Sections, 4)

	req := client.lastRequest
	require.NotNil(t, req)
	assert.Equal(t, llm.DefaultOpenAIModel, req.Model)
	require.NotNil(t, req.OutputSchema)
	assert.Equal(t, planSchemaName, req.OutputSchema.Name)
	assert.Contains(t, req.OutputSchema.Schema.Properties, "sections")
	assert.Contains(t, req.SystemPrompt, "45")
	require.Len(t, req.InputArray, 1)
	user, _ := req.InputArray[0]["content"].(string)
	assert.Contains(t, user, "Chopin")
	assert.Contains(t, user, "melancholic")

	assert.Equal(t, int64(400), obs.input)
	assert.Equal(t, int64(120), obs.output)
}

func TestRemoteProviderErrors(t *testing.T) {
	failing := &mockLLM{name: "gemini", generateFunc: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
		return nil, errors.New("503 service unavailable")
	}}
	p, err := NewRemoteProvider(failing, "gemini-2.5-flash", nil, nil)
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), chopinInput(t))
	assert.ErrorIs(t, err, models.ErrGuidanceUnavailable)
	assert.Equal(t, "gemini-2.5-flash", failing.lastRequest.Model)

	melodic := &mockLLM{name: "openai", generateFunc: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
		return &llm.GenerationResponse{RawOutput: `{"key":"D minor","tempoBPM":70,"sections":[],"melody":[62,64,65]}`}, nil
	}}
	p, err = NewRemoteProvider(melodic, "", nil, nil)
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), chopinInput(t))
	assert.ErrorIs(t, err, models.ErrInvalidGuidancePayload)

	_, err = p.Plan(context.Background(), PlanInput{})
	assert.ErrorIs(t, err, models.ErrGuidanceUnavailable)
}
