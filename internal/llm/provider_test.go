package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name         string
	generateFunc func(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Generate(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, request)
	}
	return &GenerationResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	var p Provider = &MockProvider{
		name: "mock",
		generateFunc: func(_ context.Context, r *GenerationRequest) (*GenerationResponse, error) {
			return &GenerationResponse{RawOutput: `{"key":"D minor"}`, Model: r.Model}, nil
		},
	}
	resp, err := p.Generate(context.Background(), &GenerationRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
	assert.Equal(t, "m", resp.Model)
}

func TestProviderFactory(t *testing.T) {
	ctx := context.Background()

	f := NewProviderFactory("sk-test", "")
	p, err := f.GetProvider(ctx, "", "openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	p, err = f.GetProvider(ctx, "gpt-5-mini", "")
	require.NoError(t, err)
	assert.Equal(t, "openai", p.Name())

	_, err = f.GetProvider(ctx, "gemini-2.5-flash", "")
	assert.ErrorContains(t, err, "gemini API key not configured")

	_, err = f.GetProvider(ctx, "", "anthropic")
	assert.ErrorContains(t, err, "unknown provider")

	_, err = NewProviderFactory("", "").GetProvider(ctx, "", "openai")
	assert.Error(t, err)
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, DefaultGeminiModel, DefaultModel("Gemini"))
	assert.Equal(t, DefaultOpenAIModel, DefaultModel("openai"))
	assert.Equal(t, DefaultOpenAIModel, DefaultModel(""))
}
