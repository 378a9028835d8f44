package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiProvider_Name(t *testing.T) {
	provider := &GeminiProvider{client: nil}
	assert.Equal(t, "gemini", provider.Name())
}

func TestGeminiProvider_BuildContents(t *testing.T) {
	provider := &GeminiProvider{client: nil}

	tests := []struct {
		name       string
		inputArray []map[string]any
		wantLen    int
	}{
		{"single user message", []map[string]any{{"role": "user", "content": "test content"}}, 1},
		{"developer role converted to user", []map[string]any{{"role": "developer", "content": "system message"}}, 1},
		{"invalid message skipped", []map[string]any{{"role": "user", "content": "valid"}, {"role": "user"}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contents := provider.buildGeminiContents(tt.inputArray)
			assert.Len(t, contents, tt.wantLen)
			for _, content := range contents {
				assert.Equal(t, "user", content.Role)
				assert.NotEmpty(t, content.Parts)
			}
		})
	}
}

func TestGeminiSchema(t *testing.T) {
	schema, err := SchemaFor[testPlan]()
	require.NoError(t, err)

	gs := geminiSchema(schema)
	require.NotNil(t, gs)
	assert.Equal(t, genai.TypeObject, gs.Type)
	require.Contains(t, gs.Properties, "sections")
	assert.Equal(t, genai.TypeArray, gs.Properties["sections"].Type)
	assert.Equal(t, genai.TypeObject, gs.Properties["sections"].Items.Type)
	assert.Equal(t, genai.TypeInteger, gs.Properties["tempoBPM"].Type)
	assert.Nil(t, geminiSchema(nil))
}

func TestGeminiConfig(t *testing.T) {
	schema, err := SchemaFor[testPlan]()
	require.NoError(t, err)
	provider := &GeminiProvider{}

	cfg := provider.buildConfig(&GenerationRequest{SystemPrompt: "sys", OutputSchema: &OutputSchema{Name: "p", Schema: schema}})
	assert.Equal(t, mimeTypeJSON, cfg.ResponseMIMEType)
	assert.NotNil(t, cfg.ResponseSchema)
	assert.Equal(t, "sys", cfg.SystemInstruction.Parts[0].Text)
}

func TestResponseText(t *testing.T) {
	_, err := responseText(&genai.GenerateContentResponse{})
	assert.Error(t, err)

	text, err := responseText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "```json\n{\"key\":"}, {Text: "\"D minor\"}```"}}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"key":"D minor"}`, text)
}

func TestNewGeminiProvider_InvalidKey(t *testing.T) {
	provider, err := NewGeminiProvider(context.Background(), "invalid-key")
	if err != nil {
		assert.Error(t, err)
	} else {
		assert.Equal(t, "gemini", provider.Name())
	}
}
