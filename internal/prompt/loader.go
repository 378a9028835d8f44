package prompt

import (
	"strings"

	"github.com/resonata/resonata-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetSystemPrompt loads the guidance system prompt template
func (l *Loader) GetSystemPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.GuidanceSystemPromptTxt)), nil
}

// GetUserPrompt loads the per-request guidance prompt template
func (l *Loader) GetUserPrompt() (string, error) {
	return strings.TrimSpace(string(embedded.GuidanceUserPromptTxt)), nil
}
