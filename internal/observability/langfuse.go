package observability

import (
	"context"
	"log"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"

	"github.com/resonata/resonata-api/internal/config"
)

// LangfuseClient wraps the Langfuse client with our configuration
type LangfuseClient struct {
	client  *langfuse.Langfuse
	enabled bool
}

// InitializeLangfuse creates the client; the SDK reads LANGFUSE_* from the environment
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" || cfg.LangfusePublicKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or keys not set)")
		return &LangfuseClient{}
	}
	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	return &LangfuseClient{client: langfuse.New(ctx), enabled: true}
}

// IsEnabled returns whether Langfuse is enabled
func (c *LangfuseClient) IsEnabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// GuidanceTrace describes one guidance provider call
type GuidanceTrace struct {
	Provider     string
	Model        string
	Composer     string
	Mood         string
	Band         string
	SystemPrompt string
	UserPrompt   string
	Output       string
	InputTokens  int64
	OutputTokens int64
	Started      time.Time
	Err          error
}

// TraceGuidance records a guidance call as a trace with one generation
func (c *LangfuseClient) TraceGuidance(ctx context.Context, t GuidanceTrace) {
	if !c.IsEnabled() {
		return
	}

	trace, err := c.client.Trace(&model.Trace{
		Name: "guidance.plan",
		Metadata: map[string]interface{}{
			"composer": t.Composer,
			"mood":     t.Mood,
			"band":     t.Band,
		},
		Tags: []string{t.Provider},
	})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return
	}

	start := t.Started
	end := time.Now()
	cost := CalculateCost(t.Model, t.InputTokens, t.OutputTokens)
	gen := &model.Generation{
		TraceID:   trace.ID,
		Name:      t.Provider + ".generate",
		Model:     t.Model,
		StartTime: &start,
		EndTime:   &end,
		Input: []map[string]string{
			{"role": "system", "content": t.SystemPrompt},
			{"role": "user", "content": t.UserPrompt},
		},
		Output: t.Output,
		Usage: model.Usage{
			Input:     int(t.InputTokens),
			Output:    int(t.OutputTokens),
			Total:     int(t.InputTokens + t.OutputTokens),
			Unit:      model.ModelUsageUnitTokens,
			TotalCost: cost,
		},
		Metadata: map[string]interface{}{"cost_usd": FormatCost(cost)},
	}
	if t.Err != nil {
		gen.Level = model.ObservationLevelError
		gen.StatusMessage = t.Err.Error()
	}

	if _, err := c.client.Generation(gen, nil); err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return
	}
	c.client.Flush(ctx)
}
