package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonata/resonata-api/internal/config"
	"github.com/resonata/resonata-api/internal/guidance"
	"github.com/resonata/resonata-api/internal/kv"
	"github.com/resonata/resonata-api/internal/ratelimit"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/services"
	"github.com/resonata/resonata-api/internal/storage"
	"github.com/resonata/resonata-api/internal/style"
	"github.com/resonata/resonata-api/internal/theory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *storage.Stats) {
	t.Helper()
	cfg := &config.Config{
		Environment:       "test",
		GuidanceProvider:  "none",
		GuidanceTimeout:   time.Second,
		MinPieceSeconds:   30,
		MaxPieceSeconds:   45,
		RateLimitRequests: 20,
		RateLimitWindow:   time.Minute,
		AuthMode:          "gateway",
	}
	profiles, err := style.LoadDefault()
	require.NoError(t, err)

	store := kv.NewMemory()
	stats := storage.NewStats(store)
	pieces := storage.NewPieceStore(store, time.Hour)
	observer := services.NewPipelineObserver(stats, nil)
	planner := guidance.NewPlanner(guidance.PlannerOptions{
		Profiles:   profiles,
		Cache:      storage.NewPlanCache(store, time.Hour),
		Observer:   observer,
		MinSeconds: cfg.MinPieceSeconds,
		MaxSeconds: cfg.MaxPieceSeconds,
	})
	composition := services.NewCompositionService(services.CompositionOptions{
		Profiles:  profiles,
		Planner:   planner,
		Assembler: score.NewAssembler(cfg.MinPieceSeconds, cfg.MaxPieceSeconds),
		Pieces:    pieces,
		Stats:     stats,
	})

	router := SetupRouter(Dependencies{
		Config:      cfg,
		Version:     "test",
		Composition: composition,
		Profiles:    profiles,
		Pieces:      pieces,
		Stats:       stats,
		Limiter:     ratelimit.New(store, cfg.RateLimitRequests, cfg.RateLimitWindow),
		Observer:    observer,
	})
	return router, stats
}

func do(r *gin.Engine, method, path string, body any, user string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateAndDownload(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/generate", map[string]any{
		"composer": "chopin", "mood": "melancholic", "innovationLevel": 0.2, "seed": 7,
	}, "alice")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success         bool    `json:"success"`
		PieceID         string  `json:"pieceId"`
		Seed            int64   `json:"seed"`
		Key             string  `json:"key"`
		Tempo           int     `json:"tempo"`
		DurationSeconds float64 `json:"durationSeconds"`
		PlanSource      string  `json:"planSource"`
		MIDIPath        string  `json:"midiPath"`
		Sections        []struct {
			Name         string `json:"name"`
			OpeningPitch string `json:"openingPitch"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(7), resp.Seed)
	assert.Equal(t, "local", resp.PlanSource)
	assert.Len(t, resp.Sections, 4)
	for _, sec := range resp.Sections {
		pitch, err := theory.NoteNameToMIDI(sec.OpeningPitch)
		require.NoError(t, err, "section %s opening pitch %q", sec.Name, sec.OpeningPitch)
		assert.GreaterOrEqual(t, pitch, theory.MiddleC, "right hand starts at or above middle C")
	}
	assert.GreaterOrEqual(t, resp.DurationSeconds, 30.0)
	assert.LessOrEqual(t, resp.DurationSeconds, 45.0)
	assert.Equal(t, "/api/pieces/"+resp.PieceID+"/midi", resp.MIDIPath)

	w = do(r, http.MethodGet, resp.MIDIPath, nil, "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/midi", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resonata-chopin-melancholic-")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("MThd")))

	w = do(r, http.MethodGet, "/api/pieces", nil, "alice")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), resp.PieceID)

	w = do(r, http.MethodGet, "/api/pieces", nil, "bob")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), resp.PieceID)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestGenerateErrors(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{"missing innovation", map[string]any{"composer": "chopin", "mood": "serene"}, http.StatusBadRequest},
		{"innovation out of range", map[string]any{"composer": "chopin", "mood": "serene", "innovationLevel": 2}, http.StatusBadRequest},
		{"unknown mood", map[string]any{"composer": "chopin", "mood": "angry", "innovationLevel": 0.5}, http.StatusBadRequest},
		{"unknown composer", map[string]any{"composer": "mozart", "mood": "serene", "innovationLevel": 0.5}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/generate", tt.body, tt.name)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}

	w := do(r, http.MethodGet, "/api/pieces/does-not-exist/midi", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/pieces?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitRejectsTwentyFirstRequest(t *testing.T) {
	r, stats := newTestRouter(t)

	// invalid bodies still count against the window
	for i := 0; i < 20; i++ {
		w := do(r, http.MethodPost, "/api/generate", map[string]any{}, "carol")
		require.Equal(t, http.StatusBadRequest, w.Code, "request %d", i+1)
	}

	w := do(r, http.MethodPost, "/api/generate", map[string]any{
		"composer": "chopin", "mood": "serene", "innovationLevel": 0.5,
	}, "carol")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// another client is unaffected
	w = do(r, http.MethodPost, "/api/generate", map[string]any{}, "dave")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/analytics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Counters map[string]int64 `json:"counters"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(1), body.Counters[storage.CounterRateLimited])
	assert.Equal(t, int64(0), body.Counters[storage.CounterGenerations], "nothing was generated")
	_ = stats
}

func TestStyleEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/composers", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"chopin"`)
	assert.Contains(t, w.Body.String(), "melancholic")

	w = do(r, http.MethodGet, "/api/style-profile?composer=Chopin", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "D minor")

	w = do(r, http.MethodGet, "/api/style-profile?composer=mozart", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/style-profile", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"provider":"local"`)

	w = do(r, http.MethodGet, "/api/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uptime"`)
	assert.Contains(t, w.Body.String(), `"guidance"`)
}
