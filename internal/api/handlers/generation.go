package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/api/middleware"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/score"
	"github.com/resonata/resonata-api/internal/services"
	"github.com/resonata/resonata-api/internal/theory"
)

type GenerationHandler struct {
	service *services.CompositionService
}

func NewGenerationHandler(service *services.CompositionService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

type GenerateRequest struct {
	Composer        string   `json:"composer" binding:"required"`
	Mood            string   `json:"mood" binding:"required"`
	InnovationLevel *float64 `json:"innovationLevel" binding:"required"`
	Seed            *int64   `json:"seed"` // Optional seed for reproducibility
}

type SectionSummary struct {
	Name             models.SectionName `json:"name"`
	Measures         int                `json:"measures"`
	StartSeconds     float64            `json:"startSeconds"`
	DurationSeconds  float64            `json:"durationSeconds"`
	Contour          models.Contour     `json:"contour"`
	HarmonicTemplate []string           `json:"harmonicTemplate"`
	Notes            int                `json:"notes"`
	OpeningPitch     string             `json:"openingPitch,omitempty"` // first right-hand note, e.g. "A4"
}

type GenerateResponse struct {
	Success         bool             `json:"success"`
	RequestID       string           `json:"requestId,omitempty"`
	PieceID         string           `json:"pieceId"`
	Title           string           `json:"title"`
	Seed            int64            `json:"seed"`
	Key             string           `json:"key"`
	Tempo           int              `json:"tempo"`
	DurationSeconds float64          `json:"durationSeconds"`
	PlanSource      string           `json:"planSource"`
	Sections        []SectionSummary `json:"sections"`
	MIDIPath        string           `json:"midiPath"`
}

// Generate composes one piece and returns its summary and download path
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %s", models.ErrInvalidRequest, err.Error()))
		return
	}

	clientID, _ := middleware.GetClientID(c)
	result, err := h.service.Compose(c.Request.Context(), models.GenerationRequest{
		ComposerID:      req.Composer,
		Mood:            models.Mood(req.Mood),
		InnovationLevel: *req.InnovationLevel,
		Seed:            req.Seed,
		ClientID:        clientID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	piece := result.Score
	sections := make([]SectionSummary, len(piece.Sections))
	for i, s := range piece.Sections {
		sections[i] = SectionSummary{
			Name:             s.Plan.Name,
			Measures:         s.Plan.Measures,
			StartSeconds:     score.Seconds(s.StartBeats, piece.TempoBPM),
			DurationSeconds:  score.Seconds(s.DurationBeats, piece.TempoBPM),
			Contour:          s.Plan.Contour,
			HarmonicTemplate: s.Plan.HarmonicTemplate,
			Notes:            len(s.RightHand),
		}
		if len(s.RightHand) > 0 {
			sections[i].OpeningPitch = theory.MIDIToNoteName(s.RightHand[0].MidiNoteNumber)
		}
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Success:         true,
		RequestID:       c.GetString("request_id"),
		PieceID:         result.PieceID,
		Title:           piece.Title,
		Seed:            result.Seed,
		Key:             piece.Key,
		Tempo:           piece.TempoBPM,
		DurationSeconds: piece.DurationSeconds,
		PlanSource:      result.PlanSource,
		Sections:        sections,
		MIDIPath:        fmt.Sprintf("/api/pieces/%s/midi", result.PieceID),
	})
}
