package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/style"
)

type StyleHandler struct {
	profiles *style.Store
}

func NewStyleHandler(profiles *style.Store) *StyleHandler {
	return &StyleHandler{profiles: profiles}
}

// GetProfile returns one composer's style profile (?composer=chopin)
func (h *StyleHandler) GetProfile(c *gin.Context) {
	composer := c.Query("composer")
	if composer == "" {
		respondError(c, fmt.Errorf("%w: composer query parameter is required", models.ErrInvalidRequest))
		return
	}
	profile, err := h.profiles.Profile(composer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"profile": profile,
		"summary": style.Summary(profile),
	})
}

type ComposerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Era  string `json:"era,omitempty"`
}

// ListComposers returns every composer with a style profile, plus the accepted moods
func (h *StyleHandler) ListComposers(c *gin.Context) {
	ids := h.profiles.List()
	composers := make([]ComposerInfo, 0, len(ids))
	for _, id := range ids {
		p, err := h.profiles.Profile(id)
		if err != nil {
			continue
		}
		composers = append(composers, ComposerInfo{ID: id, Name: p.DisplayName, Era: p.Era})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"composers": composers,
		"moods":     models.Moods,
	})
}
