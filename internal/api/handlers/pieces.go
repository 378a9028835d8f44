package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/api/middleware"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/storage"
)

var unsafeFilename = regexp.MustCompile(`[^a-z0-9]+`)

type PiecesHandler struct {
	pieces *storage.PieceStore
}

func NewPiecesHandler(pieces *storage.PieceStore) *PiecesHandler {
	return &PiecesHandler{pieces: pieces}
}

// DownloadMIDI returns a stored piece as a Standard MIDI File attachment
func (h *PiecesHandler) DownloadMIDI(c *gin.Context) {
	piece, err := h.pieces.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename(piece)))
	c.Data(http.StatusOK, midiContentType, piece.MIDI)
}

// List returns the caller's recent pieces, newest first
func (h *PiecesHandler) List(c *gin.Context) {
	limit := defaultPieceListSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, fmt.Errorf("%w: limit must be a positive integer", models.ErrInvalidRequest))
			return
		}
		limit = min(n, maxPieceListSize)
	}

	clientID, _ := middleware.GetClientID(c)
	pieces, err := h.pieces.ListByClient(c.Request.Context(), clientID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if pieces == nil {
		pieces = []models.Piece{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pieces":  pieces,
		"count":   len(pieces),
	})
}

func filename(p *models.Piece) string {
	base := strings.Trim(unsafeFilename.ReplaceAllString(strings.ToLower(p.Composer+"-"+string(p.Mood)), "-"), "-")
	if base == "" {
		base = "piece"
	}
	short := p.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("resonata-%s-%s.mid", base, short)
}
