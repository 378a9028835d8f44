package handlers

const (
	// Piece listing defaults
	defaultPieceListSize = 20
	maxPieceListSize     = 100

	midiContentType = "audio/midi"
)
