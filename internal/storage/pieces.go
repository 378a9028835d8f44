package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/resonata/resonata-api/internal/kv"
	"github.com/resonata/resonata-api/internal/models"
)

const (
	piecePrefix  = "piece"
	clientPrefix = "client"
)

// PieceStore keeps rendered pieces for download until they expire
type PieceStore struct {
	store kv.Store
	ttl   time.Duration
}

// NewPieceStore creates a piece store with the given retention
func NewPieceStore(store kv.Store, ttl time.Duration) *PieceStore {
	return &PieceStore{store: store, ttl: ttl}
}

// Save writes the piece and an index entry (without the MIDI body) for its client
func (s *PieceStore) Save(ctx context.Context, piece *models.Piece) error {
	raw, err := msgpack.Marshal(piece)
	if err != nil {
		return fmt.Errorf("encode piece: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, kv.Key{piecePrefix, piece.ID}, raw, s.ttl); err != nil {
		return fmt.Errorf("save piece: %w", err)
	}
	if piece.ClientID == "" {
		return nil
	}

	meta := *piece
	meta.MIDI = nil
	raw, err = msgpack.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("encode piece index: %w", err)
	}
	if err := s.store.SetWithTTL(ctx, kv.Key{clientPrefix, piece.ClientID, piece.ID}, raw, s.ttl); err != nil {
		return fmt.Errorf("index piece: %w", err)
	}
	return nil
}

// Get returns a stored piece or ErrPieceNotFound
func (s *PieceStore) Get(ctx context.Context, id string) (*models.Piece, error) {
	raw, err := s.store.Get(ctx, kv.Key{piecePrefix, id})
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrPieceNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load piece: %w", err)
	}
	var piece models.Piece
	if err := msgpack.Unmarshal(raw, &piece); err != nil {
		return nil, fmt.Errorf("decode piece: %w", err)
	}
	return &piece, nil
}

// ListByClient returns the client's pieces newest first, without MIDI bodies
func (s *PieceStore) ListByClient(ctx context.Context, clientID string, limit int) ([]models.Piece, error) {
	var pieces []models.Piece
	for entry, err := range s.store.List(ctx, kv.Key{clientPrefix, clientID}) {
		if err != nil {
			return nil, fmt.Errorf("list pieces: %w", err)
		}
		var p models.Piece
		if err := msgpack.Unmarshal(entry.Value, &p); err != nil {
			return nil, fmt.Errorf("decode piece index: %w", err)
		}
		pieces = append(pieces, p)
	}
	sort.SliceStable(pieces, func(i, j int) bool {
		return pieces[i].CreatedAt.After(pieces[j].CreatedAt)
	})
	if limit > 0 && len(pieces) > limit {
		pieces = pieces[:limit]
	}
	return pieces, nil
}
