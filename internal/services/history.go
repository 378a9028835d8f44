package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/resonata/resonata-api/internal/models"
)

// HistoryRecorder persists one row per generation request
type HistoryRecorder interface {
	Record(ctx context.Context, entry *models.GenerationLog) error
}

// NopHistory is used when no database is configured
type NopHistory struct{}

func (NopHistory) Record(context.Context, *models.GenerationLog) error { return nil }

// HistoryService stores generation logs in postgres
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// Record logs a finished or failed generation
func (s *HistoryService) Record(ctx context.Context, entry *models.GenerationLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// Stats aggregates generation history between from and to; zero times are open bounds
func (s *HistoryService) Stats(ctx context.Context, from, to time.Time) (*HistoryStats, error) {
	var stats HistoryStats

	query := s.db.WithContext(ctx).Model(&models.GenerationLog{})
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Select(
		"COUNT(*) as total_requests",
		"COUNT(*) FILTER (WHERE error <> '') as failed_requests",
		"COALESCE(AVG(elapsed_ms), 0) as avg_elapsed_ms",
		"COALESCE(AVG(duration_seconds), 0) as avg_duration_seconds",
	).Scan(&stats).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		PlanSource string
		Count      int64
	}
	if err := query.
		Select("plan_source, COUNT(*) as count").
		Group("plan_source").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	stats.PlanSources = make(map[string]int64, len(rows))
	for _, r := range rows {
		stats.PlanSources[r.PlanSource] = r.Count
	}
	return &stats, nil
}

type HistoryStats struct {
	TotalRequests      int64            `json:"total_requests"`
	FailedRequests     int64            `json:"failed_requests"`
	AvgElapsedMs       float64          `json:"avg_elapsed_ms"`
	AvgDurationSeconds float64          `json:"avg_duration_seconds"`
	PlanSources        map[string]int64 `json:"plan_sources"`
}
