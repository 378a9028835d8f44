package models

import (
	"time"

	"gorm.io/gorm"
)

// GenerationLog records one completed (or failed) generation request
type GenerationLog struct {
	ID              string         `gorm:"primaryKey;type:uuid" json:"id"`
	ClientID        string         `gorm:"not null;index" json:"client_id"`
	Composer        string         `gorm:"index" json:"composer"`
	Mood            string         `json:"mood"`
	InnovationLevel float64        `json:"innovation_level"`
	Band            string         `json:"band"`
	Seed            int64          `json:"seed"`
	Key             string         `json:"key"`
	TempoBPM        int            `json:"tempo_bpm"`
	PlanSource      string         `gorm:"index" json:"plan_source"`
	Sections        []SectionPlan  `gorm:"type:jsonb;serializer:json" json:"sections"`
	DurationSeconds float64        `json:"duration_seconds"`
	ElapsedMs       int64          `json:"elapsed_ms"`
	Error           string         `json:"error,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName keeps the table name stable regardless of gorm pluralization
func (GenerationLog) TableName() string {
	return "generation_logs"
}
