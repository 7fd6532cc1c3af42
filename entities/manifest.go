package entities

import (
	"time"

	"github.com/google/uuid"
)

// SegmentRef points at one uploaded audio segment. List order is the
// authoritative transcription order.
type SegmentRef struct {
	Key         string  `json:"key"`
	Mime        string  `json:"mime"`
	Duration    float64 `json:"duration"`
	OffsetLabel string  `json:"offsetLabel"`
}

// Manifest is the immutable description of a submitted job: metadata plus the
// ordered segment list. Written once at intake, re-read by the worker.
type Manifest struct {
	JobID         uuid.UUID    `json:"job_id" gorm:"type:uuid;primary_key"`
	UserEmail     string       `json:"user_email" gorm:"type:varchar(255);not null;index:idx_job_manifests_user_email"`
	Title         string       `json:"title" gorm:"type:varchar(255)"`
	Author        string       `json:"author" gorm:"type:varchar(255)"`
	Date          string       `json:"date" gorm:"type:varchar(50)"`
	Category      string       `json:"category" gorm:"type:varchar(100)"`
	Type          string       `json:"type" gorm:"type:varchar(50)"`
	TotalDuration string       `json:"total_duration" gorm:"type:varchar(20)"`
	Speakers      []string     `json:"speakers" gorm:"serializer:json"`
	Keywords      []string     `json:"keywords" gorm:"serializer:json"`
	Segments      []SegmentRef `json:"segments" gorm:"serializer:json;not null"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (Manifest) TableName() string {
	return "job_manifests"
}
