package entities

import (
	"time"

	"github.com/google/uuid"
)

// Meeting is the permanent record produced at job completion: job metadata,
// the full transcript and the normalized minutes. Written exactly once.
type Meeting struct {
	ID            uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	JobID         uuid.UUID   `json:"job_id" gorm:"type:uuid;not null;index:idx_meetings_job_id"`
	UserEmail     string      `json:"user_email" gorm:"type:varchar(255);not null;index:idx_meetings_user_email"`
	Title         string      `json:"title" gorm:"type:varchar(255)"`
	Author        string      `json:"author" gorm:"type:varchar(255)"`
	Date          string      `json:"date" gorm:"type:varchar(50)"`
	Category      string      `json:"category" gorm:"type:varchar(100)"`
	TotalDuration string      `json:"total_duration" gorm:"type:varchar(20)"`
	Speakers      []string    `json:"speakers" gorm:"serializer:json"`
	Transcript    []Utterance `json:"transcript" gorm:"serializer:json"`
	Minutes       Minutes     `json:"minutes" gorm:"serializer:json"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (Meeting) TableName() string {
	return "meetings"
}
