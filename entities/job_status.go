package entities

import (
	"time"

	"github.com/google/uuid"
	"minutes-worker/constant"
)

// JobStatus is the mutable progress record for a job, written by intake and
// the worker, read by polling clients. Writes are whole-record overwrites.
type JobStatus struct {
	JobID             uuid.UUID          `json:"job_id" gorm:"type:uuid;primary_key"`
	Status            constant.JobStatus `json:"status" gorm:"type:varchar(20);not null;index:idx_job_statuses_status"`
	TotalSegments     int                `json:"total_segments" gorm:"not null"`
	CompletedSegments int                `json:"completed_segments" gorm:"not null"`
	Error             *string            `json:"error,omitempty" gorm:"type:text"`
	Stage             *string            `json:"stage,omitempty" gorm:"type:varchar(50)"`
	SegmentIndex      *int               `json:"segment_index,omitempty"`
	SegmentKey        *string            `json:"segment_key,omitempty" gorm:"type:varchar(500)"`
	MeetingID         *uuid.UUID         `json:"meeting_id,omitempty" gorm:"type:uuid"`
	UpdatedAt         time.Time          `json:"updated_at" gorm:"index:idx_job_statuses_updated_at"`
}

func (JobStatus) TableName() string {
	return "job_statuses"
}
