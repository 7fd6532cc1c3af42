package dto

import (
	"time"

	"github.com/google/uuid"
	"minutes-worker/constant"
	"minutes-worker/entities"
)

// JobMessage is the queue payload. It carries only the job id; the worker
// re-reads the manifest so redelivered messages stay idempotent and the
// payload stays tiny.
type JobMessage struct {
	JobId uuid.UUID `json:"jobId"`
}

// SubmitJobRequest is the intake manifest, posted once all segments are
// uploaded. Segment order is transcription order.
type SubmitJobRequest struct {
	JobId         uuid.UUID             `json:"jobId" binding:"required"`
	UserEmail     string                `json:"userEmail" binding:"required"`
	Title         string                `json:"title"`
	Author        string                `json:"author"`
	Date          string                `json:"date"`
	Category      string                `json:"category"`
	Type          string                `json:"type"`
	TotalDuration string                `json:"totalDuration"`
	Speakers      []string              `json:"speakers"`
	Keywords      []string              `json:"keywords"`
	Segments      []entities.SegmentRef `json:"segments"`
}

type SubmitJobResponse struct {
	Success bool      `json:"success"`
	JobId   uuid.UUID `json:"jobId"`
}

type UploadSegmentResponse struct {
	Key string `json:"key"`
}

type StatusResponse struct {
	JobId             uuid.UUID          `json:"jobId"`
	Status            constant.JobStatus `json:"status"`
	TotalSegments     int                `json:"totalSegments"`
	CompletedSegments int                `json:"completedSegments"`
	Error             *string            `json:"error,omitempty"`
	MeetingId         *uuid.UUID         `json:"meetingId,omitempty"`
	UpdatedAt         *time.Time         `json:"updatedAt,omitempty"`
}

type RetryResponse struct {
	Success bool      `json:"success"`
	JobId   uuid.UUID `json:"jobId"`
}

// JobSummary is one row of the admin listing, joining status with
// manifest-derived fields for operator triage.
type JobSummary struct {
	JobId             uuid.UUID          `json:"jobId"`
	Title             string             `json:"title"`
	UserEmail         string             `json:"userEmail"`
	Status            constant.JobStatus `json:"status"`
	TotalSegments     int                `json:"totalSegments"`
	CompletedSegments int                `json:"completedSegments"`
	Error             *string            `json:"error,omitempty"`
	Stage             *string            `json:"stage,omitempty"`
	SegmentIndex      *int               `json:"segmentIndex,omitempty"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}
