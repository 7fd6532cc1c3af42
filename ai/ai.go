package ai

import (
	"context"
	"errors"

	"minutes-worker/entities"
)

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)

// TranscribeRequest carries one audio segment. Offset is the segment's MM:SS
// start position within the whole recording so the model can timestamp
// utterances on the full timeline.
type TranscribeRequest struct {
	Audio    []byte
	Mime     string
	Offset   string
	Keywords []string
}

// RawActionItem is a model-extracted todo before normalization assigns ids
// and confirmation flags.
type RawActionItem struct {
	Task     string `json:"task"`
	Assignee string `json:"assignee"`
	DueDate  string `json:"dueDate,omitempty"`
}

type RawScheduleEvent struct {
	Event string `json:"event"`
	Date  string `json:"date"`
	Time  string `json:"time,omitempty"`
}

// RawMinutes is the summarizer's output before normalization.
type RawMinutes struct {
	Summary   string             `json:"summary"`
	Agenda    []string           `json:"agenda"`
	Todos     []RawActionItem    `json:"todos"`
	Schedules []RawScheduleEvent `json:"schedules"`
}

// Transcriber converts one audio segment into ordered utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscribeRequest) ([]entities.Utterance, error)
}

// Summarizer derives structured minutes from a whole-recording transcript.
// Called exactly once per job, over the full text, because action items and
// schedule events may span segment boundaries.
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript string) (*RawMinutes, error)
}

// Provider bundles both model capabilities behind one client.
type Provider interface {
	Transcriber
	Summarizer
}
