package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"minutes-worker/ai"
	"minutes-worker/entities"
)

// SerializeTranscript renders the full transcript as one line per utterance,
// prefixed with timestamp and speaker. The summarizer receives this whole
// text in a single call.
func SerializeTranscript(transcript []entities.Utterance) string {
	var b strings.Builder
	for _, u := range transcript {
		fmt.Fprintf(&b, "[%s] %s: %s\n", u.Timestamp, u.Speaker, u.Text)
	}
	return b.String()
}

// NormalizeMinutes assigns a fresh id to every action item and schedule event
// and forces them unconfirmed. Model output is never auto-confirmed.
func NormalizeMinutes(raw *ai.RawMinutes) entities.Minutes {
	minutes := entities.Minutes{
		Summary:   raw.Summary,
		Agenda:    raw.Agenda,
		Todos:     make([]entities.ActionItem, 0, len(raw.Todos)),
		Schedules: make([]entities.ScheduleEvent, 0, len(raw.Schedules)),
	}
	if minutes.Agenda == nil {
		minutes.Agenda = []string{}
	}
	for _, t := range raw.Todos {
		minutes.Todos = append(minutes.Todos, entities.ActionItem{
			ID:        uuid.NewString(),
			Task:      t.Task,
			Assignee:  t.Assignee,
			DueDate:   t.DueDate,
			Completed: false,
			Confirmed: false,
		})
	}
	for _, s := range raw.Schedules {
		minutes.Schedules = append(minutes.Schedules, entities.ScheduleEvent{
			ID:        uuid.NewString(),
			Event:     s.Event,
			Date:      s.Date,
			Time:      s.Time,
			Confirmed: false,
		})
	}
	return minutes
}
