package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"minutes-worker/ai"
	"minutes-worker/constant"
	"minutes-worker/dto"
	"minutes-worker/entities"
	"minutes-worker/repository"
	"minutes-worker/storage"
)

type Service interface {
	Process(ctx context.Context, message dto.JobMessage) error
}

type service struct {
	repo     repository.JobRepository
	store    storage.Store
	provider ai.Provider
}

func NewService(repo repository.JobRepository, store storage.Store, provider ai.Provider) Service {
	return &service{
		repo:     repo,
		store:    store,
		provider: provider,
	}
}

// Process runs one job to completion. Segments are handled strictly in
// manifest order; nothing is persisted to the permanent store until the whole
// transcript and minutes exist, so a redelivered message simply reprocesses
// from segment zero.
func (s service) Process(ctx context.Context, message dto.JobMessage) error {
	zerolog.Ctx(ctx).Info().Str("job_id", message.JobId.String()).Msg("processing job")

	manifest, err := s.repo.FindManifestByJobId(ctx, message.JobId)
	if errors.Is(err, repository.ErrNotFound) {
		// No manifest means there is nothing to retry against. Drop the
		// message instead of cycling it through the DLQ.
		zerolog.Ctx(ctx).Warn().Str("job_id", message.JobId.String()).Msg("no manifest for job, dropping message")
		return nil
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to load manifest")
		return s.failJob(ctx, message.JobId, 0, 0, constant.StageLoadManifest, nil, nil, err)
	}

	status := &entities.JobStatus{
		JobID:         message.JobId,
		Status:        constant.JobStatusProcessing,
		TotalSegments: len(manifest.Segments),
	}
	if err := s.saveStatus(ctx, status); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update job status")
		return err
	}

	transcript := make([]entities.Utterance, 0)
	for i, seg := range manifest.Segments {
		data, err := s.store.Get(ctx, seg.Key)
		if errors.Is(err, storage.ErrNotFound) {
			// A lost segment should not sink an otherwise complete meeting.
			// Skip it, keep the diagnostic on the status record and move on.
			zerolog.Ctx(ctx).Warn().
				Str("job_id", message.JobId.String()).
				Int("segment_index", i).
				Str("segment_key", seg.Key).
				Msg("segment blob missing, skipping")
			status.Stage = stringPtr(constant.StageFetchSegment.String())
			status.SegmentIndex = intPtr(i)
			status.SegmentKey = stringPtr(seg.Key)
			status.CompletedSegments++
			if err := s.saveStatus(ctx, status); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int("segment_index", i).Msg("failed to fetch segment")
			return s.failJob(ctx, message.JobId, status.TotalSegments, status.CompletedSegments, constant.StageFetchSegment, intPtr(i), stringPtr(seg.Key), err)
		}

		utterances, err := s.provider.Transcribe(ctx, ai.TranscribeRequest{
			Audio:    data,
			Mime:     seg.Mime,
			Offset:   seg.OffsetLabel,
			Keywords: manifest.Keywords,
		})
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Int("segment_index", i).Msg("failed to transcribe segment")
			return s.failJob(ctx, message.JobId, status.TotalSegments, status.CompletedSegments, constant.StageTranscribe, intPtr(i), stringPtr(seg.Key), err)
		}

		transcript = append(transcript, utterances...)
		status.CompletedSegments++
		if err := s.saveStatus(ctx, status); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to update segment progress")
			return err
		}
	}

	text := SerializeTranscript(transcript)
	raw, err := s.provider.Summarize(ctx, manifest.Title, text)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to summarize transcript")
		return s.failJob(ctx, message.JobId, status.TotalSegments, status.CompletedSegments, constant.StageSummarize, nil, nil, err)
	}
	minutes := NormalizeMinutes(raw)

	meeting := &entities.Meeting{
		ID:            uuid.New(),
		JobID:         manifest.JobID,
		UserEmail:     manifest.UserEmail,
		Title:         manifest.Title,
		Author:        manifest.Author,
		Date:          manifest.Date,
		Category:      manifest.Category,
		TotalDuration: manifest.TotalDuration,
		Speakers:      manifest.Speakers,
		Transcript:    transcript,
		Minutes:       minutes,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateMeeting(ctx, meeting); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to persist meeting")
		return s.failJob(ctx, message.JobId, status.TotalSegments, status.CompletedSegments, constant.StagePersist, nil, nil, err)
	}

	status.Status = constant.JobStatusCompleted
	status.MeetingID = &meeting.ID
	if err := s.saveStatus(ctx, status); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to mark job completed")
		return s.failJob(ctx, message.JobId, status.TotalSegments, status.CompletedSegments, constant.StagePersist, nil, nil, err)
	}

	// Cleanup runs only after the meeting is durably persisted. A failed
	// delete leaves an orphaned blob, never a broken job.
	for _, seg := range manifest.Segments {
		if err := s.store.Remove(ctx, seg.Key); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("segment_key", seg.Key).Msg("failed to delete segment blob")
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", message.JobId.String()).
		Str("meeting_id", meeting.ID.String()).
		Int("segments", status.TotalSegments).
		Msg("job completed")

	return nil
}

func (s service) saveStatus(ctx context.Context, status *entities.JobStatus) error {
	status.UpdatedAt = time.Now().UTC()
	return s.repo.SaveJobStatus(ctx, status)
}

// failJob records the failure on the durable status record so polling clients
// see it without server logs, then propagates the cause so the consumer can
// redeliver.
func (s service) failJob(ctx context.Context, jobId uuid.UUID, total, completed int, stage constant.Stage, segmentIndex *int, segmentKey *string, cause error) error {
	msg := cause.Error()
	status := &entities.JobStatus{
		JobID:             jobId,
		Status:            constant.JobStatusFailed,
		TotalSegments:     total,
		CompletedSegments: completed,
		Error:             &msg,
		Stage:             stringPtr(stage.String()),
		SegmentIndex:      segmentIndex,
		SegmentKey:        segmentKey,
	}
	if err := s.saveStatus(ctx, status); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobId.String()).Msg("failed to record job failure")
	}
	return cause
}

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
