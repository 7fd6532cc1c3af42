package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"minutes-worker/constant"
	"minutes-worker/dto"
	"minutes-worker/entities"
	"minutes-worker/pkg/rabbitmq"
	"minutes-worker/repository"
	"minutes-worker/storage"
)

var (
	ErrEmptySegments = errors.New("job has no segments")
	ErrJobNotFound   = errors.New("job not found")
	ErrNotRetryable  = errors.New("job is not in a failed state")
	ErrSegmentsGone  = errors.New("segment blobs no longer exist")
)

type IntakeService interface {
	UploadSegment(ctx context.Context, jobId uuid.UUID, index int, mime string, duration float64, data []byte) (string, error)
	SubmitJob(ctx context.Context, req dto.SubmitJobRequest) error
	Status(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error)
	Retry(ctx context.Context, jobId uuid.UUID) error
	ListJobs(ctx context.Context, status constant.JobStatus, limit int) ([]*dto.JobSummary, error)
}

type intakeService struct {
	repo      repository.JobRepository
	store     storage.Store
	publisher rabbitmq.Publisher
}

func NewIntakeService(repo repository.JobRepository, store storage.Store, publisher rabbitmq.Publisher) IntakeService {
	return &intakeService{
		repo:      repo,
		store:     store,
		publisher: publisher,
	}
}

// SegmentObjectKey builds the job- and index-scoped storage key a segment is
// uploaded under.
func SegmentObjectKey(jobId uuid.UUID, index int, mime string) string {
	return fmt.Sprintf("jobs/%s/segments/%05d%s", jobId, index, extensionForMime(mime))
}

func (s *intakeService) UploadSegment(ctx context.Context, jobId uuid.UUID, index int, mime string, duration float64, data []byte) (string, error) {
	key := SegmentObjectKey(jobId, index, mime)
	metadata := map[string]string{
		"job-id":   jobId.String(),
		"index":    strconv.Itoa(index),
		"mime":     mime,
		"duration": strconv.FormatFloat(duration, 'f', -1, 64),
	}
	if err := s.store.Put(ctx, key, data, mime, metadata); err != nil {
		return "", err
	}
	zerolog.Ctx(ctx).Debug().
		Str("job_id", jobId.String()).
		Int("index", index).
		Str("key", key).
		Msg("segment uploaded")
	return key, nil
}

// SubmitJob registers a fully-uploaded job: manifest and initial status are
// written in one transaction, then exactly one work item is enqueued. The
// queue payload carries only the job id.
func (s *intakeService) SubmitJob(ctx context.Context, req dto.SubmitJobRequest) error {
	if len(req.Segments) == 0 {
		return ErrEmptySegments
	}
	if req.JobId == uuid.Nil {
		return errors.New("jobId is required")
	}

	manifest := &entities.Manifest{
		JobID:         req.JobId,
		UserEmail:     req.UserEmail,
		Title:         req.Title,
		Author:        req.Author,
		Date:          req.Date,
		Category:      req.Category,
		Type:          req.Type,
		TotalDuration: req.TotalDuration,
		Speakers:      req.Speakers,
		Keywords:      req.Keywords,
		Segments:      req.Segments,
		CreatedAt:     time.Now().UTC(),
	}

	status := &entities.JobStatus{
		JobID:         req.JobId,
		Status:        constant.JobStatusQueued,
		TotalSegments: len(req.Segments),
		UpdatedAt:     time.Now().UTC(),
	}

	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateManifest(ctx, manifest); err != nil {
			return err
		}
		return s.repo.SaveJobStatus(ctx, status)
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", req.JobId.String()).Msg("failed to persist manifest")
		return err
	}

	if err := s.publisher.PublishJob(ctx, dto.JobMessage{JobId: req.JobId}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", req.JobId.String()).Msg("failed to enqueue job")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("job_id", req.JobId.String()).
		Int("segments", len(req.Segments)).
		Msg("job queued")
	return nil
}

// Status resolves a job's progress. An unknown job id is not an error: the
// client may poll before the status record is visible.
func (s *intakeService) Status(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error) {
	status, err := s.repo.FindJobStatusByJobId(ctx, jobId)
	if errors.Is(err, repository.ErrNotFound) {
		return &dto.StatusResponse{JobId: jobId, Status: constant.JobStatusUnknown}, nil
	}
	if err != nil {
		return nil, err
	}
	return &dto.StatusResponse{
		JobId:             status.JobID,
		Status:            status.Status,
		TotalSegments:     status.TotalSegments,
		CompletedSegments: status.CompletedSegments,
		Error:             status.Error,
		MeetingId:         status.MeetingID,
		UpdatedAt:         &status.UpdatedAt,
	}, nil
}

// Retry re-enqueues a failed job with counters reset. It refuses when the
// segment blobs are already cleaned up, so a retry can never produce an
// all-segments-missing meeting.
func (s *intakeService) Retry(ctx context.Context, jobId uuid.UUID) error {
	status, err := s.repo.FindJobStatusByJobId(ctx, jobId)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrJobNotFound
	}
	if err != nil {
		return err
	}
	if status.Status != constant.JobStatusFailed {
		return ErrNotRetryable
	}

	manifest, err := s.repo.FindManifestByJobId(ctx, jobId)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrJobNotFound
	}
	if err != nil {
		return err
	}

	exists, err := s.store.Exists(ctx, manifest.Segments[0].Key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrSegmentsGone
	}

	reset := &entities.JobStatus{
		JobID:         jobId,
		Status:        constant.JobStatusQueued,
		TotalSegments: len(manifest.Segments),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.repo.SaveJobStatus(ctx, reset); err != nil {
		return err
	}

	if err := s.publisher.PublishJob(ctx, dto.JobMessage{JobId: jobId}); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("job_id", jobId.String()).Msg("failed to re-enqueue job")
		return err
	}

	zerolog.Ctx(ctx).Info().Str("job_id", jobId.String()).Msg("job re-queued")
	return nil
}

// ListJobs returns status+manifest-derived summaries, most recently updated
// first, for operator triage.
func (s *intakeService) ListJobs(ctx context.Context, status constant.JobStatus, limit int) ([]*dto.JobSummary, error) {
	statuses, err := s.repo.ListJobStatuses(ctx, status, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*dto.JobSummary, 0, len(statuses))
	for _, st := range statuses {
		summary := &dto.JobSummary{
			JobId:             st.JobID,
			Status:            st.Status,
			TotalSegments:     st.TotalSegments,
			CompletedSegments: st.CompletedSegments,
			Error:             st.Error,
			Stage:             st.Stage,
			SegmentIndex:      st.SegmentIndex,
			UpdatedAt:         st.UpdatedAt,
		}
		manifest, err := s.repo.FindManifestByJobId(ctx, st.JobID)
		if err == nil {
			summary.Title = manifest.Title
			summary.UserEmail = manifest.UserEmail
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func extensionForMime(mime string) string {
	switch mime {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/webm":
		return ".webm"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	default:
		return ".bin"
	}
}
