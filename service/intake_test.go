package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"minutes-worker/constant"
	"minutes-worker/dto"
	"minutes-worker/entities"
	"minutes-worker/service"
	"minutes-worker/storage"
)

type fakePublisher struct {
	published []dto.JobMessage
	err       error
}

func (p *fakePublisher) PublishJob(_ context.Context, message dto.JobMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, message)
	return nil
}

func submitRequest(jobId uuid.UUID, segmentCount int) dto.SubmitJobRequest {
	segments := make([]entities.SegmentRef, 0, segmentCount)
	for i := 0; i < segmentCount; i++ {
		segments = append(segments, entities.SegmentRef{
			Key:         service.SegmentObjectKey(jobId, i, "audio/wav"),
			Mime:        "audio/wav",
			Duration:    120,
			OffsetLabel: "00:00",
		})
	}
	return dto.SubmitJobRequest{
		JobId:     jobId,
		UserEmail: "owner@example.com",
		Title:     "Planning",
		Segments:  segments,
	}
}

func TestSubmitJob_RejectsEmptySegmentList(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	intake := service.NewIntakeService(repo, storage.NewMemory(), publisher)

	err := intake.SubmitJob(context.Background(), submitRequest(uuid.New(), 0))

	require.ErrorIs(t, err, service.ErrEmptySegments)
	assert.Empty(t, publisher.published, "nothing may be enqueued")
	assert.Empty(t, repo.manifests)
	assert.Empty(t, repo.statuses)
}

func TestSubmitJob_PersistsManifestStatusAndEnqueuesOnce(t *testing.T) {
	repo := newFakeRepo()
	publisher := &fakePublisher{}
	intake := service.NewIntakeService(repo, storage.NewMemory(), publisher)

	jobId := uuid.New()
	require.NoError(t, intake.SubmitJob(context.Background(), submitRequest(jobId, 3)))

	manifest, err := repo.FindManifestByJobId(context.Background(), jobId)
	require.NoError(t, err)
	assert.Len(t, manifest.Segments, 3)

	status, err := repo.FindJobStatusByJobId(context.Background(), jobId)
	require.NoError(t, err)
	assert.Equal(t, constant.JobStatusQueued, status.Status)
	assert.Equal(t, 3, status.TotalSegments)
	assert.Equal(t, 0, status.CompletedSegments)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, jobId, publisher.published[0].JobId)
}

func TestStatus_UnknownJobReturnsSentinel(t *testing.T) {
	intake := service.NewIntakeService(newFakeRepo(), storage.NewMemory(), &fakePublisher{})

	status, err := intake.Status(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, constant.JobStatusUnknown, status.Status)
}

func TestRetry_ResetsCountersAndEnqueuesOnce(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemory()
	publisher := &fakePublisher{}
	intake := service.NewIntakeService(repo, store, publisher)

	manifest := seedJob(t, repo, store, 3)
	errMsg := "transcribe blew up"
	stage := constant.StageTranscribe.String()
	require.NoError(t, repo.SaveJobStatus(context.Background(), &entities.JobStatus{
		JobID:             manifest.JobID,
		Status:            constant.JobStatusFailed,
		TotalSegments:     3,
		CompletedSegments: 2,
		Error:             &errMsg,
		Stage:             &stage,
		UpdatedAt:         time.Now().UTC(),
	}))

	require.NoError(t, intake.Retry(context.Background(), manifest.JobID))

	status, err := repo.FindJobStatusByJobId(context.Background(), manifest.JobID)
	require.NoError(t, err)
	assert.Equal(t, constant.JobStatusQueued, status.Status)
	assert.Equal(t, 0, status.CompletedSegments)
	assert.Equal(t, 3, status.TotalSegments)
	assert.Nil(t, status.Error)
	assert.Nil(t, status.Stage)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, manifest.JobID, publisher.published[0].JobId)
}

func TestRetry_RejectsNonFailedJob(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemory()
	publisher := &fakePublisher{}
	intake := service.NewIntakeService(repo, store, publisher)

	manifest := seedJob(t, repo, store, 2)
	require.NoError(t, repo.SaveJobStatus(context.Background(), &entities.JobStatus{
		JobID:         manifest.JobID,
		Status:        constant.JobStatusProcessing,
		TotalSegments: 2,
		UpdatedAt:     time.Now().UTC(),
	}))

	err := intake.Retry(context.Background(), manifest.JobID)

	require.ErrorIs(t, err, service.ErrNotRetryable)
	assert.Empty(t, publisher.published)
}

func TestRetry_UnknownJob(t *testing.T) {
	intake := service.NewIntakeService(newFakeRepo(), storage.NewMemory(), &fakePublisher{})

	err := intake.Retry(context.Background(), uuid.New())

	assert.ErrorIs(t, err, service.ErrJobNotFound)
}

func TestRetry_RefusesWhenBlobsAreGone(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemory()
	publisher := &fakePublisher{}
	intake := service.NewIntakeService(repo, store, publisher)

	manifest := seedJob(t, repo, store, 2)
	require.NoError(t, repo.SaveJobStatus(context.Background(), &entities.JobStatus{
		JobID:         manifest.JobID,
		Status:        constant.JobStatusFailed,
		TotalSegments: 2,
		UpdatedAt:     time.Now().UTC(),
	}))
	for _, seg := range manifest.Segments {
		require.NoError(t, store.Remove(context.Background(), seg.Key))
	}

	err := intake.Retry(context.Background(), manifest.JobID)

	require.ErrorIs(t, err, service.ErrSegmentsGone)
	assert.Empty(t, publisher.published)
}

func TestUploadSegment_StoresUnderJobScopedKey(t *testing.T) {
	store := storage.NewMemory()
	intake := service.NewIntakeService(newFakeRepo(), store, &fakePublisher{})

	jobId := uuid.New()
	key, err := intake.UploadSegment(context.Background(), jobId, 7, "audio/wav", 45.5, []byte("pcm"))

	require.NoError(t, err)
	assert.Equal(t, service.SegmentObjectKey(jobId, 7, "audio/wav"), key)

	data, err := store.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, []byte("pcm"), data)
}

func TestListJobs_JoinsManifestFields(t *testing.T) {
	repo := newFakeRepo()
	store := storage.NewMemory()
	intake := service.NewIntakeService(repo, store, &fakePublisher{})

	manifest := seedJob(t, repo, store, 2)
	require.NoError(t, repo.SaveJobStatus(context.Background(), &entities.JobStatus{
		JobID:         manifest.JobID,
		Status:        constant.JobStatusQueued,
		TotalSegments: 2,
		UpdatedAt:     time.Now().UTC(),
	}))

	summaries, err := intake.ListJobs(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, manifest.JobID, summaries[0].JobId)
	assert.Equal(t, "Weekly Sync", summaries[0].Title)
	assert.Equal(t, "owner@example.com", summaries[0].UserEmail)

	filtered, err := intake.ListJobs(context.Background(), constant.JobStatusFailed, 10)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}
