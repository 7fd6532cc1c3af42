package client_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"minutes-worker/client"
	"minutes-worker/constant"
	"minutes-worker/dto"
)

type fakeStatusAPI struct {
	mu       sync.Mutex
	statuses map[uuid.UUID]*dto.StatusResponse
	calls    map[uuid.UUID]int
}

func newFakeStatusAPI() *fakeStatusAPI {
	return &fakeStatusAPI{
		statuses: make(map[uuid.UUID]*dto.StatusResponse),
		calls:    make(map[uuid.UUID]int),
	}
}

func (f *fakeStatusAPI) set(status *dto.StatusResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[status.JobId] = status
}

func (f *fakeStatusAPI) Status(_ context.Context, jobId uuid.UUID) (*dto.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[jobId]++
	status, ok := f.statuses[jobId]
	if !ok {
		return &dto.StatusResponse{JobId: jobId, Status: constant.JobStatusUnknown}, nil
	}
	copied := *status
	return &copied, nil
}

func TestPoller_NotifiesCompletedJobAtMostOnce(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()
	markers := client.NewMemoryMarkerStore()

	var notified []uuid.UUID
	poller := client.NewPoller(api, pending, markers, func(status *dto.StatusResponse) {
		notified = append(notified, status.JobId)
	}, time.Minute)

	jobId := uuid.New()
	pending.Track(jobId)
	meetingId := uuid.New()
	api.set(&dto.StatusResponse{
		JobId:             jobId,
		Status:            constant.JobStatusCompleted,
		TotalSegments:     3,
		CompletedSegments: 3,
		MeetingId:         &meetingId,
	})

	// Polling observes the same completed status repeatedly.
	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())

	require.Len(t, notified, 1)
	assert.Equal(t, jobId, notified[0])
}

func TestPoller_NotifiesFailedJob(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()
	markers := client.NewMemoryMarkerStore()

	var notified []*dto.StatusResponse
	poller := client.NewPoller(api, pending, markers, func(status *dto.StatusResponse) {
		notified = append(notified, status)
	}, time.Minute)

	jobId := uuid.New()
	pending.Track(jobId)
	errMsg := "transcribe failed"
	api.set(&dto.StatusResponse{JobId: jobId, Status: constant.JobStatusFailed, Error: &errMsg})

	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())

	require.Len(t, notified, 1)
	assert.Equal(t, constant.JobStatusFailed, notified[0].Status)
}

func TestPoller_MergesProgressIntoLocalState(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()
	poller := client.NewPoller(api, pending, client.NewMemoryMarkerStore(), nil, time.Minute)

	jobId := uuid.New()
	pending.Track(jobId)
	api.set(&dto.StatusResponse{
		JobId:             jobId,
		Status:            constant.JobStatusProcessing,
		TotalSegments:     5,
		CompletedSegments: 2,
	})

	poller.PollOnce(context.Background())

	local, ok := pending.Get(jobId)
	require.True(t, ok)
	assert.Equal(t, constant.JobStatusProcessing, local.Status)
	assert.Equal(t, 2, local.CompletedSegments)
	assert.Equal(t, 5, local.TotalSegments)
}

func TestPoller_UnknownStatusKeepsJobTracked(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()
	poller := client.NewPoller(api, pending, client.NewMemoryMarkerStore(), nil, time.Minute)

	jobId := uuid.New()
	pending.Track(jobId)

	poller.PollOnce(context.Background())

	// Storage may simply not have seen the job yet; nothing is merged and the
	// job stays tracked for the next interval.
	assert.Contains(t, pending.List(), jobId)
	local, ok := pending.Get(jobId)
	require.True(t, ok)
	assert.NotEqual(t, constant.JobStatusUnknown, local.Status.String(), "unknown must not overwrite local state")
}

func TestPoller_TerminalJobsAreNotRePolled(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()
	poller := client.NewPoller(api, pending, client.NewMemoryMarkerStore(), nil, time.Minute)

	jobId := uuid.New()
	pending.Track(jobId)
	api.set(&dto.StatusResponse{JobId: jobId, Status: constant.JobStatusCompleted})

	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())
	poller.PollOnce(context.Background())

	assert.Equal(t, 1, api.calls[jobId])
	// Still tracked: polling alone never removes a job.
	assert.Contains(t, pending.List(), jobId)
}

func TestPoller_PokeTriggersImmediatePoll(t *testing.T) {
	api := newFakeStatusAPI()
	pending := client.NewMemoryPendingStore()

	done := make(chan uuid.UUID, 1)
	poller := client.NewPoller(api, pending, client.NewMemoryMarkerStore(), func(status *dto.StatusResponse) {
		done <- status.JobId
	}, time.Hour)

	jobId := uuid.New()
	pending.Track(jobId)
	api.set(&dto.StatusResponse{JobId: jobId, Status: constant.JobStatusCompleted})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	poller.Poke()

	select {
	case got := <-done:
		assert.Equal(t, jobId, got)
	case <-time.After(2 * time.Second):
		t.Fatal("poke did not trigger a poll")
	}
}

func TestMemoryPendingStore_MergeIgnoresUntrackedJob(t *testing.T) {
	pending := client.NewMemoryPendingStore()

	pending.Merge(&dto.StatusResponse{JobId: uuid.New(), Status: constant.JobStatusCompleted})

	assert.Empty(t, pending.List())
}
