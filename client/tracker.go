package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"minutes-worker/dto"
)

// PendingStore tracks jobs the client is waiting on. Polling merges status
// into it but never removes a job; only the user's own actions untrack.
type PendingStore interface {
	Track(jobId uuid.UUID)
	Untrack(jobId uuid.UUID)
	List() []uuid.UUID
	Get(jobId uuid.UUID) (*dto.StatusResponse, bool)
	Merge(status *dto.StatusResponse)
}

// MarkerStore is the durable "already notified" set. Polling can observe the
// same completed status many times; the marker makes the side effect fire at
// most once per job.
type MarkerStore interface {
	IsNotified(ctx context.Context, jobId uuid.UUID) (bool, error)
	MarkNotified(ctx context.Context, jobId uuid.UUID) error
}

type memoryPendingStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*dto.StatusResponse
}

func NewMemoryPendingStore() PendingStore {
	return &memoryPendingStore{jobs: make(map[uuid.UUID]*dto.StatusResponse)}
}

func (s *memoryPendingStore) Track(jobId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[jobId]; !ok {
		s.jobs[jobId] = &dto.StatusResponse{JobId: jobId}
	}
}

func (s *memoryPendingStore) Untrack(jobId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobId)
}

func (s *memoryPendingStore) List() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}

func (s *memoryPendingStore) Get(jobId uuid.UUID) (*dto.StatusResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.jobs[jobId]
	if !ok {
		return nil, false
	}
	copied := *status
	return &copied, true
}

// Merge folds a polled status into the local record. Fields the server did
// not populate keep their previous values.
func (s *memoryPendingStore) Merge(status *dto.StatusResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.jobs[status.JobId]
	if !ok {
		return
	}
	current.Status = status.Status
	current.TotalSegments = status.TotalSegments
	current.CompletedSegments = status.CompletedSegments
	if status.Error != nil {
		current.Error = status.Error
	}
	if status.MeetingId != nil {
		current.MeetingId = status.MeetingId
	}
	if status.UpdatedAt != nil {
		current.UpdatedAt = status.UpdatedAt
	}
}

type memoryMarkerStore struct {
	mu       sync.Mutex
	notified map[uuid.UUID]struct{}
}

func NewMemoryMarkerStore() MarkerStore {
	return &memoryMarkerStore{notified: make(map[uuid.UUID]struct{})}
}

func (s *memoryMarkerStore) IsNotified(_ context.Context, jobId uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.notified[jobId]
	return ok, nil
}

func (s *memoryMarkerStore) MarkNotified(_ context.Context, jobId uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified[jobId] = struct{}{}
	return nil
}

// RedisMarkerStore keeps notified markers in Redis so they survive client
// restarts.
type RedisMarkerStore struct {
	client *redis.Client
}

func NewRedisMarkerStore(redisURL string) (*RedisMarkerStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisMarkerStore{client: redis.NewClient(opts)}, nil
}

func (s *RedisMarkerStore) IsNotified(ctx context.Context, jobId uuid.UUID) (bool, error) {
	n, err := s.client.Exists(ctx, notifiedKey(jobId)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisMarkerStore) MarkNotified(ctx context.Context, jobId uuid.UUID) error {
	return s.client.Set(ctx, notifiedKey(jobId), "1", 0).Err()
}

func notifiedKey(jobId uuid.UUID) string {
	return "minutes:notified:" + jobId.String()
}
