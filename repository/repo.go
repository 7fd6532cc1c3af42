package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"minutes-worker/constant"
	"minutes-worker/entities"
)

// ErrNotFound is returned when a manifest, status or meeting does not exist.
var ErrNotFound = errors.New("record not found")

type JobRepository interface {
	Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error
	GetDB() *gorm.DB

	CreateManifest(ctx context.Context, manifest *entities.Manifest) error
	FindManifestByJobId(ctx context.Context, jobId uuid.UUID) (*entities.Manifest, error)

	SaveJobStatus(ctx context.Context, status *entities.JobStatus) error
	FindJobStatusByJobId(ctx context.Context, jobId uuid.UUID) (*entities.JobStatus, error)
	ListJobStatuses(ctx context.Context, status constant.JobStatus, limit int) ([]*entities.JobStatus, error)

	CreateMeeting(ctx context.Context, meeting *entities.Meeting) error
	FindMeetingById(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
}

type repo struct {
	db *gorm.DB
}

func NewRepo(db *sql.DB) JobRepository {
	gormDB, _ := gorm.Open(postgres.New(postgres.Config{
		Conn: db}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		},
	)
	return &repo{
		db: gormDB,
	}
}

func (r *repo) GetDB() *gorm.DB {
	return r.db
}

func (r *repo) Transaction(ctx context.Context, callback func(ctx context.Context) error, opts ...*sql.TxOptions) error {
	return r.GetDB().Transaction(func(tx *gorm.DB) error {
		err := callback(ctx)
		if err != nil {
			return err
		}
		return nil
	}, opts...)
}

func (r *repo) CreateManifest(ctx context.Context, manifest *entities.Manifest) error {
	return r.GetDB().WithContext(ctx).Create(manifest).Error
}

func (r *repo) FindManifestByJobId(ctx context.Context, jobId uuid.UUID) (*entities.Manifest, error) {
	manifest := &entities.Manifest{}
	err := r.GetDB().WithContext(ctx).First(manifest, "job_id = ?", jobId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// SaveJobStatus overwrites the whole status record. Last writer wins; within
// one job's lifetime there is normally exactly one active writer.
func (r *repo) SaveJobStatus(ctx context.Context, status *entities.JobStatus) error {
	return r.GetDB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}},
		UpdateAll: true,
	}).Create(status).Error
}

func (r *repo) FindJobStatusByJobId(ctx context.Context, jobId uuid.UUID) (*entities.JobStatus, error) {
	status := &entities.JobStatus{}
	err := r.GetDB().WithContext(ctx).First(status, "job_id = ?", jobId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (r *repo) ListJobStatuses(ctx context.Context, status constant.JobStatus, limit int) ([]*entities.JobStatus, error) {
	var statuses []*entities.JobStatus
	q := r.GetDB().WithContext(ctx).Order("updated_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *repo) CreateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	return r.GetDB().WithContext(ctx).Create(meeting).Error
}

func (r *repo) FindMeetingById(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting := &entities.Meeting{}
	err := r.GetDB().WithContext(ctx).First(meeting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}
