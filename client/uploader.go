package client

import (
	"context"

	"github.com/google/uuid"
	"minutes-worker/dto"
	"minutes-worker/entities"
)

// SegmentAPI is the slice of Client the uploader needs.
type SegmentAPI interface {
	UploadSegment(ctx context.Context, jobId uuid.UUID, index int, segment Segment) (string, error)
	SubmitJob(ctx context.Context, manifest dto.SubmitJobRequest) error
}

// Uploader pushes segments to blob storage one at a time. Sequential upload
// is deliberate: the manifest relies on list order, not embedded sequence
// numbers, so segment i's key must be recorded before segment i+1 begins.
type Uploader struct {
	api SegmentAPI
}

func NewUploader(api SegmentAPI) *Uploader {
	return &Uploader{api: api}
}

// UploadAll uploads every segment in order and returns the ordered segment
// references plus the total-duration label. Cancelling ctx stops the sequence
// mid-flight; any failure aborts the whole submission so no partial manifest
// is ever created. Already-uploaded blobs of an abandoned job are orphans for
// a later garbage-collection sweep.
func (u *Uploader) UploadAll(ctx context.Context, jobId uuid.UUID, segments []Segment) ([]entities.SegmentRef, string, error) {
	refs := make([]entities.SegmentRef, 0, len(segments))
	offset := 0.0
	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}

		key, err := u.api.UploadSegment(ctx, jobId, i, segment)
		if err != nil {
			return nil, "", err
		}

		refs = append(refs, entities.SegmentRef{
			Key:         key,
			Mime:        segment.Mime,
			Duration:    segment.Duration,
			OffsetLabel: FormatOffset(offset),
		})
		offset += segment.Duration
	}
	return refs, FormatOffset(offset), nil
}

// SubmitRecording is the whole client-side submission: upload all segments in
// order, then post the manifest. Metadata fields of manifest other than
// Segments and TotalDuration are taken as given.
func (u *Uploader) SubmitRecording(ctx context.Context, manifest dto.SubmitJobRequest, segments []Segment) error {
	refs, totalLabel, err := u.UploadAll(ctx, manifest.JobId, segments)
	if err != nil {
		return err
	}
	manifest.Segments = refs
	manifest.TotalDuration = totalLabel
	return u.api.SubmitJob(ctx, manifest)
}
