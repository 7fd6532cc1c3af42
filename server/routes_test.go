package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"minutes-worker/constant"
	"minutes-worker/dto"
	"minutes-worker/service"
)

type stubIntake struct {
	submitErr error
	retryErr  error
	status    *dto.StatusResponse
	uploaded  []int
}

func (s *stubIntake) UploadSegment(_ context.Context, jobId uuid.UUID, index int, mime string, _ float64, _ []byte) (string, error) {
	s.uploaded = append(s.uploaded, index)
	return service.SegmentObjectKey(jobId, index, mime), nil
}

func (s *stubIntake) SubmitJob(_ context.Context, _ dto.SubmitJobRequest) error {
	return s.submitErr
}

func (s *stubIntake) Status(_ context.Context, jobId uuid.UUID) (*dto.StatusResponse, error) {
	if s.status != nil {
		return s.status, nil
	}
	return &dto.StatusResponse{JobId: jobId, Status: constant.JobStatusUnknown}, nil
}

func (s *stubIntake) Retry(_ context.Context, _ uuid.UUID) error {
	return s.retryErr
}

func (s *stubIntake) ListJobs(_ context.Context, _ constant.JobStatus, _ int) ([]*dto.JobSummary, error) {
	return []*dto.JobSummary{}, nil
}

func testRouter(intake service.IntakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	addRoutes(r, intake)
	return r
}

func TestSubmitJob_EmptySegmentsIsBadRequest(t *testing.T) {
	r := testRouter(&stubIntake{submitErr: service.ErrEmptySegments})

	body, _ := json.Marshal(dto.SubmitJobRequest{JobId: uuid.New(), UserEmail: "a@b.c"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobStatus_UnknownJobIsStillOK(t *testing.T) {
	r := testRouter(&stubIntake{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/"+uuid.NewString()+"/status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, constant.JobStatusUnknown, resp.Status)
}

func TestJobStatus_InvalidIdIsBadRequest(t *testing.T) {
	r := testRouter(&stubIntake{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/not-a-uuid/status", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetry_MapsServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", service.ErrJobNotFound, http.StatusNotFound},
		{"not retryable", service.ErrNotRetryable, http.StatusConflict},
		{"segments gone", service.ErrSegmentsGone, http.StatusGone},
		{"success", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testRouter(&stubIntake{retryErr: tc.err})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/"+uuid.NewString()+"/retry", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestUploadSegment_RoundTrip(t *testing.T) {
	stub := &stubIntake{}
	r := testRouter(stub)

	jobId := uuid.New()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("jobId", jobId.String()))
	require.NoError(t, mw.WriteField("index", strconv.Itoa(2)))
	require.NoError(t, mw.WriteField("mimeType", "audio/wav"))
	require.NoError(t, mw.WriteField("duration", "45.5"))
	fw, err := mw.CreateFormFile("file", "segment-00002.wav")
	require.NoError(t, err)
	_, err = fw.Write([]byte("pcm-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/segments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.UploadSegmentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.SegmentObjectKey(jobId, 2, "audio/wav"), resp.Key)
	assert.Equal(t, []int{2}, stub.uploaded)
}

func TestUploadSegment_MissingFileIsBadRequest(t *testing.T) {
	r := testRouter(&stubIntake{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("jobId", uuid.NewString()))
	require.NoError(t, mw.WriteField("index", "0"))
	require.NoError(t, mw.WriteField("mimeType", "audio/wav"))
	require.NoError(t, mw.WriteField("duration", "10"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/segments", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
