package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"minutes-worker/dto"
)

// Client talks to the job intake, upload, status and retry endpoints.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 2 * time.Minute},
	}
}

// UploadSegment posts one segment as multipart form data and returns the
// storage key it was persisted under.
func (c *Client) UploadSegment(ctx context.Context, jobId uuid.UUID, index int, segment Segment) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"jobId":    jobId.String(),
		"index":    strconv.Itoa(index),
		"mimeType": segment.Mime,
		"duration": strconv.FormatFloat(segment.Duration, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return "", err
		}
	}

	fw, err := mw.CreateFormFile("file", fmt.Sprintf("segment-%05d.wav", index))
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(segment.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/segments", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp dto.UploadSegmentResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Key, nil
}

// SubmitJob posts the manifest once every segment is uploaded.
func (c *Client) SubmitJob(ctx context.Context, manifest dto.SubmitJobRequest) error {
	payload, err := json.Marshal(manifest)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp dto.SubmitJobResponse
	return c.do(req, &resp)
}

func (c *Client) Status(ctx context.Context, jobId uuid.UUID) (*dto.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/jobs/"+jobId.String()+"/status", nil)
	if err != nil {
		return nil, err
	}

	var resp dto.StatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Retry(ctx context.Context, jobId uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/jobs/"+jobId.String()+"/retry", nil)
	if err != nil {
		return err
	}

	var resp dto.RetryResponse
	return c.do(req, &resp)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
