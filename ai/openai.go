package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"minutes-worker/config"
	"minutes-worker/entities"
)

// openAIProvider talks to an OpenAI-compatible gateway: segment audio goes to
// the transcriptions endpoint as a multipart upload, summarization goes to
// chat completions with a JSON response format.
type openAIProvider struct {
	cfg    config.AI
	client *http.Client
}

func NewOpenAIProvider(cfg config.AI) Provider {
	return &openAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type transcribeResponse struct {
	Utterances []entities.Utterance `json:"utterances"`
}

func (p *openAIProvider) Transcribe(ctx context.Context, req TranscribeRequest) ([]entities.Utterance, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", p.cfg.TranscribeModel); err != nil {
		return nil, err
	}
	if err := mw.WriteField("offset", req.Offset); err != nil {
		return nil, err
	}
	if len(req.Keywords) > 0 {
		if err := mw.WriteField("keywords", strings.Join(req.Keywords, ",")); err != nil {
			return nil, err
		}
	}

	fw, err := mw.CreateFormFile("file", "segment"+extensionFor(req.Mime))
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(req.Audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcribe http %d: %s", resp.StatusCode, string(b))
	}

	var tr transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return tr.Utterances, nil
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *openAIProvider) Summarize(ctx context.Context, title, transcript string) (*RawMinutes, error) {
	prompt := fmt.Sprintf("Meeting title: %s\n\nTranscript:\n%s", title, transcript)
	payload, err := json.Marshal(chatRequest{
		Model: p.cfg.SummarizeModel,
		Messages: []chatMessage{
			{Role: "system", Content: summarizeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("summarize http %d: %s", resp.StatusCode, string(b))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	var minutes RawMinutes
	if err := json.Unmarshal([]byte(cr.Choices[0].Message.Content), &minutes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return &minutes, nil
}

const summarizeSystemPrompt = `You summarize meeting transcripts. Respond with a JSON object containing: "summary" (string), "agenda" (array of strings), "todos" (array of {"task","assignee","dueDate"}), "schedules" (array of {"event","date","time"}).`

func extensionFor(mime string) string {
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

var _ Provider = (*openAIProvider)(nil)
