package mock

import (
	"context"
	"fmt"

	"minutes-worker/ai"
	"minutes-worker/entities"
)

// Provider satisfies ai.Provider for testing. The zero value echoes every
// segment back as a single utterance and returns empty minutes.
type Provider struct {
	TranscribeFunc func(ctx context.Context, req ai.TranscribeRequest) ([]entities.Utterance, error)
	SummarizeFunc  func(ctx context.Context, title, transcript string) (*ai.RawMinutes, error)

	TranscribeCalls int
	SummarizeCalls  int
}

func (p *Provider) Transcribe(ctx context.Context, req ai.TranscribeRequest) ([]entities.Utterance, error) {
	p.TranscribeCalls++
	if p.TranscribeFunc != nil {
		return p.TranscribeFunc(ctx, req)
	}
	return []entities.Utterance{
		{Speaker: "Speaker 1", Text: fmt.Sprintf("utterance at %s", req.Offset), Timestamp: req.Offset},
	}, nil
}

func (p *Provider) Summarize(ctx context.Context, title, transcript string) (*ai.RawMinutes, error) {
	p.SummarizeCalls++
	if p.SummarizeFunc != nil {
		return p.SummarizeFunc(ctx, title, transcript)
	}
	return &ai.RawMinutes{Summary: "mock summary for " + title}, nil
}

var _ ai.Provider = (*Provider)(nil)
