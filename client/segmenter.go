package client

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSegmentDuration keeps each segment comfortably below the model's
// practical request-size limit.
const DefaultSegmentDuration = 120 * time.Second

const segmentMime = "audio/wav"

// ErrNotAudio is returned when the input cannot be decoded as audio, so the
// caller can offer the user a retry/cancel choice instead of submitting an
// empty job.
var ErrNotAudio = errors.New("input is not decodable audio")

// Segment is one bounded-duration slice of a recording: self-contained bytes,
// its mime type and its actual duration in seconds.
type Segment struct {
	Data     []byte
	Mime     string
	Duration float64
}

// SegmentWAV decodes an uploaded WAV file once and slices the sample buffer
// into equal-duration windows, each re-encoded as an independently decodable
// file. Slicing the decoded buffer sidesteps the source container's own chunk
// boundaries, which are not guaranteed to be independently decodable. The
// final segment may be shorter; its Duration reflects the actual slice
// length, which downstream offset labels depend on.
func SegmentWAV(data []byte, target time.Duration) ([]Segment, error) {
	if target <= 0 {
		target = DefaultSegmentDuration
	}

	format, pcm, err := decodeWAV(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAudio, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: empty sample buffer", ErrNotAudio)
	}

	window := windowBytes(format, target)
	segments := make([]Segment, 0, len(pcm)/window+1)
	for start := 0; start < len(pcm); start += window {
		end := start + window
		if end > len(pcm) {
			end = len(pcm)
		}
		slice := pcm[start:end]
		segments = append(segments, Segment{
			Data:     encodeWAV(format, slice),
			Mime:     segmentMime,
			Duration: float64(len(slice)) / float64(format.bytesPerSecond()),
		})
	}
	return segments, nil
}

// windowBytes converts a target duration to a byte count aligned to whole
// sample frames.
func windowBytes(format pcmFormat, target time.Duration) int {
	window := int(float64(format.bytesPerSecond()) * target.Seconds())
	align := format.blockAlign()
	window -= window % align
	if window < align {
		window = align
	}
	return window
}

// LiveSegmenter slices a continuous PCM stream into bounded windows as it is
// written, handing each completed segment to an ordered callback the moment
// its window closes. At most one window is buffered, so an arbitrarily long
// recording never accumulates unbounded memory. The sample clock is the
// timer: for a continuous stream, a full window of samples is exactly the
// target duration of wall time.
type LiveSegmenter struct {
	format pcmFormat
	window int
	buf    []byte
	index  int
	emit   func(index int, segment Segment)
}

func NewLiveSegmenter(channels, sampleRate, bitsPerSample int, target time.Duration, emit func(index int, segment Segment)) *LiveSegmenter {
	if target <= 0 {
		target = DefaultSegmentDuration
	}
	format := pcmFormat{Channels: channels, SampleRate: sampleRate, BitsPerSample: bitsPerSample}
	return &LiveSegmenter{
		format: format,
		window: windowBytes(format, target),
		buf:    make([]byte, 0, windowBytes(format, target)),
		emit:   emit,
	}
}

// Write appends PCM bytes from the microphone stream, cutting a segment every
// time the window fills regardless of silence.
func (l *LiveSegmenter) Write(pcm []byte) {
	l.buf = append(l.buf, pcm...)
	for len(l.buf) >= l.window {
		l.cut(l.buf[:l.window])
		l.buf = l.buf[l.window:]
	}
}

// Flush emits the trailing partial segment, if any. Call once when the
// recording stops.
func (l *LiveSegmenter) Flush() {
	if len(l.buf) == 0 {
		return
	}
	l.cut(l.buf)
	l.buf = l.buf[:0]
}

func (l *LiveSegmenter) cut(pcm []byte) {
	segment := Segment{
		Data:     encodeWAV(l.format, pcm),
		Mime:     segmentMime,
		Duration: float64(len(pcm)) / float64(l.format.bytesPerSecond()),
	}
	l.emit(l.index, segment)
	l.index++
}

// FormatOffset renders a second count as an MM:SS label on the
// whole-recording timeline.
func FormatOffset(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
