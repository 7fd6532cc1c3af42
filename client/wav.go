package client

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// pcmFormat describes the decoded sample layout of a WAV file.
type pcmFormat struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
}

func (f pcmFormat) bytesPerSecond() int {
	return f.SampleRate * f.Channels * f.BitsPerSample / 8
}

func (f pcmFormat) blockAlign() int {
	return f.Channels * f.BitsPerSample / 8
}

var errMalformedWAV = errors.New("malformed wav data")

// decodeWAV parses a RIFF/WAVE container into its format and raw PCM sample
// buffer. Only uncompressed PCM is supported; anything else is a decode error
// the caller surfaces to the user.
func decodeWAV(data []byte) (pcmFormat, []byte, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return pcmFormat{}, nil, errMalformedWAV
	}

	var format pcmFormat
	var pcm []byte
	haveFmt := false

	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return pcmFormat{}, nil, errMalformedWAV
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return pcmFormat{}, nil, fmt.Errorf("%w: unsupported audio format %d", errMalformedWAV, audioFormat)
			}
			format = pcmFormat{
				Channels:      int(binary.LittleEndian.Uint16(data[body+2 : body+4])),
				SampleRate:    int(binary.LittleEndian.Uint32(data[body+4 : body+8])),
				BitsPerSample: int(binary.LittleEndian.Uint16(data[body+14 : body+16])),
			}
			if format.Channels < 1 || format.SampleRate < 1 || format.BitsPerSample%8 != 0 || format.BitsPerSample == 0 {
				return pcmFormat{}, nil, errMalformedWAV
			}
			haveFmt = true
		case "data":
			pcm = data[body : body+chunkSize]
		}

		// Chunks are word aligned.
		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFmt || pcm == nil {
		return pcmFormat{}, nil, errMalformedWAV
	}
	return format, pcm, nil
}

// encodeWAV wraps a PCM slice in a minimal self-contained WAV container so
// each segment is independently decodable.
func encodeWAV(format pcmFormat, pcm []byte) []byte {
	out := make([]byte, 0, 44+len(pcm))
	u32 := func(v int) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(v))
		return b[:]
	}
	u16 := func(v int) []byte {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(v))
		return b[:]
	}

	out = append(out, "RIFF"...)
	out = append(out, u32(36+len(pcm))...)
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = append(out, u32(16)...)
	out = append(out, u16(1)...) // PCM
	out = append(out, u16(format.Channels)...)
	out = append(out, u32(format.SampleRate)...)
	out = append(out, u32(format.bytesPerSecond())...)
	out = append(out, u16(format.blockAlign())...)
	out = append(out, u16(format.BitsPerSample)...)

	out = append(out, "data"...)
	out = append(out, u32(len(pcm))...)
	out = append(out, pcm...)
	return out
}
