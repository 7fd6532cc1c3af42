package entities

// Utterance is one speaker turn. Timestamp is an MM:SS label on the
// whole-recording timeline.
type Utterance struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}
