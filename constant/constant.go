package constant

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusUnknown    JobStatus = "unknown"
)

func (s JobStatus) String() string {
	return string(s)
}

// Terminal reports whether a job in this status will never progress on its own.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Stage identifies the last operation a worker attempted, kept on the status
// record for operator triage.
type Stage string

const (
	StageLoadManifest Stage = "load_manifest"
	StageFetchSegment Stage = "fetch_segment"
	StageTranscribe   Stage = "transcribe"
	StageSummarize    Stage = "summarize"
	StagePersist      Stage = "persist"
	StageCleanup      Stage = "cleanup"
)

func (s Stage) String() string {
	return string(s)
}

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
