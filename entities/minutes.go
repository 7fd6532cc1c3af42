package entities

// ActionItem is a model-extracted todo. Items start unconfirmed; a human has
// to accept them before they are treated as authoritative.
type ActionItem struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	Assignee  string `json:"assignee"`
	DueDate   string `json:"due_date,omitempty"`
	Completed bool   `json:"completed"`
	Confirmed bool   `json:"confirmed"`
}

// ScheduleEvent is a model-extracted calendar entry, also unconfirmed at birth.
type ScheduleEvent struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Date      string `json:"date"`
	Time      string `json:"time,omitempty"`
	Confirmed bool   `json:"confirmed"`
}

// Minutes is the structured summary derived from a full transcript.
type Minutes struct {
	Summary   string          `json:"summary"`
	Agenda    []string        `json:"agenda"`
	Todos     []ActionItem    `json:"todos"`
	Schedules []ScheduleEvent `json:"schedules"`
}
