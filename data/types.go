package data

import "time"

func Version() string {
	return "1.0"
}

// Status is the externally visible session state reported by the status
// command.
type Status struct {
	Active    bool          `json:"active"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Domains   int           `json:"domains"`
}
