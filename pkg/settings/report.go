package settings

import "time"

// SourceReport describes one layer applied to the Store.
type SourceReport struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// LoadReport summarizes one initialization run. It never carries values.
type LoadReport struct {
	RunID          string         `json:"run_id" yaml:"run_id"`
	AppName        string         `json:"app_name" yaml:"app_name"`
	Environment    string         `json:"environment" yaml:"environment"`
	RemoteEligible bool           `json:"remote_eligible" yaml:"remote_eligible"`
	Sources        []SourceReport `json:"sources" yaml:"sources"`
	StartedAt      time.Time      `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time      `json:"finished_at" yaml:"finished_at"`
}

// Duration is the wall time the run took.
func (r LoadReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed returns the sources that reported an error.
func (r LoadReport) Failed() []SourceReport {
	var failed []SourceReport
	for _, s := range r.Sources {
		if s.Error != "" {
			failed = append(failed, s)
		}
	}
	return failed
}
