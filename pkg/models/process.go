package models

import "time"

type ProcessStatus string

const (
	ProcessStatusActive    ProcessStatus = "ACTIVE"
	ProcessStatusConcluded ProcessStatus = "CONCLUDED"
)

// Process is one concrete run of a template. It is created once by the
// engine, flipped to CONCLUDED when its terminal stage concludes, and
// never deleted by the engine.
type Process struct {
	ID         string        `json:"id"`
	TemplateID string        `json:"template_id"`
	UserID     string        `json:"user_id"`
	Status     ProcessStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
}

// Active reports whether the process can still advance.
func (p *Process) Active() bool {
	return p.Status == ProcessStatusActive
}
