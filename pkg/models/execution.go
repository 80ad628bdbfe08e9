package models

import "time"

// ExecutionStatus values keep the labels of the backing schema.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "PENDENTE"
	ExecutionStatusConcluded ExecutionStatus = "CONCLUIDO"
)

// StageExecution is one occurrence of a process sitting at a particular
// stage. For a given process at most one execution is PENDENTE at any
// time; the engine concludes the current one and creates the next one
// inside the same transaction.
type StageExecution struct {
	ID           string          `json:"id"`
	ProcessID    string          `json:"process_id"`
	StageID      string          `json:"stage_id"`
	UserID       *string         `json:"user_id,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	AttachmentID *string         `json:"attachment_id,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
	Status       ExecutionStatus `json:"status"`
}

// Pending reports whether the execution is still waiting to be worked.
func (e *StageExecution) Pending() bool {
	return e.Status == ExecutionStatusPending
}
