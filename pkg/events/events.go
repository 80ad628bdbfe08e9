// Package events defines the lifecycle notifications published by the
// execution engine.
package events

import (
	"time"

	"github.com/bdedica/tramite/pkg/models"
)

type EventType string

// Topic carries every engine event.
const Topic = "tramite.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ProcessStartedEvent   EventType = "process.started"
	StageCompletedEvent   EventType = "stage.completed"
	StageAdvancedEvent    EventType = "stage.advanced"
	ProcessConcludedEvent EventType = "process.concluded"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ProcessID string    `json:"process_id"`
}

// ProcessStarted is published when a template is instantiated and its
// entry stage opened.
type ProcessStarted struct {
	BaseEvent

	TemplateID  string `json:"template_id"`
	ExecutionID string `json:"execution_id"`
	StageID     string `json:"stage_id"`
	UserID      string `json:"user_id"`
}

func (e ProcessStarted) GetType() EventType {
	return ProcessStartedEvent
}

// StageCompleted is published whenever an execution is concluded,
// whether or not the process advanced.
type StageCompleted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
	StageID     string `json:"stage_id"`
	UserID      string `json:"user_id,omitempty"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}

// StageAdvanced is published when completing an execution opened the
// next stage of the process.
type StageAdvanced struct {
	BaseEvent

	FromStageID     string      `json:"from_stage_id"`
	ToStageID       string      `json:"to_stage_id"`
	NextExecutionID string      `json:"next_execution_id"`
	NextResponsible models.Role `json:"next_responsible"`
}

func (e StageAdvanced) GetType() EventType {
	return StageAdvancedEvent
}

// ProcessConcluded is published when the terminal stage of a process is
// completed.
type ProcessConcluded struct {
	BaseEvent

	FinalStageID string        `json:"final_stage_id"`
	Duration     time.Duration `json:"duration"`
}

func (e ProcessConcluded) GetType() EventType {
	return ProcessConcludedEvent
}
