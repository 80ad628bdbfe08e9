// Package models defines the domain entities of the tramite process tracker.
package models

// EntryOrdinal is the ordinal of the stage a new process starts at.
// Every template must define exactly one stage with this ordinal.
const EntryOrdinal = 1

// ProcessTemplate is a reusable definition of a multi-stage process.
// Templates are reference data: immutable while processes run on them.
type ProcessTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Stage is one ordered step inside a template. The ordinal is unique per
// template and 1-based; the stage with ordinal 1 is the entry point.
// Responsible names the role whose inbox receives pending executions of
// this stage.
type Stage struct {
	ID                 string `json:"id"`
	TemplateID         string `json:"template_id"`
	Name               string `json:"name"`
	Ordinal            int    `json:"ordinal"`
	Responsible        Role   `json:"responsible"`
	AttachmentRequired bool   `json:"attachment_required"`
}

// Transition is a directed edge between two stages of the same template.
// A stage has at most one outgoing transition; a stage without one is a
// terminal stage and concluding it finishes the process.
type Transition struct {
	ID                 string `json:"id"`
	OriginStageID      string `json:"origin_stage_id"`
	DestinationStageID string `json:"destination_stage_id"`
}
