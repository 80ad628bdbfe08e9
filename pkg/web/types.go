package web

import "github.com/bdedica/tramite/pkg/engine"

// StartProcessRequest opens a new process from a template.
type StartProcessRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// FieldSubmissionRequest is one submitted field value.
type FieldSubmissionRequest struct {
	FieldModelID string `json:"field_model_id" validate:"required"`
	Data         string `json:"data"`
}

// CompleteExecutionRequest finishes a pending execution.
type CompleteExecutionRequest struct {
	Fields       []FieldSubmissionRequest `json:"fields"       validate:"dive"`
	Notes        string                   `json:"notes"        validate:"max=4000"`
	AttachmentID *string                  `json:"attachment_id"`
}

func (r CompleteExecutionRequest) toEngineRequest(userID string) engine.CompleteRequest {
	fields := make([]engine.FieldSubmission, 0, len(r.Fields))

	for _, field := range r.Fields {
		fields = append(fields, engine.FieldSubmission{
			FieldModelID: field.FieldModelID,
			Data:         field.Data,
		})
	}

	return engine.CompleteRequest{
		UserID:       userID,
		Notes:        r.Notes,
		AttachmentID: r.AttachmentID,
		Fields:       fields,
	}
}

// LinkStagesRequest creates the outgoing transition of a stage.
type LinkStagesRequest struct {
	DestinationStageID string `json:"destination_stage_id" validate:"required"`
}
