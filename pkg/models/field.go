package models

// FieldType tags the kind of data a field model collects. The tags keep
// the labels of the backing schema.
type FieldType string

const (
	FieldTypeText    FieldType = "texto"
	FieldTypeNumber  FieldType = "numero"
	FieldTypeDate    FieldType = "data"
	FieldTypeBoolean FieldType = "booleano"
)

// FieldModel is the schema definition for one piece of data collected at
// a stage. Reference data, immutable during workflow execution.
type FieldModel struct {
	ID       string    `json:"id"`
	StageID  string    `json:"stage_id"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// FieldValue is one concrete data submission tied to a stage execution
// and a field model. Values are replaced wholesale on each completion,
// never patched.
type FieldValue struct {
	ID           string `json:"id"`
	FieldModelID string `json:"field_model_id"`
	ExecutionID  string `json:"execution_id"`
	Data         string `json:"data"`
}
