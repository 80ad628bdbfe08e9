package engine

import (
	"encoding/json"

	"github.com/bdedica/tramite/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema returns the JSON Schema a submitted value must satisfy
// for a given field type tag, or "" when the tag is unknown and no type
// check applies.
func payloadSchema(fieldType models.FieldType) string {
	switch fieldType {
	case models.FieldTypeText:
		return `{"type": "string"}`
	case models.FieldTypeNumber:
		return `{"type": "number"}`
	case models.FieldTypeDate:
		return `{"type": "string", "format": "date"}`
	case models.FieldTypeBoolean:
		return `{"type": "boolean"}`
	default:
		return ""
	}
}

// validateFieldData checks one submitted value against the schema of its
// field model. Text and date values are validated as JSON strings;
// number and boolean values must parse as JSON literals of that type.
func validateFieldData(fieldModel *models.FieldModel, data string) *ValidationError {
	schema := payloadSchema(fieldModel.Type)
	if schema == "" {
		return nil
	}

	var document gojsonschema.JSONLoader

	switch fieldModel.Type {
	case models.FieldTypeText, models.FieldTypeDate:
		encoded, err := json.Marshal(data)
		if err != nil {
			return rejectedField(fieldModel, "value is not encodable")
		}

		document = gojsonschema.NewStringLoader(string(encoded))
	default:
		document = gojsonschema.NewStringLoader(data)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), document)
	if err != nil {
		return rejectedField(fieldModel, "value is not a valid "+string(fieldModel.Type))
	}

	if !result.Valid() {
		return rejectedField(fieldModel, "value is not a valid "+string(fieldModel.Type))
	}

	return nil
}

func rejectedField(fieldModel *models.FieldModel, reason string) *ValidationError {
	return &ValidationError{
		FieldModelID: fieldModel.ID,
		FieldName:    fieldModel.Name,
		Reason:       reason,
	}
}
