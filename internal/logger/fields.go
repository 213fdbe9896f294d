package logger

import "go.uber.org/zap"

const (
	FieldDocumentID = "document_id"
	FieldPosition   = "position"
	FieldModel      = "ai_model"
)

// DocumentFields returns the fields identifying an analysis unit of work.
// Empty values are skipped.
func DocumentFields(documentID, position string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if documentID != "" {
		fields = append(fields, zap.String(FieldDocumentID, documentID))
	}
	if position != "" {
		fields = append(fields, zap.String(FieldPosition, position))
	}
	return fields
}
