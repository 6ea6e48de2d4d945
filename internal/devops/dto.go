package devops

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field reference names used by the analyzer.
const (
	FieldState        = "System.State"
	FieldChangedDate  = "System.ChangedDate"
	FieldTitle        = "System.Title"
	FieldWorkItemType = "System.WorkItemType"
	FieldCreatedDate  = "System.CreatedDate"
)

// UpdatesResponse is the top-level container for the work item updates API.
type UpdatesResponse struct {
	Count int         `json:"count"`
	Value []UpdateDTO `json:"value"`
}

// UpdateDTO is a single revision of a work item.
type UpdateDTO struct {
	ID          int                       `json:"id"`
	WorkItemID  int                       `json:"workItemId"`
	Rev         int                       `json:"rev"`
	RevisedDate string                    `json:"revisedDate"`
	Fields      map[string]FieldChangeDTO `json:"fields,omitempty"`
}

// FieldChangeDTO is a single field change within an update.
// The API normally sends {"oldValue": ..., "newValue": ...}; a bare scalar is
// accepted too and read as the new value.
type FieldChangeDTO struct {
	OldValue any `json:"oldValue,omitempty"`
	NewValue any `json:"newValue,omitempty"`
}

func (f *FieldChangeDTO) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		type plain FieldChangeDTO
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*f = FieldChangeDTO(p)
		return nil
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*f = FieldChangeDTO{NewValue: v}
	return nil
}

// NewString returns the new value as a string, or "" when absent.
func (f FieldChangeDTO) NewString() string {
	return asString(f.NewValue)
}

// WorkItemDTO represents a work item with its expanded fields.
type WorkItemDTO struct {
	ID     int            `json:"id"`
	Rev    int            `json:"rev"`
	Fields map[string]any `json:"fields"`
}

// WiqlResponse is the result of running a saved WIQL query.
type WiqlResponse struct {
	QueryType string           `json:"queryType"`
	WorkItems []WorkItemRefDTO `json:"workItems"`
}

// WorkItemRefDTO references a work item in query results.
type WorkItemRefDTO struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
