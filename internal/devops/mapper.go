package devops

import (
	"azdo-flow/internal/history"
	"azdo-flow/internal/workitem"
)

// ToStateEvents extracts the state changes from a work item's update history.
// Updates that do not touch System.State are dropped. The event keeps both
// timestamp candidates; history decides which one applies.
func ToStateEvents(updates []UpdateDTO) []history.StateChangeEvent {
	events := make([]history.StateChangeEvent, 0, len(updates))
	for _, u := range updates {
		state, ok := u.Fields[FieldState]
		if !ok {
			continue
		}
		events = append(events, history.StateChangeEvent{
			NewState:    state.NewString(),
			ChangedDate: u.Fields[FieldChangedDate].NewString(),
			RevisedDate: u.RevisedDate,
		})
	}
	return events
}

// ToDetails maps the expanded work item fields to the metadata view.
// Missing or unparseable fields are left zero.
func ToDetails(dto *WorkItemDTO) workitem.Details {
	if dto == nil {
		return workitem.Details{}
	}

	d := workitem.Details{
		ID:    dto.ID,
		Title: asString(dto.Fields[FieldTitle]),
		Type:  asString(dto.Fields[FieldWorkItemType]),
		State: asString(dto.Fields[FieldState]),
	}
	if created, err := history.ParseTime(asString(dto.Fields[FieldCreatedDate])); err == nil {
		d.Created = created
	}
	return d
}
