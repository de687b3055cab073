package model

import "time"

// ChangeType classifies a change feed event.
type ChangeType string

const (
	ChangeRecordCreated     ChangeType = "created"
	ChangeRecordUpdated     ChangeType = "updated"
	ChangeRecordDeleted     ChangeType = "deleted"
	ChangeCollectionCreated ChangeType = "collection_created"
	ChangeCollectionDeleted ChangeType = "collection_deleted"
)

// ChangeEvent is published after every successful mutation. Data carries the
// record after the change, OldData the record before it (nil where not
// applicable). ResumeToken is assigned by the change log when the event is
// appended; clients replay from it.
type ChangeEvent struct {
	Type        ChangeType `json:"type"`
	ProjectID   string     `json:"projectId"`
	Collection  string     `json:"collection"`
	RecordID    string     `json:"recordId,omitempty"`
	Data        Record     `json:"data,omitempty"`
	OldData     Record     `json:"oldData,omitempty"`
	Timestamp   time.Time  `json:"timestamp"`
	ResumeToken string     `json:"resumeToken,omitempty"`
}

// ResourceKey is the change-feed channel the event belongs to; it matches the
// write serializer's lock key for the same collection.
func (e ChangeEvent) ResourceKey() string {
	return NewCollectionRef(e.ProjectID, e.Collection).ResourceKey()
}
