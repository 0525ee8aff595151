package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielostrow/planVision/internal/model"
)

// Event types published on the events feed.
const (
	EventPagesStored    = "pages.stored"
	EventRecordAppended = "record.appended"
)

// Event is one message of the events feed.
type Event struct {
	ID     string                  `json:"id"`
	Type   string                  `json:"type"`
	Time   time.Time               `json:"time"`
	Files  []string                `json:"files,omitempty"`
	Record *model.AnnotationRecord `json:"record,omitempty"`
}

func NewPagesStoredEvent(files []string) Event {
	return Event{ID: uuid.NewString(), Type: EventPagesStored, Time: time.Now().UTC(), Files: files}
}

func NewRecordAppendedEvent(record model.AnnotationRecord) Event {
	return Event{ID: uuid.NewString(), Type: EventRecordAppended, Time: time.Now().UTC(), Record: &record}
}
