package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event type constants for published pipeline events.
const (
	EventTypePipelineCompleted = "pipeline.completed"
	EventTypeIdeasGenerated    = "ideas.generated"
)

// Event is a JSON-encoded notification emitted after a request finishes.
type Event struct {
	EventID      string
	EventVersion int
	EventType    string
	Key          string
	Payload      []byte
	CreatedAt    time.Time
}

// NewEvent creates an event with the given type and partition key.
// The payload is JSON-serialized automatically.
func NewEvent(eventType, key string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		EventID:      uuid.New().String(),
		EventVersion: 1,
		EventType:    eventType,
		Key:          key,
		Payload:      payloadBytes,
		CreatedAt:    time.Now(),
	}, nil
}

// PipelineCompletedPayload is the payload for pipeline.completed events.
type PipelineCompletedPayload struct {
	RequestID      string     `json:"request_id,omitempty"`
	Question       string     `json:"question"`
	Domain         string     `json:"domain"`
	PaperSource    SourceType `json:"paper_source"`
	PapersFound    int        `json:"papers_found"`
	PapersKept     int        `json:"papers_kept"`
	VenuesKept     int        `json:"venues_kept"`
	IdeaCount      int        `json:"idea_count"`
	FallbackIdeas  int        `json:"fallback_ideas"`
	DurationMillis int64      `json:"duration_ms"`
}

// IdeasGeneratedPayload is the payload for ideas.generated events.
type IdeasGeneratedPayload struct {
	RequestID     string `json:"request_id,omitempty"`
	Domain        string `json:"domain"`
	VenueCount    int    `json:"venue_count"`
	PaperCount    int    `json:"paper_count"`
	FallbackIdeas int    `json:"fallback_ideas"`
}
