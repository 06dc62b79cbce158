package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of survey events
type EventType string

const (
	// Survey lifecycle events
	EventSurveyPublished EventType = "survey.published"
	EventSurveyClosed    EventType = "survey.closed"
	EventSurveyArchived  EventType = "survey.archived"

	// Response events
	EventResponseStarted   EventType = "response.started"
	EventResponseCompleted EventType = "response.completed"

	// Sync events
	EventSyncBatchReceived EventType = "sync.batch_received"

	// Export events
	EventExportGenerated EventType = "export.generated"
)

// SurveyEvent is the base event structure for all survey events
type SurveyEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Survey lifecycle event payloads

type SurveyPublishedEvent struct {
	SurveyID      uint   `json:"survey_id"`
	SurveyTitle   string `json:"survey_title"`
	ProjectID     uint   `json:"project_id"`
	SurveyVersion int    `json:"survey_version"`
	SectionCount  int    `json:"section_count"`
	QuestionCount int    `json:"question_count"`
	PublishedBy   string `json:"published_by"`
}

type SurveyStatusChangedEvent struct {
	SurveyID    uint   `json:"survey_id"`
	SurveyTitle string `json:"survey_title"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	ChangedBy   string `json:"changed_by"`
}

// Response event payloads

type ResponseStartedEvent struct {
	ResponseID uint      `json:"response_id"`
	SurveyID   uint      `json:"survey_id"`
	SurveyorID uint      `json:"surveyor_id"`
	ZoneID     *uint     `json:"zone_id,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

type ResponseCompletedEvent struct {
	ResponseID  uint      `json:"response_id"`
	SurveyID    uint      `json:"survey_id"`
	SurveyorID  uint      `json:"surveyor_id"`
	ZoneID      *uint     `json:"zone_id,omitempty"`
	AnswerCount int       `json:"answer_count"`
	CompletedAt time.Time `json:"completed_at"`
}

// Sync event payloads

type SyncBatchReceivedEvent struct {
	BatchID    uint      `json:"batch_id"`
	DeviceID   string    `json:"device_id"`
	SurveyorID uint      `json:"surveyor_id"`
	ItemCount  int       `json:"item_count"`
	Created    int       `json:"created"`
	Duplicates int       `json:"duplicates"`
	Errors     int       `json:"errors"`
	ReceivedAt time.Time `json:"received_at"`
}

// Export event payloads

type ExportGeneratedEvent struct {
	SurveyID      uint      `json:"survey_id"`
	SurveyTitle   string    `json:"survey_title"`
	Format        string    `json:"format"`
	ResponseCount int       `json:"response_count"`
	RequestedBy   string    `json:"requested_by"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// Event factory functions

func NewSurveyPublishedEvent(surveyID uint, title string, projectID uint, version, sectionCount, questionCount int, publishedBy string) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSurveyPublished,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: SurveyPublishedEvent{
			SurveyID:      surveyID,
			SurveyTitle:   title,
			ProjectID:     projectID,
			SurveyVersion: version,
			SectionCount:  sectionCount,
			QuestionCount: questionCount,
			PublishedBy:   publishedBy,
		},
	}
}

func NewSurveyStatusChangedEvent(eventType EventType, surveyID uint, title, oldStatus, newStatus, changedBy string) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: SurveyStatusChangedEvent{
			SurveyID:    surveyID,
			SurveyTitle: title,
			OldStatus:   oldStatus,
			NewStatus:   newStatus,
			ChangedBy:   changedBy,
		},
	}
}

func NewResponseStartedEvent(responseID, surveyID, surveyorID uint, zoneID *uint, startedAt time.Time) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventResponseStarted,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: ResponseStartedEvent{
			ResponseID: responseID,
			SurveyID:   surveyID,
			SurveyorID: surveyorID,
			ZoneID:     zoneID,
			StartedAt:  startedAt,
		},
	}
}

func NewResponseCompletedEvent(responseID, surveyID, surveyorID uint, zoneID *uint, answerCount int, completedAt time.Time) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventResponseCompleted,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: ResponseCompletedEvent{
			ResponseID:  responseID,
			SurveyID:    surveyID,
			SurveyorID:  surveyorID,
			ZoneID:      zoneID,
			AnswerCount: answerCount,
			CompletedAt: completedAt,
		},
	}
}

func NewSyncBatchReceivedEvent(batchID uint, deviceID string, surveyorID uint, itemCount, created, duplicates, errors int, receivedAt time.Time) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventSyncBatchReceived,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: SyncBatchReceivedEvent{
			BatchID:    batchID,
			DeviceID:   deviceID,
			SurveyorID: surveyorID,
			ItemCount:  itemCount,
			Created:    created,
			Duplicates: duplicates,
			Errors:     errors,
			ReceivedAt: receivedAt,
		},
	}
}

func NewExportGeneratedEvent(surveyID uint, title, format string, responseCount int, requestedBy string) *SurveyEvent {
	return &SurveyEvent{
		ID:        GenerateEventID(),
		Type:      EventExportGenerated,
		Timestamp: time.Now(),
		Source:    "survey-service",
		Version:   "1.0",
		Data: ExportGeneratedEvent{
			SurveyID:      surveyID,
			SurveyTitle:   title,
			Format:        format,
			ResponseCount: responseCount,
			RequestedBy:   requestedBy,
			GeneratedAt:   time.Now(),
		},
	}
}

// GenerateEventID returns a unique identifier for an event
func GenerateEventID() string {
	return uuid.NewString()
}
