package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ResponseStatus string

const (
	ResponseInProgress ResponseStatus = "in_progress"
	ResponseCompleted  ResponseStatus = "completed"
	ResponseSynced     ResponseStatus = "synced"
)

// Response is one respondent session against a published survey. ClientRef is
// the mobile client's locally generated key, used to deduplicate offline
// replays.
type Response struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SurveyID   uint           `json:"survey_id" gorm:"not null;index"`
	SurveyorID uint           `json:"surveyor_id" gorm:"not null;index"`
	ZoneID     *uint          `json:"zone_id" gorm:"index"`
	Status     ResponseStatus `json:"status" gorm:"default:in_progress;index" validate:"omitempty,oneof=in_progress completed synced"`
	ClientRef  string         `json:"client_ref" gorm:"size:64;uniqueIndex"`

	// Respondent cursor, updated after each answer
	CurrentSectionID  string `json:"current_section_id" gorm:"size:36"`
	CurrentQuestionID string `json:"current_question_id" gorm:"size:36"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Survey   Survey   `json:"survey" gorm:"foreignKey:SurveyID"`
	Surveyor Surveyor `json:"surveyor" gorm:"foreignKey:SurveyorID"`
	Answers  []Answer `json:"answers" gorm:"foreignKey:ResponseID"`
}

// Answer stores the respondent's value as jsonb: string, number or string
// array depending on the question type.
type Answer struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ResponseID uint           `json:"response_id" gorm:"not null;index;uniqueIndex:idx_response_question"`
	QuestionID string         `json:"question_id" gorm:"not null;size:36;uniqueIndex:idx_response_question"`
	Value      datatypes.JSON `json:"value" gorm:"type:jsonb"`

	AnsweredAt time.Time `json:"answered_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Response) TableName() string {
	return "responses"
}

func (Answer) TableName() string {
	return "answers"
}
