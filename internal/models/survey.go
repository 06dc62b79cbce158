package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SurveyStatus string

const (
	SurveyDraft     SurveyStatus = "Draft"
	SurveyPublished SurveyStatus = "Published"
	SurveyClosed    SurveyStatus = "Closed"
	SurveyArchived  SurveyStatus = "Archived"
)

type QuestionType string

const (
	TypeText           QuestionType = "text"
	TypeNumber         QuestionType = "number"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeCheckbox       QuestionType = "checkbox"
	TypeDropdown       QuestionType = "dropdown"
	TypeDate           QuestionType = "date"
	TypePhoto          QuestionType = "photo"
	TypeSignature      QuestionType = "signature"
	TypeLocation       QuestionType = "location"
)

type Survey struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	ProjectID   uint         `json:"project_id" gorm:"not null;index"`
	Title       string       `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string      `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`
	Status      SurveyStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,survey_status"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Version control
	Version int `json:"version" gorm:"default:1"`

	// Relations
	Project  Project   `json:"project" gorm:"foreignKey:ProjectID"`
	Sections []Section `json:"sections" gorm:"foreignKey:SurveyID"`

	// Computed fields (not stored)
	SectionCount  int `json:"section_count" gorm:"-"`
	QuestionCount int `json:"question_count" gorm:"-"`
	ResponseCount int `json:"response_count" gorm:"-"`
}

// Section groups questions and defines the default linear traversal order
// through OrderNum. SkipLogic is evaluated once, when the respondent finishes
// the section's last visible question.
type Section struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	SurveyID    uint    `json:"survey_id" gorm:"not null;index;uniqueIndex:idx_section_order"`
	OrderNum    int     `json:"order_num" gorm:"not null;uniqueIndex:idx_section_order"`
	Title       string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Description *string `json:"description" gorm:"type:text"`

	// SectionSkipLogic as jsonb
	SkipLogic datatypes.JSON `json:"skip_logic" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []Question `json:"questions" gorm:"foreignKey:SectionID"`
}

// Question carries its branching and display configuration in Config
// (QuestionConfig as jsonb). IDs are UUID strings: duplication assigns a new
// ID and records lineage in Config.OriginalID so rule targets can be remapped.
type Question struct {
	ID        string       `json:"id" gorm:"primaryKey;size:36"`
	SectionID string       `json:"section_id" gorm:"not null;size:36;index"`
	OrderNum  int          `json:"order_num" gorm:"not null"`
	Type      QuestionType `json:"type" gorm:"not null;size:30" validate:"required,question_type"`
	Text      string       `json:"text" gorm:"not null;type:text" validate:"required"`
	Required  bool         `json:"required" gorm:"default:false"`

	// Options for choice-based types, as jsonb []string
	Options datatypes.JSON `json:"options" gorm:"type:jsonb"`

	// QuestionConfig as jsonb
	Config datatypes.JSON `json:"config" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Survey) TableName() string {
	return "surveys"
}

func (Section) TableName() string {
	return "sections"
}

func (Question) TableName() string {
	return "questions"
}
