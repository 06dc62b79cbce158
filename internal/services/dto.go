package services

import (
	"time"

	"github.com/fieldscope/survey-service/internal/models"
)

// ===== SURVEY DTOS =====

type CreateSurveyRequest struct {
	ProjectID   uint    `json:"project_id" validate:"required"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateSurveyRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type SurveyResponse struct {
	ID            uint                `json:"id"`
	ProjectID     uint                `json:"project_id"`
	Title         string              `json:"title"`
	Description   *string             `json:"description,omitempty"`
	Status        models.SurveyStatus `json:"status"`
	Version       int                 `json:"version"`
	CreatedBy     string              `json:"created_by"`
	SectionCount  int                 `json:"section_count"`
	QuestionCount int                 `json:"question_count"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// SurveyDetailResponse includes the full section and question tree
type SurveyDetailResponse struct {
	SurveyResponse
	Sections []models.Section `json:"sections"`
}

type SurveyListResponse struct {
	Surveys []*SurveyResponse `json:"surveys"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

// ===== SECTION / QUESTION DTOS =====

type CreateSectionRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description"`
	SkipLogic   *models.SectionSkipLogic `json:"skip_logic"`
}

type UpdateSectionRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,max=200"`
	Description *string                  `json:"description"`
	SkipLogic   *models.SectionSkipLogic `json:"skip_logic"`
}

type CreateQuestionRequest struct {
	Type     models.QuestionType   `json:"type" validate:"required,question_type"`
	Text     string                `json:"text" validate:"required"`
	Required bool                  `json:"required"`
	Options  []string              `json:"options"`
	Config   *models.QuestionConfig `json:"config"`
}

type UpdateQuestionRequest struct {
	Type     *models.QuestionType   `json:"type" validate:"omitempty,question_type"`
	Text     *string                `json:"text"`
	Required *bool                  `json:"required"`
	Options  []string               `json:"options"`
	Config   *models.QuestionConfig `json:"config"`
}

// ===== RESPONSE DTOS =====

type StartResponseRequest struct {
	SurveyID   uint   `json:"survey_id" validate:"required"`
	SurveyorID uint   `json:"surveyor_id" validate:"required"`
	ZoneID     *uint  `json:"zone_id"`
	ClientRef  string `json:"client_ref" validate:"omitempty,max=64"`
}

type SubmitAnswerRequest struct {
	QuestionID string      `json:"question_id" validate:"required,max=36"`
	Value      interface{} `json:"value"`
}

// QuestionPointer describes the question the respondent should see next
type QuestionPointer struct {
	SectionID    string              `json:"section_id"`
	SectionTitle string              `json:"section_title"`
	QuestionID   string              `json:"question_id"`
	Text         string              `json:"text"`
	Type         models.QuestionType `json:"type"`
	Options      []string            `json:"options,omitempty"`
	Required     bool                `json:"required"`
}

// ResponseState is returned after starting a response or submitting an
// answer: where the respondent is now, or that the survey is done.
type ResponseState struct {
	ResponseID uint                  `json:"response_id"`
	Status     models.ResponseStatus `json:"status"`
	Done       bool                  `json:"done"`
	Current    *QuestionPointer      `json:"current,omitempty"`
	Answered   int                   `json:"answered"`
}

type ResponseDetail struct {
	ID          uint                  `json:"id"`
	SurveyID    uint                  `json:"survey_id"`
	SurveyorID  uint                  `json:"surveyor_id"`
	ZoneID      *uint                 `json:"zone_id,omitempty"`
	Status      models.ResponseStatus `json:"status"`
	ClientRef   string                `json:"client_ref,omitempty"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Answers     []*models.Answer      `json:"answers,omitempty"`
}

type ResponseListResponse struct {
	Responses []*ResponseDetail `json:"responses"`
	Total     int64             `json:"total"`
	Page      int               `json:"page"`
	Size      int               `json:"size"`
}

// ===== SYNC DTOS =====

type SyncAnswer struct {
	QuestionID string      `json:"question_id" validate:"required,max=36"`
	Value      interface{} `json:"value"`
	AnsweredAt *time.Time  `json:"answered_at"`
}

type SyncItem struct {
	ClientRef   string       `json:"client_ref" validate:"required,max=64"`
	SurveyID    uint         `json:"survey_id" validate:"required"`
	ZoneID      *uint        `json:"zone_id"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at"`
	Answers     []SyncAnswer `json:"answers"`
}

type SyncBatchRequest struct {
	DeviceID   string     `json:"device_id" validate:"required,max=100"`
	SurveyorID uint       `json:"surveyor_id" validate:"required"`
	Items      []SyncItem `json:"items" validate:"required,min=1,dive"`
}

// ===== EXPORT DTOS =====

type ExportResult struct {
	FileName      string `json:"file_name"`
	ContentType   string `json:"content_type"`
	Data          []byte `json:"-"`
	ResponseCount int    `json:"response_count"`
}

// ===== ORGANIZATION DTOS =====

type CreateOrganizationRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"required,max=100,lowercase"`
}

type UpdateOrganizationRequest struct {
	Name *string `json:"name" validate:"omitempty,max=200"`
}

type CreateProjectRequest struct {
	OrganizationID uint    `json:"organization_id" validate:"required"`
	Name           string  `json:"name" validate:"required,max=200"`
	Description    *string `json:"description"`
}

type CreateZoneRequest struct {
	ProjectID uint        `json:"project_id" validate:"required"`
	Name      string      `json:"name" validate:"required,max=200"`
	Geometry  interface{} `json:"geometry"`
}

type AssignSurveyorRequest struct {
	UserID string `json:"user_id" validate:"required,max=255"`
	ZoneID uint   `json:"zone_id" validate:"required"`
}
