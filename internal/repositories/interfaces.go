package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/fieldscope/survey-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates all entity repositories behind one handle so services
// depend on a single injection point.
type Repository interface {
	Organization() OrganizationRepository
	Project() ProjectRepository
	Zone() ZoneRepository
	Surveyor() SurveyorRepository
	Survey() SurveyRepository
	Response() ResponseRepository
	SyncBatch() SyncBatchRepository
	User() UserRepository

	// WithTransaction runs fn against a transactional repository; rollback on
	// error, commit otherwise.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the driver's record-not-found.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type SurveyFilters struct {
	Status    *models.SurveyStatus `json:"status"`
	ProjectID *uint                `json:"project_id"`
	CreatedBy *string              `json:"created_by"`
	Search    string               `json:"search"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "title", "status"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type ResponseFilters struct {
	Status     *models.ResponseStatus `json:"status"`
	SurveyID   *uint                  `json:"survey_id"`
	SurveyorID *uint                  `json:"surveyor_id"`
	ZoneID     *uint                  `json:"zone_id"`
	DateFrom   *time.Time             `json:"date_from"`
	DateTo     *time.Time             `json:"date_to"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`
	SortOrder  string                 `json:"sort_order"`
}

type SurveyorFilters struct {
	Status *models.SurveyorStatus `json:"status"`
	ZoneID *uint                  `json:"zone_id"`
	UserID *string                `json:"user_id"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

type SurveyStats struct {
	TotalResponses     int     `json:"total_responses"`
	CompletedResponses int     `json:"completed_responses"`
	InProgress         int     `json:"in_progress"`
	CompletionRate     float64 `json:"completion_rate"`
	SectionCount       int     `json:"section_count"`
	QuestionCount      int     `json:"question_count"`
}

type ZoneStats struct {
	TotalSurveyors  int `json:"total_surveyors"`
	ActiveSurveyors int `json:"active_surveyors"`
	TotalResponses  int `json:"total_responses"`
}
