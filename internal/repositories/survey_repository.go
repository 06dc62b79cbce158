package repositories

import (
	"context"

	"github.com/fieldscope/survey-service/internal/models"
)

type SurveyRepository interface {
	Create(ctx context.Context, survey *models.Survey) error
	GetByID(ctx context.Context, id uint) (*models.Survey, error)
	// GetByIDWithDefinition loads the survey with sections and questions
	// ordered for traversal.
	GetByIDWithDefinition(ctx context.Context, id uint) (*models.Survey, error)
	Update(ctx context.Context, survey *models.Survey) error
	UpdateStatus(ctx context.Context, id uint, status models.SurveyStatus) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters SurveyFilters) ([]*models.Survey, int64, error)
	GetByProject(ctx context.Context, projectID uint, filters SurveyFilters) ([]*models.Survey, int64, error)
	ExistsByTitle(ctx context.Context, title string, projectID uint, excludeID *uint) (bool, error)
	GetStats(ctx context.Context, id uint) (*SurveyStats, error)

	// Section and question management; definitions are saved wholesale from
	// the builder.
	CreateSection(ctx context.Context, section *models.Section) error
	UpdateSection(ctx context.Context, section *models.Section) error
	DeleteSection(ctx context.Context, id string) error
	ReorderSections(ctx context.Context, surveyID uint, orderedIDs []string) error

	CreateQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestion(ctx context.Context, question *models.Question) error
	UpdateQuestions(ctx context.Context, questions []*models.Question) error
	DeleteQuestion(ctx context.Context, id string) error
	ReorderQuestions(ctx context.Context, sectionID string, orderedIDs []string) error
	GetQuestion(ctx context.Context, id string) (*models.Question, error)
	GetQuestionsBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error)
}
