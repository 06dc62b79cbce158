package repositories

import (
	"context"

	"github.com/fieldscope/survey-service/internal/models"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *models.Response) error
	GetByID(ctx context.Context, id uint) (*models.Response, error)
	GetByIDWithAnswers(ctx context.Context, id uint) (*models.Response, error)
	GetByClientRef(ctx context.Context, clientRef string) (*models.Response, error)
	Update(ctx context.Context, response *models.Response) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters ResponseFilters) ([]*models.Response, int64, error)
	GetBySurvey(ctx context.Context, surveyID uint, filters ResponseFilters) ([]*models.Response, int64, error)
	CountBySurvey(ctx context.Context, surveyID uint) (int64, error)

	// UpsertAnswer writes or overwrites the respondent's answer for one
	// question within a response.
	UpsertAnswer(ctx context.Context, answer *models.Answer) error
	GetAnswers(ctx context.Context, responseID uint) ([]*models.Answer, error)
}

type SyncBatchRepository interface {
	Create(ctx context.Context, batch *models.SyncBatch) error
	GetByID(ctx context.Context, id uint) (*models.SyncBatch, error)
	GetByDevice(ctx context.Context, deviceID string, limit int) ([]*models.SyncBatch, error)
}
