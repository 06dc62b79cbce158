package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponsePostgreSQL struct {
	db *gorm.DB
}

func NewResponsePostgreSQL(db *gorm.DB) repositories.ResponseRepository {
	return &ResponsePostgreSQL{db: db}
}

func (r *ResponsePostgreSQL) Create(ctx context.Context, response *models.Response) error {
	if response.StartedAt.IsZero() {
		response.StartedAt = time.Now()
	}
	response.Status = models.ResponseInProgress
	return r.db.WithContext(ctx).Create(response).Error
}

func (r *ResponsePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	var response models.Response
	if err := r.db.WithContext(ctx).First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) GetByIDWithAnswers(ctx context.Context, id uint) (*models.Response, error) {
	var response models.Response
	err := r.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB {
			return db.Order("answered_at ASC")
		}).
		First(&response, id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) GetByClientRef(ctx context.Context, clientRef string) (*models.Response, error) {
	var response models.Response
	err := r.db.WithContext(ctx).First(&response, "client_ref = ?", clientRef).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *ResponsePostgreSQL) Update(ctx context.Context, response *models.Response) error {
	return r.db.WithContext(ctx).Save(response).Error
}

func (r *ResponsePostgreSQL) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Response{}, id).Error
}

func (r *ResponsePostgreSQL) List(ctx context.Context, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Response{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.SurveyID != nil {
		query = query.Where("survey_id = ?", *filters.SurveyID)
	}
	if filters.SurveyorID != nil {
		query = query.Where("surveyor_id = ?", *filters.SurveyorID)
	}
	if filters.ZoneID != nil {
		query = query.Where("zone_id = ?", *filters.ZoneID)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count responses: %w", err)
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "started_at": true, "completed_at": true,
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	var responses []*models.Response
	if err := query.Find(&responses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, total, nil
}

func (r *ResponsePostgreSQL) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	filters.SurveyID = &surveyID
	return r.List(ctx, filters)
}

func (r *ResponsePostgreSQL) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Response{}).
		Where("survey_id = ?", surveyID).Count(&count).Error
	return count, err
}

func (r *ResponsePostgreSQL) UpsertAnswer(ctx context.Context, answer *models.Answer) error {
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "response_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "answered_at", "updated_at"}),
		}).
		Create(answer).Error
}

func (r *ResponsePostgreSQL) GetAnswers(ctx context.Context, responseID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := r.db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Order("answered_at ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return answers, nil
}

// ===== SYNC BATCHES =====

type SyncBatchPostgreSQL struct {
	db *gorm.DB
}

func NewSyncBatchPostgreSQL(db *gorm.DB) repositories.SyncBatchRepository {
	return &SyncBatchPostgreSQL{db: db}
}

func (s *SyncBatchPostgreSQL) Create(ctx context.Context, batch *models.SyncBatch) error {
	if batch.ReceivedAt.IsZero() {
		batch.ReceivedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(batch).Error
}

func (s *SyncBatchPostgreSQL) GetByID(ctx context.Context, id uint) (*models.SyncBatch, error) {
	var batch models.SyncBatch
	if err := s.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *SyncBatchPostgreSQL) GetByDevice(ctx context.Context, deviceID string, limit int) ([]*models.SyncBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	var batches []*models.SyncBatch
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("received_at DESC").
		Limit(limit).
		Find(&batches).Error
	return batches, err
}
