package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"gorm.io/gorm"
)

type SurveyPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyPostgreSQL(db *gorm.DB) repositories.SurveyRepository {
	return &SurveyPostgreSQL{db: db}
}

func (s *SurveyPostgreSQL) Create(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.ExistsByTitle(ctx, survey.Title, survey.ProjectID, nil)
		if err != nil {
			return fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return fmt.Errorf("survey with title '%s' already exists in this project", survey.Title)
		}

		survey.Status = models.SurveyDraft
		survey.Version = 1
		if err := tx.Create(survey).Error; err != nil {
			return fmt.Errorf("failed to create survey: %w", err)
		}
		return nil
	})
}

func (s *SurveyPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Project").
		First(&survey, id).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (s *SurveyPostgreSQL) GetByIDWithDefinition(ctx context.Context, id uint) (*models.Survey, error) {
	var survey models.Survey
	err := s.db.WithContext(ctx).
		Preload("Project").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		Preload("Sections.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_num ASC")
		}).
		First(&survey, id).Error
	if err != nil {
		return nil, err
	}

	survey.SectionCount = len(survey.Sections)
	for _, sec := range survey.Sections {
		survey.QuestionCount += len(sec.Questions)
	}
	return &survey, nil
}

func (s *SurveyPostgreSQL) Update(ctx context.Context, survey *models.Survey) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Survey
		if err := tx.First(&current, survey.ID).Error; err != nil {
			return fmt.Errorf("survey not found: %w", err)
		}

		if survey.Title != current.Title {
			exists, err := s.ExistsByTitle(ctx, survey.Title, survey.ProjectID, &survey.ID)
			if err != nil {
				return fmt.Errorf("failed to check title uniqueness: %w", err)
			}
			if exists {
				return fmt.Errorf("survey with title '%s' already exists in this project", survey.Title)
			}
		}

		survey.Version = current.Version + 1
		survey.UpdatedAt = time.Now()
		if err := tx.Save(survey).Error; err != nil {
			return fmt.Errorf("failed to update survey: %w", err)
		}
		return nil
	})
}

func (s *SurveyPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.SurveyStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update survey status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *SurveyPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Survey{}, id).Error
}

func (s *SurveyPostgreSQL) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Survey{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProjectID != nil {
		query = query.Where("project_id = ?", *filters.ProjectID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("title ILIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count surveys: %w", err)
	}

	query = applySort(query, filters.SortBy, filters.SortOrder, map[string]bool{
		"created_at": true, "title": true, "status": true,
	})
	query = applyPagination(query, filters.Limit, filters.Offset)

	var surveys []*models.Survey
	if err := query.Find(&surveys).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list surveys: %w", err)
	}
	return surveys, total, nil
}

func (s *SurveyPostgreSQL) GetByProject(ctx context.Context, projectID uint, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	filters.ProjectID = &projectID
	return s.List(ctx, filters)
}

func (s *SurveyPostgreSQL) ExistsByTitle(ctx context.Context, title string, projectID uint, excludeID *uint) (bool, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("title = ? AND project_id = ?", title, projectID)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SurveyPostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error) {
	stats := &repositories.SurveyStats{}

	var total, completed int64
	if err := s.db.WithContext(ctx).Model(&models.Response{}).
		Where("survey_id = ?", id).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Response{}).
		Where("survey_id = ? AND status IN ?", id, []models.ResponseStatus{models.ResponseCompleted, models.ResponseSynced}).
		Count(&completed).Error; err != nil {
		return nil, fmt.Errorf("failed to count completed responses: %w", err)
	}

	stats.TotalResponses = int(total)
	stats.CompletedResponses = int(completed)
	stats.InProgress = int(total - completed)
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total) * 100
	}

	var sections int64
	if err := s.db.WithContext(ctx).Model(&models.Section{}).
		Where("survey_id = ?", id).Count(&sections).Error; err != nil {
		return nil, fmt.Errorf("failed to count sections: %w", err)
	}
	stats.SectionCount = int(sections)

	var questions int64
	if err := s.db.WithContext(ctx).Model(&models.Question{}).
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.survey_id = ?", id).Count(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	stats.QuestionCount = int(questions)

	return stats, nil
}

// ===== SECTIONS =====

func (s *SurveyPostgreSQL) CreateSection(ctx context.Context, section *models.Section) error {
	return s.db.WithContext(ctx).Create(section).Error
}

func (s *SurveyPostgreSQL) UpdateSection(ctx context.Context, section *models.Section) error {
	return s.db.WithContext(ctx).Save(section).Error
}

func (s *SurveyPostgreSQL) DeleteSection(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return fmt.Errorf("failed to delete section questions: %w", err)
		}
		return tx.Delete(&models.Section{ID: id}).Error
	})
}

func (s *SurveyPostgreSQL) ReorderSections(ctx context.Context, surveyID uint, orderedIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&models.Section{}).
				Where("id = ? AND survey_id = ?", id, surveyID).
				Update("order_num", i+1)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder section %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("section %s not found in survey %d", id, surveyID)
			}
		}
		return nil
	})
}

// ===== QUESTIONS =====

func (s *SurveyPostgreSQL) CreateQuestion(ctx context.Context, question *models.Question) error {
	return s.db.WithContext(ctx).Create(question).Error
}

func (s *SurveyPostgreSQL) UpdateQuestion(ctx context.Context, question *models.Question) error {
	return s.db.WithContext(ctx).Save(question).Error
}

func (s *SurveyPostgreSQL) UpdateQuestions(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, q := range questions {
			if err := tx.Save(q).Error; err != nil {
				return fmt.Errorf("failed to update question %s: %w", q.ID, err)
			}
		}
		return nil
	})
}

func (s *SurveyPostgreSQL) DeleteQuestion(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&models.Question{ID: id}).Error
}

func (s *SurveyPostgreSQL) ReorderQuestions(ctx context.Context, sectionID string, orderedIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&models.Question{}).
				Where("id = ? AND section_id = ?", id, sectionID).
				Update("order_num", i+1)
			if result.Error != nil {
				return fmt.Errorf("failed to reorder question %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("question %s not found in section %s", id, sectionID)
			}
		}
		return nil
	})
}

func (s *SurveyPostgreSQL) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := s.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (s *SurveyPostgreSQL) GetQuestionsBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	var questions []*models.Question
	err := s.db.WithContext(ctx).
		Joins("JOIN sections ON sections.id = questions.section_id").
		Where("sections.survey_id = ?", surveyID).
		Order("sections.order_num ASC, questions.order_num ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load survey questions: %w", err)
	}
	return questions, nil
}
