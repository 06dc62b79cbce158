package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldscope/survey-service/internal/cache"
	"github.com/fieldscope/survey-service/internal/events"
	"github.com/fieldscope/survey-service/internal/flow"
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/fieldscope/survey-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const definitionCacheTTL = 15 * time.Minute

type surveyService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSurveyService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) SurveyService {
	return &surveyService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *surveyService) Create(ctx context.Context, req *CreateSurveyRequest, userID string) (*SurveyResponse, error) {
	s.logger.Info("Creating survey", "creator_id", userID, "title", req.Title)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Project().GetByID(ctx, req.ProjectID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	survey := &models.Survey{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
	}

	if err := s.repo.Survey().Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	s.logger.Info("Survey created successfully", "survey_id", survey.ID)
	return buildSurveyResponse(survey), nil
}

func (s *surveyService) GetByID(ctx context.Context, id uint) (*SurveyResponse, error) {
	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildSurveyResponse(survey), nil
}

func (s *surveyService) GetDefinition(ctx context.Context, id uint) (*SurveyDetailResponse, error) {
	var cached SurveyDetailResponse
	key := cache.SurveyDefinitionKey(id)
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey definition: %w", err)
	}

	detail := &SurveyDetailResponse{
		SurveyResponse: *buildSurveyResponse(survey),
		Sections:       survey.Sections,
	}

	// Only published definitions are stable enough to cache
	if survey.Status == models.SurveyPublished {
		if err := s.cache.Set(ctx, key, detail, definitionCacheTTL); err != nil {
			s.logger.Warn("Failed to cache survey definition", "survey_id", id, "error", err)
		}
	}
	return detail, nil
}

func (s *surveyService) Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyResponse, error) {
	s.logger.Info("Updating survey", "survey_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getEditableSurvey(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		survey.Title = *req.Title
	}
	if req.Description != nil {
		survey.Description = req.Description
	}

	if err := s.repo.Survey().Update(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to update survey: %w", err)
	}

	s.invalidateDefinition(ctx, id)
	return buildSurveyResponse(survey), nil
}

func (s *surveyService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting survey", "survey_id", id, "user_id", userID)

	if _, err := s.getSurvey(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.Response().CountBySurvey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count responses: %w", err)
	}
	if count > 0 {
		return ErrSurveyNotDeletable
	}

	if err := s.repo.Survey().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete survey: %w", err)
	}

	s.invalidateDefinition(ctx, id)
	s.logger.Info("Survey deleted successfully", "survey_id", id)
	return nil
}

func (s *surveyService) List(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResponse, error) {
	surveys, total, err := s.repo.Survey().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}

	response := &SurveyListResponse{
		Surveys: make([]*SurveyResponse, len(surveys)),
		Total:   total,
		Page:    filters.Offset / max(filters.Limit, 1),
		Size:    filters.Limit,
	}
	for i, survey := range surveys {
		response.Surveys[i] = buildSurveyResponse(survey)
	}
	return response, nil
}

func (s *surveyService) GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error) {
	if _, err := s.getSurvey(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.repo.Survey().GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get survey stats: %w", err)
	}
	return stats, nil
}

// ===== LIFECYCLE =====

func (s *surveyService) Publish(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Publishing survey", "survey_id", id, "user_id", userID)

	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.Status != models.SurveyDraft {
		return ErrSurveyInvalidStatus
	}
	if survey.SectionCount == 0 || survey.QuestionCount == 0 {
		return NewBusinessRuleError("publish_requires_content",
			"survey must have at least one section with one question", map[string]interface{}{
				"survey_id":      id,
				"section_count":  survey.SectionCount,
				"question_count": survey.QuestionCount,
			})
	}

	def, err := flow.ParseDefinition(survey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	issues, err := s.validator.Logic().ValidateDefinition(def)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	// Dangling references degrade to linear advance at respondent time, so
	// they warn rather than block publication.
	if len(issues) > 0 {
		s.logger.Warn("Publishing survey with dangling logic references",
			"survey_id", id, "issue_count", len(issues))
	}

	if err := s.repo.Survey().UpdateStatus(ctx, id, models.SurveyPublished); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSurveyNotFound
		}
		return fmt.Errorf("failed to publish survey: %w", err)
	}

	s.invalidateDefinition(ctx, id)
	s.publishEvent(ctx, events.NewSurveyPublishedEvent(
		survey.ID, survey.Title, survey.ProjectID, survey.Version,
		survey.SectionCount, survey.QuestionCount, userID))

	s.logger.Info("Survey published successfully", "survey_id", id)
	return nil
}

func (s *surveyService) CloseSurvey(ctx context.Context, id uint, userID string) error {
	return s.transition(ctx, id, userID, models.SurveyPublished, models.SurveyClosed, events.EventSurveyClosed)
}

func (s *surveyService) Archive(ctx context.Context, id uint, userID string) error {
	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return err
	}
	if survey.Status == models.SurveyArchived {
		return ErrSurveyInvalidStatus
	}
	if err := s.repo.Survey().UpdateStatus(ctx, id, models.SurveyArchived); err != nil {
		return fmt.Errorf("failed to archive survey: %w", err)
	}
	s.invalidateDefinition(ctx, id)
	s.publishEvent(ctx, events.NewSurveyStatusChangedEvent(
		events.EventSurveyArchived, survey.ID, survey.Title,
		string(survey.Status), string(models.SurveyArchived), userID))
	return nil
}

func (s *surveyService) transition(ctx context.Context, id uint, userID string, from, to models.SurveyStatus, eventType events.EventType) error {
	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return err
	}
	if survey.Status != from {
		return ErrSurveyInvalidStatus
	}
	if err := s.repo.Survey().UpdateStatus(ctx, id, to); err != nil {
		return fmt.Errorf("failed to update survey status: %w", err)
	}
	s.invalidateDefinition(ctx, id)
	s.publishEvent(ctx, events.NewSurveyStatusChangedEvent(
		eventType, survey.ID, survey.Title, string(from), string(to), userID))
	return nil
}

// ===== SECTION MANAGEMENT =====

func (s *surveyService) CreateSection(ctx context.Context, surveyID uint, req *CreateSectionRequest, userID string) (*models.Section, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	section := &models.Section{
		ID:          uuid.NewString(),
		SurveyID:    surveyID,
		OrderNum:    nextSectionOrder(survey),
		Title:       req.Title,
		Description: req.Description,
	}
	if req.SkipLogic != nil {
		raw, err := toJSON(req.SkipLogic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
		}
		section.SkipLogic = raw
	}

	if err := s.repo.Survey().CreateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to create section: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	s.logger.Info("Section created", "survey_id", surveyID, "section_id", section.ID)
	return section, nil
}

func (s *surveyService) UpdateSection(ctx context.Context, surveyID uint, sectionID string, req *UpdateSectionRequest, userID string) (*models.Section, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	section := findSection(survey, sectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}

	if req.Title != nil {
		section.Title = *req.Title
	}
	if req.Description != nil {
		section.Description = req.Description
	}
	if req.SkipLogic != nil {
		raw, err := toJSON(req.SkipLogic)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
		}
		section.SkipLogic = raw
	}

	if err := s.repo.Survey().UpdateSection(ctx, section); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	return section, nil
}

func (s *surveyService) DeleteSection(ctx context.Context, surveyID uint, sectionID string, userID string) error {
	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return err
	}
	if findSection(survey, sectionID) == nil {
		return ErrSectionNotFound
	}

	if err := s.repo.Survey().DeleteSection(ctx, sectionID); err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	s.logger.Info("Section deleted", "survey_id", surveyID, "section_id", sectionID)
	return nil
}

func (s *surveyService) ReorderSections(ctx context.Context, surveyID uint, orderedIDs []string, userID string) error {
	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(survey.Sections) {
		return ErrQuestionOrderInvalid
	}

	if err := s.repo.Survey().ReorderSections(ctx, surveyID, orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder sections: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	return nil
}

// ===== QUESTION MANAGEMENT =====

func (s *surveyService) AddQuestion(ctx context.Context, surveyID uint, sectionID string, req *CreateQuestionRequest, userID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	section := findSection(survey, sectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}

	question := &models.Question{
		ID:        uuid.NewString(),
		SectionID: sectionID,
		OrderNum:  len(section.Questions) + 1,
		Type:      req.Type,
		Text:      req.Text,
		Required:  req.Required,
	}
	if err := applyQuestionPayload(question, req.Options, req.Config); err != nil {
		return nil, err
	}

	if err := s.repo.Survey().CreateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	s.logger.Info("Question created", "survey_id", surveyID, "question_id", question.ID)
	return question, nil
}

func (s *surveyService) UpdateQuestion(ctx context.Context, surveyID uint, questionID string, req *UpdateQuestionRequest, userID string) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	question := findQuestion(survey, questionID)
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	if req.Type != nil {
		question.Type = *req.Type
	}
	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Required != nil {
		question.Required = *req.Required
	}
	if err := applyQuestionPayload(question, req.Options, req.Config); err != nil {
		return nil, err
	}

	if err := s.repo.Survey().UpdateQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	return question, nil
}

func (s *surveyService) DeleteQuestion(ctx context.Context, surveyID uint, questionID string, userID string) error {
	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return err
	}
	if findQuestion(survey, questionID) == nil {
		return ErrQuestionNotFound
	}

	if err := s.repo.Survey().DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	s.logger.Info("Question deleted", "survey_id", surveyID, "question_id", questionID)
	return nil
}

func (s *surveyService) ReorderQuestions(ctx context.Context, surveyID uint, sectionID string, orderedIDs []string, userID string) error {
	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return err
	}
	section := findSection(survey, sectionID)
	if section == nil {
		return ErrSectionNotFound
	}
	if len(orderedIDs) != len(section.Questions) {
		return ErrQuestionOrderInvalid
	}

	if err := s.repo.Survey().ReorderQuestions(ctx, sectionID, orderedIDs); err != nil {
		return fmt.Errorf("failed to reorder questions: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	return nil
}

// DuplicateQuestion copies a question under a fresh id, appended at the end of
// its section. Lineage is recorded in config.originalId, and any
// self-references inside the copied logic are remapped to the new id.
func (s *surveyService) DuplicateQuestion(ctx context.Context, surveyID uint, questionID string, userID string) (*models.Question, error) {
	survey, err := s.getEditableDefinition(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	source := findQuestion(survey, questionID)
	if source == nil {
		return nil, ErrQuestionNotFound
	}
	section := findSection(survey, source.SectionID)
	if section == nil {
		return nil, ErrSectionNotFound
	}

	cfg, err := models.ParseQuestionConfig(source.Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	if cfg.OriginalID == "" {
		cfg.OriginalID = source.ID
	}

	dup := &models.Question{
		ID:        uuid.NewString(),
		SectionID: source.SectionID,
		OrderNum:  len(section.Questions) + 1,
		Type:      source.Type,
		Text:      source.Text,
		Required:  source.Required,
		Options:   source.Options,
	}

	opts, err := models.ParseOptions(source.Options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	view := []flow.Question{{ID: dup.ID, Type: dup.Type, Text: dup.Text, Options: opts, Config: cfg}}
	flow.RemapReferences(source.ID, dup.ID, view)

	raw, err := toJSON(view[0].Config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	dup.Config = raw

	if err := s.repo.Survey().CreateQuestion(ctx, dup); err != nil {
		return nil, fmt.Errorf("failed to duplicate question: %w", err)
	}

	s.invalidateDefinition(ctx, surveyID)
	s.logger.Info("Question duplicated",
		"survey_id", surveyID, "source_id", questionID, "question_id", dup.ID)
	return dup, nil
}

// ===== LOGIC VALIDATION =====

func (s *surveyService) ValidateLogic(ctx context.Context, id uint) ([]flow.LogicIssue, error) {
	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}

	def, err := flow.ParseDefinition(survey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	issues, err := s.validator.Logic().ValidateDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	return issues, nil
}

// ===== HELPERS =====

func (s *surveyService) getSurvey(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	return survey, nil
}

func (s *surveyService) getEditableSurvey(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.getSurvey(ctx, id)
	if err != nil {
		return nil, err
	}
	if survey.Status != models.SurveyDraft {
		return nil, ErrSurveyNotEditable
	}
	return survey, nil
}

func (s *surveyService) getEditableDefinition(ctx context.Context, id uint) (*models.Survey, error) {
	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyNotFound
		}
		return nil, fmt.Errorf("failed to get survey: %w", err)
	}
	if survey.Status != models.SurveyDraft {
		return nil, ErrSurveyNotEditable
	}
	return survey, nil
}

func (s *surveyService) invalidateDefinition(ctx context.Context, surveyID uint) {
	if err := s.cache.DeletePattern(ctx, cache.SurveyPattern(surveyID)); err != nil {
		s.logger.Warn("Failed to invalidate survey cache", "survey_id", surveyID, "error", err)
	}
}

func (s *surveyService) publishEvent(ctx context.Context, event *events.SurveyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish survey event", "event_type", event.Type, "error", err)
	}
}

func buildSurveyResponse(survey *models.Survey) *SurveyResponse {
	return &SurveyResponse{
		ID:            survey.ID,
		ProjectID:     survey.ProjectID,
		Title:         survey.Title,
		Description:   survey.Description,
		Status:        survey.Status,
		Version:       survey.Version,
		CreatedBy:     survey.CreatedBy,
		SectionCount:  survey.SectionCount,
		QuestionCount: survey.QuestionCount,
		CreatedAt:     survey.CreatedAt,
		UpdatedAt:     survey.UpdatedAt,
	}
}

func nextSectionOrder(survey *models.Survey) int {
	maxOrder := 0
	for _, sec := range survey.Sections {
		if sec.OrderNum > maxOrder {
			maxOrder = sec.OrderNum
		}
	}
	return maxOrder + 1
}

func findSection(survey *models.Survey, sectionID string) *models.Section {
	for i := range survey.Sections {
		if survey.Sections[i].ID == sectionID {
			return &survey.Sections[i]
		}
	}
	return nil
}

func findQuestion(survey *models.Survey, questionID string) *models.Question {
	for i := range survey.Sections {
		for j := range survey.Sections[i].Questions {
			if survey.Sections[i].Questions[j].ID == questionID {
				return &survey.Sections[i].Questions[j]
			}
		}
	}
	return nil
}

func applyQuestionPayload(question *models.Question, options []string, cfg *models.QuestionConfig) error {
	if options != nil {
		raw, err := toJSON(options)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
		}
		question.Options = raw
	}
	if cfg != nil {
		raw, err := toJSON(cfg)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
		}
		question.Config = raw
	}
	return nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
