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
)

type responseService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewResponseService(repo repositories.Repository, cacheService cache.CacheService, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ResponseService {
	return &responseService{
		repo:      repo,
		cache:     cacheService,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// Start opens a respondent session against a published survey. When the
// client supplies a known client_ref the existing session is returned instead
// of creating a duplicate.
func (s *responseService) Start(ctx context.Context, req *StartResponseRequest) (*ResponseState, error) {
	s.logger.Info("Starting response", "survey_id", req.SurveyID, "surveyor_id", req.SurveyorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.ClientRef != "" {
		existing, err := s.repo.Response().GetByClientRef(ctx, req.ClientRef)
		if err == nil {
			return s.stateFor(ctx, existing)
		}
		if !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check client ref: %w", err)
		}
	}

	survey, def, err := s.loadDefinition(ctx, req.SurveyID)
	if err != nil {
		return nil, err
	}
	switch survey.Status {
	case models.SurveyPublished:
	case models.SurveyClosed:
		return nil, ErrSurveyClosed
	default:
		return nil, ErrSurveyNotPublished
	}

	if _, err := s.repo.Surveyor().GetByID(ctx, req.SurveyorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyorNotFound
		}
		return nil, fmt.Errorf("failed to load surveyor: %w", err)
	}

	walker := flow.NewWalker(def)
	response := &models.Response{
		SurveyID:   req.SurveyID,
		SurveyorID: req.SurveyorID,
		ZoneID:     req.ZoneID,
		ClientRef:  req.ClientRef,
		StartedAt:  time.Now(),
	}
	applyCursor(response, def, walker.Position())

	if err := s.repo.Response().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	s.publishEvent(ctx, events.NewResponseStartedEvent(
		response.ID, response.SurveyID, response.SurveyorID, response.ZoneID, response.StartedAt))

	s.logger.Info("Response started", "response_id", response.ID, "survey_id", req.SurveyID)
	return buildResponseState(def, walker, response, 0), nil
}

func (s *responseService) GetByID(ctx context.Context, id uint) (*ResponseDetail, error) {
	response, err := s.repo.Response().GetByIDWithAnswers(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return buildResponseDetail(response, true), nil
}

func (s *responseService) List(ctx context.Context, filters repositories.ResponseFilters) (*ResponseListResponse, error) {
	responses, total, err := s.repo.Response().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	out := &ResponseListResponse{
		Responses: make([]*ResponseDetail, len(responses)),
		Total:     total,
		Page:      filters.Offset / max(filters.Limit, 1),
		Size:      filters.Limit,
	}
	for i, r := range responses {
		out.Responses[i] = buildResponseDetail(r, false)
	}
	return out, nil
}

// SubmitAnswer records the answer for the question under the cursor and
// advances it through the survey's skip and display logic. When the flow
// terminates the response is completed in the same call.
func (s *responseService) SubmitAnswer(ctx context.Context, responseID uint, req *SubmitAnswerRequest) (*ResponseState, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	response, err := s.getResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response.Status != models.ResponseInProgress {
		return nil, ErrResponseNotActive
	}

	_, def, err := s.loadDefinition(ctx, response.SurveyID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Response().GetAnswers(ctx, responseID)
	if err != nil {
		return nil, err
	}
	answers, err := decodeAnswers(stored)
	if err != nil {
		return nil, err
	}

	walker := flow.ResumeWalker(def, answers, resumePosition(def, response))
	current := walker.Current()
	if current == nil {
		// Cursor already past the end; finish the session
		return s.complete(ctx, def, walker, response, len(answers))
	}
	if current.ID != req.QuestionID {
		return nil, NewBusinessRuleError("answer_out_of_order",
			"answer does not match the current question", map[string]interface{}{
				"expected_question_id": current.ID,
				"received_question_id": req.QuestionID,
			})
	}

	value, err := json.Marshal(req.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answer value: %w", err)
	}
	answer := &models.Answer{
		ResponseID: responseID,
		QuestionID: req.QuestionID,
		Value:      value,
		AnsweredAt: time.Now(),
	}
	if err := s.repo.Response().UpsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	walker.Answer(req.Value)
	answered := len(walker.Answers())

	if walker.Done() {
		return s.complete(ctx, def, walker, response, answered)
	}

	applyCursor(response, def, walker.Position())
	if err := s.repo.Response().Update(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to update response cursor: %w", err)
	}
	return buildResponseState(def, walker, response, answered), nil
}

// Complete force-finishes a session regardless of remaining questions.
func (s *responseService) Complete(ctx context.Context, responseID uint) (*ResponseDetail, error) {
	response, err := s.getResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response.Status == models.ResponseCompleted || response.Status == models.ResponseSynced {
		return nil, ErrResponseCompleted
	}

	answers, err := s.repo.Response().GetAnswers(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if err := s.markCompleted(ctx, response, len(answers)); err != nil {
		return nil, err
	}
	response.Answers = make([]models.Answer, len(answers))
	for i, a := range answers {
		response.Answers[i] = *a
	}
	return buildResponseDetail(response, true), nil
}

// ===== HELPERS =====

func (s *responseService) complete(ctx context.Context, def *flow.Definition, walker *flow.Walker, response *models.Response, answered int) (*ResponseState, error) {
	if err := s.markCompleted(ctx, response, answered); err != nil {
		return nil, err
	}
	return buildResponseState(def, walker, response, answered), nil
}

func (s *responseService) markCompleted(ctx context.Context, response *models.Response, answerCount int) error {
	now := time.Now()
	response.Status = models.ResponseCompleted
	response.CompletedAt = &now
	response.CurrentSectionID = ""
	response.CurrentQuestionID = ""

	if err := s.repo.Response().Update(ctx, response); err != nil {
		return fmt.Errorf("failed to complete response: %w", err)
	}

	s.publishEvent(ctx, events.NewResponseCompletedEvent(
		response.ID, response.SurveyID, response.SurveyorID, response.ZoneID, answerCount, now))

	s.logger.Info("Response completed", "response_id", response.ID, "answers", answerCount)
	return nil
}

func (s *responseService) getResponse(ctx context.Context, id uint) (*models.Response, error) {
	response, err := s.repo.Response().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get response: %w", err)
	}
	return response, nil
}

func (s *responseService) stateFor(ctx context.Context, response *models.Response) (*ResponseState, error) {
	_, def, err := s.loadDefinition(ctx, response.SurveyID)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Response().GetAnswers(ctx, response.ID)
	if err != nil {
		return nil, err
	}
	answers, err := decodeAnswers(stored)
	if err != nil {
		return nil, err
	}
	walker := flow.ResumeWalker(def, answers, resumePosition(def, response))
	return buildResponseState(def, walker, response, len(answers)), nil
}

func (s *responseService) loadDefinition(ctx context.Context, surveyID uint) (*models.Survey, *flow.Definition, error) {
	survey, err := s.repo.Survey().GetByIDWithDefinition(ctx, surveyID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrSurveyNotFound
		}
		return nil, nil, fmt.Errorf("failed to get survey definition: %w", err)
	}
	def, err := flow.ParseDefinition(survey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidLogicConfig, err)
	}
	return survey, def, nil
}

func (s *responseService) publishEvent(ctx context.Context, event *events.SurveyEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSurveyEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish survey event", "event_type", event.Type, "error", err)
	}
}

// resumePosition maps the persisted cursor back into the definition. A cursor
// pointing at a since-deleted question restarts its section, or the survey.
func resumePosition(def *flow.Definition, response *models.Response) flow.Position {
	if response.CurrentQuestionID != "" {
		if pos, ok := def.PositionOf(response.CurrentQuestionID); ok {
			return pos
		}
	}
	if response.CurrentSectionID != "" {
		if idx, ok := def.SectionIndexOf(response.CurrentSectionID); ok {
			return flow.Position{SectionIndex: idx, QuestionIndex: 0}
		}
	}
	return flow.Position{SectionIndex: 0, QuestionIndex: 0}
}

func applyCursor(response *models.Response, def *flow.Definition, pos flow.Position) {
	if pos.IsEnd() {
		response.CurrentSectionID = ""
		response.CurrentQuestionID = ""
		return
	}
	if sec := def.SectionAt(pos.SectionIndex); sec != nil {
		response.CurrentSectionID = sec.ID
	}
	if q := def.QuestionAt(pos); q != nil {
		response.CurrentQuestionID = q.ID
	}
}

func decodeAnswers(stored []*models.Answer) (flow.Answers, error) {
	answers := flow.Answers{}
	for _, a := range stored {
		if len(a.Value) == 0 {
			continue
		}
		var value interface{}
		if err := json.Unmarshal(a.Value, &value); err != nil {
			return nil, fmt.Errorf("failed to decode answer for question %s: %w", a.QuestionID, err)
		}
		answers[a.QuestionID] = value
	}
	return answers, nil
}

func buildResponseState(def *flow.Definition, walker *flow.Walker, response *models.Response, answered int) *ResponseState {
	state := &ResponseState{
		ResponseID: response.ID,
		Status:     response.Status,
		Done:       walker.Done(),
		Answered:   answered,
	}
	if walker.Done() {
		return state
	}

	pos := walker.Position()
	q := walker.Current()
	sec := def.SectionAt(pos.SectionIndex)
	if q == nil || sec == nil {
		state.Done = true
		return state
	}
	state.Current = &QuestionPointer{
		SectionID:    sec.ID,
		SectionTitle: sec.Title,
		QuestionID:   q.ID,
		Text:         q.Text,
		Type:         q.Type,
		Options:      q.Options,
		Required:     q.Required,
	}
	return state
}

func buildResponseDetail(response *models.Response, includeAnswers bool) *ResponseDetail {
	detail := &ResponseDetail{
		ID:          response.ID,
		SurveyID:    response.SurveyID,
		SurveyorID:  response.SurveyorID,
		ZoneID:      response.ZoneID,
		Status:      response.Status,
		ClientRef:   response.ClientRef,
		StartedAt:   response.StartedAt,
		CompletedAt: response.CompletedAt,
	}
	if includeAnswers {
		detail.Answers = make([]*models.Answer, len(response.Answers))
		for i := range response.Answers {
			detail.Answers[i] = &response.Answers[i]
		}
	}
	return detail
}
