package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fieldscope/survey-service/internal/events"
	"github.com/fieldscope/survey-service/internal/flow"
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/pkg/workerpool"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/fieldscope/survey-service/internal/validator"
)

// maxSyncBatchItems caps a single device upload
const maxSyncBatchItems = 500

const (
	publishRetries    = 3
	publishRetryDelay = 500 * time.Millisecond
)

const (
	syncStatusCreated   = "created"
	syncStatusDuplicate = "duplicate"
	syncStatusError     = "error"
)

type syncService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	pool      *workerpool.WorkerPool
}

func NewSyncService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, workers int) SyncService {
	if workers < 1 {
		workers = 4
	}
	return &syncService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
		pool:      workerpool.NewWorkerPool(context.Background(), workers, workers*4, logger),
	}
}

// ProcessBatch replays a device's offline responses. Items are keyed by
// client_ref: a ref the server has already seen reports as duplicate and is
// otherwise ignored, so devices can retry uploads safely.
func (s *syncService) ProcessBatch(ctx context.Context, req *SyncBatchRequest) (*models.SyncSummary, error) {
	started := time.Now()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrSyncBatchEmpty
	}
	if len(req.Items) > maxSyncBatchItems {
		return nil, ErrSyncBatchTooLarge
	}

	s.logger.Info("Processing sync batch",
		"device_id", req.DeviceID, "surveyor_id", req.SurveyorID, "items", len(req.Items))

	if _, err := s.repo.Surveyor().GetByID(ctx, req.SurveyorID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyorNotFound
		}
		return nil, fmt.Errorf("failed to load surveyor: %w", err)
	}

	results := make([]models.SyncItemResult, len(req.Items))
	definitions := newDefinitionLoader(s.repo)

	var mu sync.Mutex
	jobs := make([]workerpool.Job, len(req.Items))
	for i := range req.Items {
		i := i
		item := req.Items[i]
		jobs[i] = func(jobCtx context.Context) {
			result := s.replayItem(jobCtx, req.SurveyorID, &item, definitions)
			mu.Lock()
			results[i] = result
			mu.Unlock()
		}
	}
	if err := s.pool.RunAll(ctx, jobs); err != nil {
		return nil, fmt.Errorf("sync batch aborted: %w", err)
	}

	summary := &models.SyncSummary{
		Total:   len(req.Items),
		Items:   results,
		Elapsed: time.Since(started),
	}
	for _, r := range results {
		switch r.Status {
		case syncStatusCreated:
			summary.Created++
		case syncStatusDuplicate:
			summary.Duplicates++
		default:
			summary.Errors++
		}
	}

	batch := &models.SyncBatch{
		DeviceID:   req.DeviceID,
		SurveyorID: req.SurveyorID,
		ItemCount:  len(req.Items),
		ReceivedAt: started,
	}
	if raw, err := json.Marshal(summary); err == nil {
		batch.Summary = raw
	}
	if err := s.repo.SyncBatch().Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to record sync batch: %w", err)
	}

	s.publishEvent(ctx, events.NewSyncBatchReceivedEvent(
		batch.ID, req.DeviceID, req.SurveyorID,
		summary.Total, summary.Created, summary.Duplicates, summary.Errors, started))

	s.logger.Info("Sync batch processed",
		"batch_id", batch.ID,
		"created", summary.Created,
		"duplicates", summary.Duplicates,
		"errors", summary.Errors,
		"elapsed", summary.Elapsed)
	return summary, nil
}

func (s *syncService) GetBatchHistory(ctx context.Context, deviceID string, limit int) ([]*models.SyncBatch, error) {
	batches, err := s.repo.SyncBatch().GetByDevice(ctx, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync history: %w", err)
	}
	return batches, nil
}

// replayItem recreates one offline response inside a transaction. Each item
// succeeds or fails on its own; one bad item never sinks the batch.
func (s *syncService) replayItem(ctx context.Context, surveyorID uint, item *SyncItem, definitions *definitionLoader) models.SyncItemResult {
	result := models.SyncItemResult{ClientRef: item.ClientRef}

	if existing, err := s.repo.Response().GetByClientRef(ctx, item.ClientRef); err == nil {
		result.Status = syncStatusDuplicate
		result.ResponseID = existing.ID
		return result
	} else if !repositories.IsNotFoundError(err) {
		result.Status = syncStatusError
		result.Error = err.Error()
		return result
	}

	survey, def, err := definitions.load(ctx, item.SurveyID)
	if err != nil {
		result.Status = syncStatusError
		result.Error = err.Error()
		return result
	}
	if survey.Status != models.SurveyPublished && survey.Status != models.SurveyClosed {
		result.Status = syncStatusError
		result.Error = ErrSurveyNotPublished.Error()
		return result
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		startedAt := item.StartedAt
		if startedAt.IsZero() {
			startedAt = time.Now()
		}
		response := &models.Response{
			SurveyID:   item.SurveyID,
			SurveyorID: surveyorID,
			ZoneID:     item.ZoneID,
			ClientRef:  item.ClientRef,
			StartedAt:  startedAt,
		}
		if err := tx.Response().Create(ctx, response); err != nil {
			return fmt.Errorf("failed to create response: %w", err)
		}

		answers := flow.Answers{}
		for _, a := range item.Answers {
			value, err := json.Marshal(a.Value)
			if err != nil {
				return fmt.Errorf("failed to encode answer for question %s: %w", a.QuestionID, err)
			}
			answeredAt := time.Now()
			if a.AnsweredAt != nil {
				answeredAt = *a.AnsweredAt
			}
			answer := &models.Answer{
				ResponseID: response.ID,
				QuestionID: a.QuestionID,
				Value:      value,
				AnsweredAt: answeredAt,
			}
			if err := tx.Response().UpsertAnswer(ctx, answer); err != nil {
				return fmt.Errorf("failed to store answer for question %s: %w", a.QuestionID, err)
			}
			answers[a.QuestionID] = a.Value
		}

		// Replay the flow over the collected answers to settle the cursor
		walker := flow.ResumeWalker(def, answers, flow.Position{SectionIndex: 0, QuestionIndex: 0})
		for !walker.Done() {
			q := walker.Current()
			value, ok := answers[q.ID]
			if !ok {
				break
			}
			walker.Answer(value)
		}

		if item.CompletedAt != nil || walker.Done() {
			completedAt := time.Now()
			if item.CompletedAt != nil {
				completedAt = *item.CompletedAt
			}
			response.Status = models.ResponseSynced
			response.CompletedAt = &completedAt
		} else {
			applyCursor(response, def, walker.Position())
		}
		if err := tx.Response().Update(ctx, response); err != nil {
			return fmt.Errorf("failed to finalize response: %w", err)
		}

		result.ResponseID = response.ID
		return nil
	})
	if err != nil {
		result.Status = syncStatusError
		result.Error = err.Error()
		return result
	}

	result.Status = syncStatusCreated
	return result
}

// Close drains the replay pool. In-flight batch items finish; new batches
// must not be submitted after Close.
func (s *syncService) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.pool.Shutdown(ctx)
	return nil
}

// publishEvent retries transient broker failures before giving up. Batch
// summaries feed device health dashboards, so losing one matters.
func (s *syncService) publishEvent(ctx context.Context, event *events.SurveyEvent) {
	if s.publisher == nil {
		return
	}
	publish := workerpool.WithRetry(publishRetries, publishRetryDelay, s.logger, func() error {
		return s.publisher.PublishSurveyEvent(ctx, event)
	})
	publish(ctx)
}

// definitionLoader memoizes parsed definitions for the duration of one batch,
// since a batch typically replays many responses against the same survey.
type definitionLoader struct {
	repo repositories.Repository

	mu      sync.Mutex
	surveys map[uint]*models.Survey
	defs    map[uint]*flow.Definition
}

func newDefinitionLoader(repo repositories.Repository) *definitionLoader {
	return &definitionLoader{
		repo:    repo,
		surveys: make(map[uint]*models.Survey),
		defs:    make(map[uint]*flow.Definition),
	}
}

func (l *definitionLoader) load(ctx context.Context, surveyID uint) (*models.Survey, *flow.Definition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if survey, ok := l.surveys[surveyID]; ok {
		return survey, l.defs[surveyID], nil
	}

	survey, err := l.repo.Survey().GetByIDWithDefinition(ctx, surveyID)
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
	l.surveys[surveyID] = survey
	l.defs[surveyID] = def
	return survey, def, nil
}
