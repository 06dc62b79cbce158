package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fieldscope/survey-service/internal/events"
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSyncServiceForTest(repo *MockRepository) (SyncService, *events.MockEventPublisher) {
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewSyncService(repo, publisher, testLogger(), validator.New(), 2)
	return svc, publisher
}

func TestSyncService_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed batch of duplicate, created and failing items", func(t *testing.T) {
		repo := newMockRepository()
		completedAt := time.Now().Add(-time.Hour)

		repo.surveyorRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Surveyor{ID: 5}, nil)

		repo.responseRepo.On("GetByClientRef", mock.Anything, "ref-dup").
			Return(&models.Response{ID: 3, ClientRef: "ref-dup", Status: models.ResponseSynced}, nil)
		repo.responseRepo.On("GetByClientRef", mock.Anything, "ref-new").
			Return(nil, gorm.ErrRecordNotFound)
		repo.responseRepo.On("GetByClientRef", mock.Anything, "ref-bad").
			Return(nil, gorm.ErrRecordNotFound)

		repo.surveyRepo.On("GetByIDWithDefinition", mock.Anything, uint(1)).
			Return(publishedSurveyFixture(t), nil)
		repo.surveyRepo.On("GetByIDWithDefinition", mock.Anything, uint(99)).
			Return(nil, gorm.ErrRecordNotFound)

		repo.responseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
			return r.ClientRef == "ref-new" && r.SurveyID == 1 && r.SurveyorID == 5
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Response).ID = 11
		})
		repo.responseRepo.On("UpsertAnswer", mock.Anything, mock.MatchedBy(func(a *models.Answer) bool {
			return a.ResponseID == 11
		})).Return(nil)
		repo.responseRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
			return r.ID == 11 && r.Status == models.ResponseSynced && r.CompletedAt != nil
		})).Return(nil)

		repo.syncBatchRepo.On("Create", mock.Anything, mock.MatchedBy(func(b *models.SyncBatch) bool {
			return b.DeviceID == "device-1" && b.ItemCount == 3 && len(b.Summary) > 0
		})).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*models.SyncBatch).ID = 1
		})

		svc, publisher := newSyncServiceForTest(repo)
		summary, err := svc.ProcessBatch(ctx, &SyncBatchRequest{
			DeviceID:   "device-1",
			SurveyorID: 5,
			Items: []SyncItem{
				{ClientRef: "ref-dup", SurveyID: 1},
				{
					ClientRef:   "ref-new",
					SurveyID:    1,
					StartedAt:   completedAt.Add(-10 * time.Minute),
					CompletedAt: &completedAt,
					Answers: []SyncAnswer{
						{QuestionID: "q-consent", Value: "no"},
						{QuestionID: "q-remarks", Value: "done offline"},
					},
				},
				{ClientRef: "ref-bad", SurveyID: 99},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 1, summary.Created)
		assert.Equal(t, 1, summary.Duplicates)
		assert.Equal(t, 1, summary.Errors)

		// Result order follows item order
		require.Len(t, summary.Items, 3)
		assert.Equal(t, "duplicate", summary.Items[0].Status)
		assert.Equal(t, uint(3), summary.Items[0].ResponseID)
		assert.Equal(t, "created", summary.Items[1].Status)
		assert.Equal(t, uint(11), summary.Items[1].ResponseID)
		assert.Equal(t, "error", summary.Items[2].Status)
		assert.Contains(t, summary.Items[2].Error, ErrSurveyNotFound.Error())

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventSyncBatchReceived, published[0].Type)

		repo.responseRepo.AssertExpectations(t)
		repo.syncBatchRepo.AssertExpectations(t)
	})

	t.Run("partial item settles the cursor for later resume", func(t *testing.T) {
		repo := newMockRepository()
		repo.surveyorRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Surveyor{ID: 5}, nil)
		repo.responseRepo.On("GetByClientRef", mock.Anything, "ref-partial").
			Return(nil, gorm.ErrRecordNotFound)
		repo.surveyRepo.On("GetByIDWithDefinition", mock.Anything, uint(1)).
			Return(publishedSurveyFixture(t), nil)
		repo.responseRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Response")).
			Return(nil).Run(func(args mock.Arguments) {
				args.Get(1).(*models.Response).ID = 12
			})
		repo.responseRepo.On("UpsertAnswer", mock.Anything, mock.AnythingOfType("*models.Answer")).Return(nil)
		// Consent was answered "yes", so the replayed cursor lands on q-source
		repo.responseRepo.On("Update", mock.Anything, mock.MatchedBy(func(r *models.Response) bool {
			return r.ID == 12 && r.CompletedAt == nil &&
				r.CurrentSectionID == "sec-2" && r.CurrentQuestionID == "q-source"
		})).Return(nil)
		repo.syncBatchRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.SyncBatch")).Return(nil)

		svc, _ := newSyncServiceForTest(repo)
		summary, err := svc.ProcessBatch(ctx, &SyncBatchRequest{
			DeviceID:   "device-1",
			SurveyorID: 5,
			Items: []SyncItem{{
				ClientRef: "ref-partial",
				SurveyID:  1,
				Answers:   []SyncAnswer{{QuestionID: "q-consent", Value: "yes"}},
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Created)
		repo.responseRepo.AssertExpectations(t)
	})

	t.Run("draft survey cannot accept synced responses", func(t *testing.T) {
		repo := newMockRepository()
		draft := publishedSurveyFixture(t)
		draft.Status = models.SurveyDraft
		repo.surveyorRepo.On("GetByID", mock.Anything, uint(5)).Return(&models.Surveyor{ID: 5}, nil)
		repo.responseRepo.On("GetByClientRef", mock.Anything, "ref-1").
			Return(nil, gorm.ErrRecordNotFound)
		repo.surveyRepo.On("GetByIDWithDefinition", mock.Anything, uint(1)).Return(draft, nil)
		repo.syncBatchRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.SyncBatch")).Return(nil)

		svc, _ := newSyncServiceForTest(repo)
		summary, err := svc.ProcessBatch(ctx, &SyncBatchRequest{
			DeviceID:   "device-1",
			SurveyorID: 5,
			Items:      []SyncItem{{ClientRef: "ref-1", SurveyID: 1}},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Errors)
		assert.Contains(t, summary.Items[0].Error, ErrSurveyNotPublished.Error())
	})

	t.Run("unknown surveyor", func(t *testing.T) {
		repo := newMockRepository()
		repo.surveyorRepo.On("GetByID", mock.Anything, uint(42)).Return(nil, gorm.ErrRecordNotFound)

		svc, _ := newSyncServiceForTest(repo)
		_, err := svc.ProcessBatch(ctx, &SyncBatchRequest{
			DeviceID:   "device-1",
			SurveyorID: 42,
			Items:      []SyncItem{{ClientRef: "ref-1", SurveyID: 1}},
		})

		assert.ErrorIs(t, err, ErrSurveyorNotFound)
	})

	t.Run("oversized batch is rejected", func(t *testing.T) {
		items := make([]SyncItem, maxSyncBatchItems+1)
		for i := range items {
			items[i] = SyncItem{ClientRef: fmt.Sprintf("ref-%d", i), SurveyID: 1}
		}

		svc, _ := newSyncServiceForTest(newMockRepository())
		_, err := svc.ProcessBatch(ctx, &SyncBatchRequest{
			DeviceID:   "device-1",
			SurveyorID: 5,
			Items:      items,
		})

		assert.ErrorIs(t, err, ErrSyncBatchTooLarge)
	})
}

func TestSyncService_GetBatchHistory(t *testing.T) {
	ctx := context.Background()

	repo := newMockRepository()
	repo.syncBatchRepo.On("GetByDevice", ctx, "device-1", 10).Return([]*models.SyncBatch{
		{ID: 2, DeviceID: "device-1", ItemCount: 5},
		{ID: 1, DeviceID: "device-1", ItemCount: 3},
	}, nil)

	svc, _ := newSyncServiceForTest(repo)
	batches, err := svc.GetBatchHistory(ctx, "device-1", 10)

	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, uint(2), batches[0].ID)
}

func TestSyncService_Close(t *testing.T) {
	repo := newMockRepository()
	svc, _ := newSyncServiceForTest(repo)

	require.NoError(t, svc.Close())
}
