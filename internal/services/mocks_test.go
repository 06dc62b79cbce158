package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockSurveyRepository is a mock implementation of SurveyRepository
type MockSurveyRepository struct {
	mock.Mock
}

func (m *MockSurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) GetByIDWithDefinition(ctx context.Context, id uint) (*models.Survey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Survey), args.Error(1)
}

func (m *MockSurveyRepository) Update(ctx context.Context, survey *models.Survey) error {
	args := m.Called(ctx, survey)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateStatus(ctx context.Context, id uint, status models.SurveyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSurveyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) GetByProject(ctx context.Context, projectID uint, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	args := m.Called(ctx, projectID, filters)
	return args.Get(0).([]*models.Survey), args.Get(1).(int64), args.Error(2)
}

func (m *MockSurveyRepository) ExistsByTitle(ctx context.Context, title string, projectID uint, excludeID *uint) (bool, error) {
	args := m.Called(ctx, title, projectID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSurveyRepository) GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.SurveyStats), args.Error(1)
}

func (m *MockSurveyRepository) CreateSection(ctx context.Context, section *models.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateSection(ctx context.Context, section *models.Section) error {
	args := m.Called(ctx, section)
	return args.Error(0)
}

func (m *MockSurveyRepository) DeleteSection(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) ReorderSections(ctx context.Context, surveyID uint, orderedIDs []string) error {
	args := m.Called(ctx, surveyID, orderedIDs)
	return args.Error(0)
}

func (m *MockSurveyRepository) CreateQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockSurveyRepository) UpdateQuestions(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockSurveyRepository) DeleteQuestion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyRepository) ReorderQuestions(ctx context.Context, sectionID string, orderedIDs []string) error {
	args := m.Called(ctx, sectionID, orderedIDs)
	return args.Error(0)
}

func (m *MockSurveyRepository) GetQuestion(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockSurveyRepository) GetQuestionsBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	args := m.Called(ctx, surveyID)
	return args.Get(0).([]*models.Question), args.Error(1)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByID(ctx context.Context, id uint) (*models.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetByIDWithAnswers(ctx context.Context, id uint) (*models.Response, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) GetByClientRef(ctx context.Context, clientRef string) (*models.Response, error) {
	args := m.Called(ctx, clientRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Response), args.Error(1)
}

func (m *MockResponseRepository) Update(ctx context.Context, response *models.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockResponseRepository) List(ctx context.Context, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Response), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ResponseFilters) ([]*models.Response, int64, error) {
	args := m.Called(ctx, surveyID, filters)
	return args.Get(0).([]*models.Response), args.Get(1).(int64), args.Error(2)
}

func (m *MockResponseRepository) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	args := m.Called(ctx, surveyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepository) UpsertAnswer(ctx context.Context, answer *models.Answer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockResponseRepository) GetAnswers(ctx context.Context, responseID uint) ([]*models.Answer, error) {
	args := m.Called(ctx, responseID)
	return args.Get(0).([]*models.Answer), args.Error(1)
}

// MockSyncBatchRepository is a mock implementation of SyncBatchRepository
type MockSyncBatchRepository struct {
	mock.Mock
}

func (m *MockSyncBatchRepository) Create(ctx context.Context, batch *models.SyncBatch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockSyncBatchRepository) GetByID(ctx context.Context, id uint) (*models.SyncBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncBatch), args.Error(1)
}

func (m *MockSyncBatchRepository) GetByDevice(ctx context.Context, deviceID string, limit int) ([]*models.SyncBatch, error) {
	args := m.Called(ctx, deviceID, limit)
	return args.Get(0).([]*models.SyncBatch), args.Error(1)
}

// MockSurveyorRepository is a mock implementation of SurveyorRepository
type MockSurveyorRepository struct {
	mock.Mock
}

func (m *MockSurveyorRepository) Create(ctx context.Context, surveyor *models.Surveyor) error {
	args := m.Called(ctx, surveyor)
	return args.Error(0)
}

func (m *MockSurveyorRepository) GetByID(ctx context.Context, id uint) (*models.Surveyor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Surveyor), args.Error(1)
}

func (m *MockSurveyorRepository) GetByUserAndZone(ctx context.Context, userID string, zoneID uint) (*models.Surveyor, error) {
	args := m.Called(ctx, userID, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Surveyor), args.Error(1)
}

func (m *MockSurveyorRepository) Update(ctx context.Context, surveyor *models.Surveyor) error {
	args := m.Called(ctx, surveyor)
	return args.Error(0)
}

func (m *MockSurveyorRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSurveyorRepository) List(ctx context.Context, filters repositories.SurveyorFilters) ([]*models.Surveyor, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Surveyor), args.Get(1).(int64), args.Error(2)
}

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectRepository) GetByOrganization(ctx context.Context, orgID uint) ([]*models.Project, error) {
	args := m.Called(ctx, orgID)
	return args.Get(0).([]*models.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRepository aggregates the entity mocks behind the Repository interface
type MockRepository struct {
	mock.Mock
	surveyRepo    *MockSurveyRepository
	responseRepo  *MockResponseRepository
	syncBatchRepo *MockSyncBatchRepository
	surveyorRepo  *MockSurveyorRepository
	projectRepo   *MockProjectRepository
}

func newMockRepository() *MockRepository {
	return &MockRepository{
		surveyRepo:    &MockSurveyRepository{},
		responseRepo:  &MockResponseRepository{},
		syncBatchRepo: &MockSyncBatchRepository{},
		surveyorRepo:  &MockSurveyorRepository{},
		projectRepo:   &MockProjectRepository{},
	}
}

func (m *MockRepository) Organization() repositories.OrganizationRepository { return nil }
func (m *MockRepository) Project() repositories.ProjectRepository           { return m.projectRepo }
func (m *MockRepository) Zone() repositories.ZoneRepository                 { return nil }
func (m *MockRepository) Surveyor() repositories.SurveyorRepository         { return m.surveyorRepo }
func (m *MockRepository) Survey() repositories.SurveyRepository             { return m.surveyRepo }
func (m *MockRepository) Response() repositories.ResponseRepository         { return m.responseRepo }
func (m *MockRepository) SyncBatch() repositories.SyncBatchRepository       { return m.syncBatchRepo }
func (m *MockRepository) User() repositories.UserRepository                 { return nil }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockRepository) Ping(ctx context.Context) error { return nil }
func (m *MockRepository) Close() error                   { return nil }
