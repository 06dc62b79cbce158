package services

import (
	"context"
	"log/slog"

	"github.com/fieldscope/survey-service/internal/cache"
	"github.com/fieldscope/survey-service/internal/events"
	"github.com/fieldscope/survey-service/internal/flow"
	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/fieldscope/survey-service/internal/validator"
)

// SurveyService manages survey authoring: lifecycle, structure and logic
type SurveyService interface {
	Create(ctx context.Context, req *CreateSurveyRequest, userID string) (*SurveyResponse, error)
	GetByID(ctx context.Context, id uint) (*SurveyResponse, error)
	GetDefinition(ctx context.Context, id uint) (*SurveyDetailResponse, error)
	Update(ctx context.Context, id uint, req *UpdateSurveyRequest, userID string) (*SurveyResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	List(ctx context.Context, filters repositories.SurveyFilters) (*SurveyListResponse, error)
	GetStats(ctx context.Context, id uint) (*repositories.SurveyStats, error)

	// Lifecycle
	Publish(ctx context.Context, id uint, userID string) error
	CloseSurvey(ctx context.Context, id uint, userID string) error
	Archive(ctx context.Context, id uint, userID string) error

	// Structure
	CreateSection(ctx context.Context, surveyID uint, req *CreateSectionRequest, userID string) (*models.Section, error)
	UpdateSection(ctx context.Context, surveyID uint, sectionID string, req *UpdateSectionRequest, userID string) (*models.Section, error)
	DeleteSection(ctx context.Context, surveyID uint, sectionID string, userID string) error
	ReorderSections(ctx context.Context, surveyID uint, orderedIDs []string, userID string) error

	AddQuestion(ctx context.Context, surveyID uint, sectionID string, req *CreateQuestionRequest, userID string) (*models.Question, error)
	UpdateQuestion(ctx context.Context, surveyID uint, questionID string, req *UpdateQuestionRequest, userID string) (*models.Question, error)
	DeleteQuestion(ctx context.Context, surveyID uint, questionID string, userID string) error
	ReorderQuestions(ctx context.Context, surveyID uint, sectionID string, orderedIDs []string, userID string) error
	DuplicateQuestion(ctx context.Context, surveyID uint, questionID string, userID string) (*models.Question, error)

	// Logic
	ValidateLogic(ctx context.Context, id uint) ([]flow.LogicIssue, error)
}

// ResponseService runs respondent sessions against published surveys
type ResponseService interface {
	Start(ctx context.Context, req *StartResponseRequest) (*ResponseState, error)
	GetByID(ctx context.Context, id uint) (*ResponseDetail, error)
	List(ctx context.Context, filters repositories.ResponseFilters) (*ResponseListResponse, error)
	SubmitAnswer(ctx context.Context, responseID uint, req *SubmitAnswerRequest) (*ResponseState, error)
	Complete(ctx context.Context, responseID uint) (*ResponseDetail, error)
}

// SyncService replays offline batches from mobile devices
type SyncService interface {
	ProcessBatch(ctx context.Context, req *SyncBatchRequest) (*models.SyncSummary, error)
	GetBatchHistory(ctx context.Context, deviceID string, limit int) ([]*models.SyncBatch, error)
	Close() error
}

// ExportService produces downloadable response data
type ExportService interface {
	ExportResponses(ctx context.Context, surveyID uint, userID string) (*ExportResult, error)
}

// OrganizationService manages the org/project/zone/surveyor hierarchy
type OrganizationService interface {
	CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error)
	GetOrganization(ctx context.Context, id uint) (*models.Organization, error)
	UpdateOrganization(ctx context.Context, id uint, req *UpdateOrganizationRequest) (*models.Organization, error)
	DeleteOrganization(ctx context.Context, id uint) error
	ListOrganizations(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error)

	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	GetProjectsByOrganization(ctx context.Context, orgID uint) ([]*models.Project, error)
	DeleteProject(ctx context.Context, id uint) error

	CreateZone(ctx context.Context, req *CreateZoneRequest) (*models.Zone, error)
	GetZone(ctx context.Context, id uint) (*models.Zone, error)
	GetZonesByProject(ctx context.Context, projectID uint) ([]*models.Zone, error)
	GetZoneStats(ctx context.Context, id uint) (*repositories.ZoneStats, error)
	DeleteZone(ctx context.Context, id uint) error

	AssignSurveyor(ctx context.Context, req *AssignSurveyorRequest) (*models.Surveyor, error)
	GetSurveyor(ctx context.Context, id uint) (*models.Surveyor, error)
	ListSurveyors(ctx context.Context, filters repositories.SurveyorFilters) ([]*models.Surveyor, int64, error)
	UpdateSurveyorStatus(ctx context.Context, id uint, status models.SurveyorStatus) (*models.Surveyor, error)
	RemoveSurveyor(ctx context.Context, id uint) error
}

// ServiceManager aggregates all services behind one handle for the handlers
type ServiceManager interface {
	Survey() SurveyService
	Response() ResponseService
	Sync() SyncService
	Export() ExportService
	Organization() OrganizationService
	Close() error
}

type serviceManager struct {
	survey       SurveyService
	response     ResponseService
	sync         SyncService
	export       ExportService
	organization OrganizationService
	publisher    events.EventPublisher
}

// ServiceManagerConfig carries the shared dependencies for all services
type ServiceManagerConfig struct {
	Repo        repositories.Repository
	Cache       cache.CacheService
	Publisher   events.EventPublisher
	Logger      *slog.Logger
	Validator   *validator.Validator
	SyncWorkers int
}

func NewServiceManager(cfg ServiceManagerConfig) ServiceManager {
	if cfg.Cache == nil {
		cfg.Cache = cache.NoopCache{}
	}
	surveyService := NewSurveyService(cfg.Repo, cfg.Cache, cfg.Publisher, cfg.Logger, cfg.Validator)
	responseService := NewResponseService(cfg.Repo, cfg.Cache, cfg.Publisher, cfg.Logger, cfg.Validator)

	return &serviceManager{
		survey:       surveyService,
		response:     responseService,
		sync:         NewSyncService(cfg.Repo, cfg.Publisher, cfg.Logger, cfg.Validator, cfg.SyncWorkers),
		export:       NewExportService(cfg.Repo, cfg.Publisher, cfg.Logger),
		organization: NewOrganizationService(cfg.Repo, cfg.Logger, cfg.Validator),
		publisher:    cfg.Publisher,
	}
}

func (m *serviceManager) Survey() SurveyService             { return m.survey }
func (m *serviceManager) Response() ResponseService         { return m.response }
func (m *serviceManager) Sync() SyncService                 { return m.sync }
func (m *serviceManager) Export() ExportService             { return m.export }
func (m *serviceManager) Organization() OrganizationService { return m.organization }

func (m *serviceManager) Close() error {
	if err := m.sync.Close(); err != nil {
		return err
	}
	if m.publisher != nil {
		return m.publisher.Close()
	}
	return nil
}
