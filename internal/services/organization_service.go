package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"github.com/fieldscope/survey-service/internal/validator"
)

type organizationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewOrganizationService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) OrganizationService {
	return &organizationService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// ===== ORGANIZATIONS =====

func (s *organizationService) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*models.Organization, error) {
	s.logger.Info("Creating organization", "name", req.Name, "slug", req.Slug)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.Organization().ExistsBySlug(ctx, req.Slug, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSlug
	}

	org := &models.Organization{
		Name: req.Name,
		Slug: req.Slug,
	}
	if err := s.repo.Organization().Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) GetOrganization(ctx context.Context, id uint) (*models.Organization, error) {
	org, err := s.repo.Organization().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, id uint, req *UpdateOrganizationRequest) (*models.Organization, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	org, err := s.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		org.Name = *req.Name
	}

	if err := s.repo.Organization().Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) DeleteOrganization(ctx context.Context, id uint) error {
	if _, err := s.GetOrganization(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Organization().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	s.logger.Info("Organization deleted", "organization_id", id)
	return nil
}

func (s *organizationService) ListOrganizations(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error) {
	return s.repo.Organization().List(ctx, limit, offset)
}

// ===== PROJECTS =====

func (s *organizationService) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.GetOrganization(ctx, req.OrganizationID); err != nil {
		return nil, err
	}

	project := &models.Project{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Description:    req.Description,
	}
	if err := s.repo.Project().Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

func (s *organizationService) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.repo.Project().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (s *organizationService) GetProjectsByOrganization(ctx context.Context, orgID uint) ([]*models.Project, error) {
	if _, err := s.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.repo.Project().GetByOrganization(ctx, orgID)
}

func (s *organizationService) DeleteProject(ctx context.Context, id uint) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Project().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ===== ZONES =====

func (s *organizationService) CreateZone(ctx context.Context, req *CreateZoneRequest) (*models.Zone, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.GetProject(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	zone := &models.Zone{
		ProjectID: req.ProjectID,
		Name:      req.Name,
	}
	if req.Geometry != nil {
		raw, err := json.Marshal(req.Geometry)
		if err != nil {
			return nil, NewValidationError("geometry", "must be valid GeoJSON", nil)
		}
		zone.Geometry = raw
	}

	if err := s.repo.Zone().Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return zone, nil
}

func (s *organizationService) GetZone(ctx context.Context, id uint) (*models.Zone, error) {
	zone, err := s.repo.Zone().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrZoneNotFound
		}
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}
	return zone, nil
}

func (s *organizationService) GetZonesByProject(ctx context.Context, projectID uint) ([]*models.Zone, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.Zone().GetByProject(ctx, projectID)
}

func (s *organizationService) GetZoneStats(ctx context.Context, id uint) (*repositories.ZoneStats, error) {
	if _, err := s.GetZone(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.repo.Zone().GetStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get zone stats: %w", err)
	}
	return stats, nil
}

func (s *organizationService) DeleteZone(ctx context.Context, id uint) error {
	if _, err := s.GetZone(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Zone().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}
	return nil
}

// ===== SURVEYORS =====

func (s *organizationService) AssignSurveyor(ctx context.Context, req *AssignSurveyorRequest) (*models.Surveyor, error) {
	s.logger.Info("Assigning surveyor", "user_id", req.UserID, "zone_id", req.ZoneID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.GetZone(ctx, req.ZoneID); err != nil {
		return nil, err
	}
	if _, err := s.repo.User().GetByID(ctx, req.UserID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if _, err := s.repo.Surveyor().GetByUserAndZone(ctx, req.UserID, req.ZoneID); err == nil {
		return nil, ErrSurveyorExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}

	surveyor := &models.Surveyor{
		UserID:     req.UserID,
		ZoneID:     req.ZoneID,
		Status:     models.SurveyorActive,
		AssignedAt: time.Now(),
	}
	if err := s.repo.Surveyor().Create(ctx, surveyor); err != nil {
		return nil, fmt.Errorf("failed to assign surveyor: %w", err)
	}
	return surveyor, nil
}

func (s *organizationService) GetSurveyor(ctx context.Context, id uint) (*models.Surveyor, error) {
	surveyor, err := s.repo.Surveyor().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSurveyorNotFound
		}
		return nil, fmt.Errorf("failed to get surveyor: %w", err)
	}
	return surveyor, nil
}

func (s *organizationService) ListSurveyors(ctx context.Context, filters repositories.SurveyorFilters) ([]*models.Surveyor, int64, error) {
	return s.repo.Surveyor().List(ctx, filters)
}

func (s *organizationService) UpdateSurveyorStatus(ctx context.Context, id uint, status models.SurveyorStatus) (*models.Surveyor, error) {
	if status != models.SurveyorActive && status != models.SurveyorInactive {
		return nil, NewValidationError("status", "must be active or inactive", status)
	}

	surveyor, err := s.GetSurveyor(ctx, id)
	if err != nil {
		return nil, err
	}
	surveyor.Status = status
	if err := s.repo.Surveyor().Update(ctx, surveyor); err != nil {
		return nil, fmt.Errorf("failed to update surveyor: %w", err)
	}
	return surveyor, nil
}

func (s *organizationService) RemoveSurveyor(ctx context.Context, id uint) error {
	if _, err := s.GetSurveyor(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Surveyor().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove surveyor: %w", err)
	}
	return nil
}
