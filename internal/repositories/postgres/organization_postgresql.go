package postgres

import (
	"context"
	"fmt"

	"github.com/fieldscope/survey-service/internal/models"
	"github.com/fieldscope/survey-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrganizationPostgreSQL struct {
	db *gorm.DB
}

func NewOrganizationPostgreSQL(db *gorm.DB) repositories.OrganizationRepository {
	return &OrganizationPostgreSQL{db: db}
}

func (o *OrganizationPostgreSQL) Create(ctx context.Context, org *models.Organization) error {
	exists, err := o.ExistsBySlug(ctx, org.Slug, nil)
	if err != nil {
		return fmt.Errorf("failed to check slug uniqueness: %w", err)
	}
	if exists {
		return fmt.Errorf("organization slug '%s' already exists", org.Slug)
	}
	return o.db.WithContext(ctx).Create(org).Error
}

func (o *OrganizationPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Organization, error) {
	var org models.Organization
	if err := o.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (o *OrganizationPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := o.db.WithContext(ctx).First(&org, "slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (o *OrganizationPostgreSQL) Update(ctx context.Context, org *models.Organization) error {
	return o.db.WithContext(ctx).Save(org).Error
}

func (o *OrganizationPostgreSQL) Delete(ctx context.Context, id uint) error {
	return o.db.WithContext(ctx).Delete(&models.Organization{}, id).Error
}

func (o *OrganizationPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error) {
	var total int64
	if err := o.db.WithContext(ctx).Model(&models.Organization{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orgs []*models.Organization
	query := applyPagination(o.db.WithContext(ctx).Order("name ASC"), limit, offset)
	if err := query.Find(&orgs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, total, nil
}

func (o *OrganizationPostgreSQL) ExistsBySlug(ctx context.Context, slug string, excludeID *uint) (bool, error) {
	query := o.db.WithContext(ctx).Model(&models.Organization{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ===== PROJECTS =====

type ProjectPostgreSQL struct {
	db *gorm.DB
}

func NewProjectPostgreSQL(db *gorm.DB) repositories.ProjectRepository {
	return &ProjectPostgreSQL{db: db}
}

func (p *ProjectPostgreSQL) Create(ctx context.Context, project *models.Project) error {
	return p.db.WithContext(ctx).Create(project).Error
}

func (p *ProjectPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	err := p.db.WithContext(ctx).Preload("Organization").First(&project, id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (p *ProjectPostgreSQL) GetByOrganization(ctx context.Context, orgID uint) ([]*models.Project, error) {
	var projects []*models.Project
	err := p.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

func (p *ProjectPostgreSQL) Update(ctx context.Context, project *models.Project) error {
	return p.db.WithContext(ctx).Save(project).Error
}

func (p *ProjectPostgreSQL) Delete(ctx context.Context, id uint) error {
	return p.db.WithContext(ctx).Delete(&models.Project{}, id).Error
}

// ===== ZONES =====

type ZonePostgreSQL struct {
	db *gorm.DB
}

func NewZonePostgreSQL(db *gorm.DB) repositories.ZoneRepository {
	return &ZonePostgreSQL{db: db}
}

func (z *ZonePostgreSQL) Create(ctx context.Context, zone *models.Zone) error {
	return z.db.WithContext(ctx).Create(zone).Error
}

func (z *ZonePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := z.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (z *ZonePostgreSQL) GetByProject(ctx context.Context, projectID uint) ([]*models.Zone, error) {
	var zones []*models.Zone
	err := z.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("name ASC").
		Find(&zones).Error
	return zones, err
}

func (z *ZonePostgreSQL) Update(ctx context.Context, zone *models.Zone) error {
	return z.db.WithContext(ctx).Save(zone).Error
}

func (z *ZonePostgreSQL) Delete(ctx context.Context, id uint) error {
	return z.db.WithContext(ctx).Delete(&models.Zone{}, id).Error
}

func (z *ZonePostgreSQL) GetStats(ctx context.Context, id uint) (*repositories.ZoneStats, error) {
	stats := &repositories.ZoneStats{}

	var total, active int64
	if err := z.db.WithContext(ctx).Model(&models.Surveyor{}).
		Where("zone_id = ?", id).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count surveyors: %w", err)
	}
	if err := z.db.WithContext(ctx).Model(&models.Surveyor{}).
		Where("zone_id = ? AND status = ?", id, models.SurveyorActive).Count(&active).Error; err != nil {
		return nil, fmt.Errorf("failed to count active surveyors: %w", err)
	}

	var responses int64
	if err := z.db.WithContext(ctx).Model(&models.Response{}).
		Where("zone_id = ?", id).Count(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	stats.TotalSurveyors = int(total)
	stats.ActiveSurveyors = int(active)
	stats.TotalResponses = int(responses)
	return stats, nil
}

// ===== SURVEYORS =====

type SurveyorPostgreSQL struct {
	db *gorm.DB
}

func NewSurveyorPostgreSQL(db *gorm.DB) repositories.SurveyorRepository {
	return &SurveyorPostgreSQL{db: db}
}

func (s *SurveyorPostgreSQL) Create(ctx context.Context, surveyor *models.Surveyor) error {
	return s.db.WithContext(ctx).Create(surveyor).Error
}

func (s *SurveyorPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Surveyor, error) {
	var surveyor models.Surveyor
	err := s.db.WithContext(ctx).Preload("User").Preload("Zone").First(&surveyor, id).Error
	if err != nil {
		return nil, err
	}
	return &surveyor, nil
}

func (s *SurveyorPostgreSQL) GetByUserAndZone(ctx context.Context, userID string, zoneID uint) (*models.Surveyor, error) {
	var surveyor models.Surveyor
	err := s.db.WithContext(ctx).
		First(&surveyor, "user_id = ? AND zone_id = ?", userID, zoneID).Error
	if err != nil {
		return nil, err
	}
	return &surveyor, nil
}

func (s *SurveyorPostgreSQL) Update(ctx context.Context, surveyor *models.Surveyor) error {
	return s.db.WithContext(ctx).Save(surveyor).Error
}

func (s *SurveyorPostgreSQL) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Surveyor{}, id).Error
}

func (s *SurveyorPostgreSQL) List(ctx context.Context, filters repositories.SurveyorFilters) ([]*models.Surveyor, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Surveyor{})

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ZoneID != nil {
		query = query.Where("zone_id = ?", *filters.ZoneID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count surveyors: %w", err)
	}

	var surveyors []*models.Surveyor
	query = applyPagination(query.Preload("User").Order("created_at DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&surveyors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list surveyors: %w", err)
	}
	return surveyors, total, nil
}

// ===== USERS =====

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Upsert(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "role", "avatar_url", "last_login_at", "updated_at"}),
		}).
		Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	var total int64
	if err := u.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	query := applyPagination(u.db.WithContext(ctx).Order("full_name ASC"), limit, offset)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
