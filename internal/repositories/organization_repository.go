package repositories

import (
	"context"

	"github.com/fieldscope/survey-service/internal/models"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *models.Organization) error
	GetByID(ctx context.Context, id uint) (*models.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]*models.Organization, int64, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID *uint) (bool, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetByOrganization(ctx context.Context, orgID uint) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) error
}

type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone) error
	GetByID(ctx context.Context, id uint) (*models.Zone, error)
	GetByProject(ctx context.Context, projectID uint) ([]*models.Zone, error)
	Update(ctx context.Context, zone *models.Zone) error
	Delete(ctx context.Context, id uint) error
	GetStats(ctx context.Context, id uint) (*ZoneStats, error)
}

type SurveyorRepository interface {
	Create(ctx context.Context, surveyor *models.Surveyor) error
	GetByID(ctx context.Context, id uint) (*models.Surveyor, error)
	GetByUserAndZone(ctx context.Context, userID string, zoneID uint) (*models.Surveyor, error)
	Update(ctx context.Context, surveyor *models.Surveyor) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters SurveyorFilters) ([]*models.Surveyor, int64, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, int64, error)
}
