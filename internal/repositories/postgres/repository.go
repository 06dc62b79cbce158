package postgres

import (
	"context"

	"github.com/fieldscope/survey-service/internal/repositories"
	"gorm.io/gorm"
)

// GormRepository is the Postgres-backed aggregate repository.
type GormRepository struct {
	db *gorm.DB

	organization repositories.OrganizationRepository
	project      repositories.ProjectRepository
	zone         repositories.ZoneRepository
	surveyor     repositories.SurveyorRepository
	survey       repositories.SurveyRepository
	response     repositories.ResponseRepository
	syncBatch    repositories.SyncBatchRepository
	user         repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &GormRepository{
		db:           db,
		organization: NewOrganizationPostgreSQL(db),
		project:      NewProjectPostgreSQL(db),
		zone:         NewZonePostgreSQL(db),
		surveyor:     NewSurveyorPostgreSQL(db),
		survey:       NewSurveyPostgreSQL(db),
		response:     NewResponsePostgreSQL(db),
		syncBatch:    NewSyncBatchPostgreSQL(db),
		user:         NewUserPostgreSQL(db),
	}
}

func (r *GormRepository) Organization() repositories.OrganizationRepository { return r.organization }
func (r *GormRepository) Project() repositories.ProjectRepository           { return r.project }
func (r *GormRepository) Zone() repositories.ZoneRepository                 { return r.zone }
func (r *GormRepository) Surveyor() repositories.SurveyorRepository         { return r.surveyor }
func (r *GormRepository) Survey() repositories.SurveyRepository             { return r.survey }
func (r *GormRepository) Response() repositories.ResponseRepository         { return r.response }
func (r *GormRepository) SyncBatch() repositories.SyncBatchRepository       { return r.syncBatch }
func (r *GormRepository) User() repositories.UserRepository                 { return r.user }

// WithTransaction runs fn against a repository bound to a single transaction.
func (r *GormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// applySort appends a whitelisted ORDER BY clause.
func applySort(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if sortBy == "" || !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return query.Order(sortBy + " " + sortOrder)
}

// applyPagination appends LIMIT/OFFSET with sane defaults.
func applyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
