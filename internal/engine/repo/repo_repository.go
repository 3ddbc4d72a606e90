package repo

import (
	"errors"

	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IRepositoryRepository interface {
	GetByRepoId(repoId string) (*model.Repository, error)
	GetByNameAndOrganization(name, orgId string) (*model.Repository, error)
	ListByOrganization(orgId string, openSourceFirst bool) ([]model.Repository, error)
	ListByIdsAndOrganization(repoIds []string, orgId string) ([]model.Repository, error)
	UpdateBadgeSettings(repoId string, autoEmbed bool) error
	Upsert(repository *model.Repository) (*model.Repository, error)
}

type RepositoryRepo struct {
	db        database.IDatabase
	repoModel *model.Repository
}

func NewRepositoryRepo(db database.IDatabase) IRepositoryRepository {
	return &RepositoryRepo{
		db:        db,
		repoModel: &model.Repository{},
	}
}

// GetByRepoId returns nil without an error when no repository matches.
func (rr *RepositoryRepo) GetByRepoId(repoId string) (*model.Repository, error) {
	var repository model.Repository
	err := rr.db.Database().Where("repo_id = ?", repoId).First(&repository).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repository, nil
}

// GetByNameAndOrganization returns nil without an error when no repository
// matches.
func (rr *RepositoryRepo) GetByNameAndOrganization(name, orgId string) (*model.Repository, error) {
	var repository model.Repository
	err := rr.db.Database().
		Where("name = ? AND org_id = ?", name, orgId).
		First(&repository).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repository, nil
}

// ListByOrganization lists an organization's repositories, optionally with
// open-source repositories ordered first.
func (rr *RepositoryRepo) ListByOrganization(orgId string, openSourceFirst bool) ([]model.Repository, error) {
	var repositories []model.Repository
	tx := rr.db.Database().Where("org_id = ?", orgId)
	if openSourceFirst {
		tx = tx.Order("is_private ASC")
	}
	err := tx.Order("name ASC").Find(&repositories).Error
	return repositories, err
}

func (rr *RepositoryRepo) ListByIdsAndOrganization(repoIds []string, orgId string) ([]model.Repository, error) {
	var repositories []model.Repository
	if len(repoIds) == 0 {
		return repositories, nil
	}
	err := rr.db.Database().
		Where("repo_id IN ? AND org_id = ?", repoIds, orgId).
		Find(&repositories).Error
	return repositories, err
}

func (rr *RepositoryRepo) UpdateBadgeSettings(repoId string, autoEmbed bool) error {
	return rr.db.Database().Model(rr.repoModel).
		Where("repo_id = ?", repoId).
		Update("pledge_badge_auto_embed", autoEmbed).Error
}

// Upsert inserts or updates a repository keyed on (platform, external_id).
func (rr *RepositoryRepo) Upsert(repository *model.Repository) (*model.Repository, error) {
	err := rr.db.Database().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "is_private", "open_issues", "org_id",
		}),
	}).Create(repository).Error
	if err != nil {
		return nil, err
	}

	var persisted model.Repository
	err = rr.db.Database().
		Where("platform = ? AND external_id = ?", repository.Platform, repository.ExternalId).
		First(&persisted).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}
