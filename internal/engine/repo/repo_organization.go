// Copyright 2025 Pledge Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repo

import (
	"errors"

	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/database"
	"github.com/go-pledge/pledge/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrganizationFilter narrows an organization lookup. Platform plus at least
// one of OrgId/OrgName is required; scope enforcement lives in the logic
// layer.
type OrganizationFilter struct {
	Platform string
	OrgId    string
	OrgName  string
	UserId   string
}

type IOrganizationRepository interface {
	GetByPlatformExternalId(platform string, externalId int64) (*model.Organization, error)
	GetByName(platform, name string) (*model.Organization, error)
	Find(filter OrganizationFilter) (*model.Organization, error)
	ListInstalled() ([]model.Organization, error)
	ListByUserId(userId string) ([]model.Organization, error)
	AddMember(orgId, userId string, isAdmin bool) error
	GetMember(orgId, userId string) (*model.UserOrganization, error)
	Save(org *model.Organization) error
	SetDefaultBadgeMessage(orgId, message string) error
	SyncedCountRows(orgId string) ([]model.SyncedCountRow, error)
	Upsert(org *model.Organization) (*model.Organization, error)
}

type OrganizationRepo struct {
	db       database.IDatabase
	orgModel *model.Organization
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{
		db:       db,
		orgModel: &model.Organization{},
	}
}

// GetByPlatformExternalId returns nil without an error when no organization
// matches.
func (or *OrganizationRepo) GetByPlatformExternalId(platform string, externalId int64) (*model.Organization, error) {
	var org model.Organization
	err := or.db.Database().
		Where("platform = ? AND external_id = ?", platform, externalId).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (or *OrganizationRepo) GetByName(platform, name string) (*model.Organization, error) {
	var org model.Organization
	err := or.db.Database().
		Where("platform = ? AND name = ?", platform, name).
		First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Find resolves an organization by identity filter, optionally scoped to a
// member. Returns nil without an error when nothing matches.
func (or *OrganizationRepo) Find(filter OrganizationFilter) (*model.Organization, error) {
	tx := or.db.Database().Model(or.orgModel).
		Where("t_organization.platform = ?", filter.Platform)

	if filter.OrgId != "" {
		tx = tx.Where("t_organization.org_id = ?", filter.OrgId)
	}
	if filter.OrgName != "" {
		tx = tx.Where("t_organization.name = ?", filter.OrgName)
	}
	if filter.UserId != "" {
		tx = tx.Joins("JOIN t_user_organization uo ON uo.org_id = t_organization.org_id AND uo.deleted_at IS NULL").
			Where("uo.user_id = ?", filter.UserId)
	}

	var org model.Organization
	err := tx.First(&org).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListInstalled lists organizations with an active platform installation.
func (or *OrganizationRepo) ListInstalled() ([]model.Organization, error) {
	var orgs []model.Organization
	err := or.db.Database().
		Where("installation_id IS NOT NULL").
		Find(&orgs).Error
	return orgs, err
}

func (or *OrganizationRepo) ListByUserId(userId string) ([]model.Organization, error) {
	var orgs []model.Organization
	err := or.db.Database().Model(or.orgModel).
		Joins("JOIN t_user_organization uo ON uo.org_id = t_organization.org_id AND uo.deleted_at IS NULL").
		Where("uo.user_id = ?", userId).
		Find(&orgs).Error
	return orgs, err
}

// AddMember adds an organization membership. Concurrent duplicate inserts are
// tolerated: the insert runs behind a savepoint and a uniqueness violation is
// converted into an update of the is_admin flag. Last committed writer wins.
func (or *OrganizationRepo) AddMember(orgId, userId string, isAdmin bool) error {
	return or.db.Database().Transaction(func(tx *gorm.DB) error {
		tx.SavePoint("sp_add_member")

		relation := model.UserOrganization{
			UserId:  userId,
			OrgId:   orgId,
			IsAdmin: isAdmin,
		}
		err := tx.Create(&relation).Error
		if err == nil {
			log.Infow("organization.add_member.created",
				"orgId", orgId,
				"userId", userId,
				"isAdmin", isAdmin,
			)
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		// the membership already exists, keep it and take the new admin flag
		tx.RollbackTo("sp_add_member")
		log.Infow("organization.add_member.already_exists",
			"orgId", orgId,
			"userId", userId,
		)

		return tx.Model(&model.UserOrganization{}).
			Where("user_id = ? AND org_id = ?", userId, orgId).
			Update("is_admin", isAdmin).Error
	})
}

func (or *OrganizationRepo) GetMember(orgId, userId string) (*model.UserOrganization, error) {
	var member model.UserOrganization
	err := or.db.Database().
		Where("org_id = ? AND user_id = ?", orgId, userId).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (or *OrganizationRepo) Save(org *model.Organization) error {
	return or.db.Database().Save(org).Error
}

// SetDefaultBadgeMessage updates the default badge message in place.
func (or *OrganizationRepo) SetDefaultBadgeMessage(orgId, message string) error {
	return or.db.Database().Model(or.orgModel).
		Where("org_id = ?", orgId).
		Update("default_badge_custom_content", message).Error
}

// SyncedCountRows runs the grouped outer join across open issues and open
// pull requests. One row per (repository, labelled, embedded) combination;
// the pull request count repeats across a repository's rows, a fan-out
// artifact the aggregation in the logic layer compensates for.
func (or *OrganizationRepo) SyncedCountRows(orgId string) ([]model.SyncedCountRow, error) {
	var rows []model.SyncedCountRow
	err := or.db.Database().Raw(`
		SELECT r.repo_id AS repo_id,
		       COALESCE(i.has_pledge_badge_label, 0) AS labelled,
		       (i.pledge_badge_embedded_at IS NOT NULL) AS embedded,
		       COUNT(DISTINCT i.id) AS issue_count,
		       COUNT(DISTINCT p.id) AS pull_request_count
		FROM t_repository r
		LEFT JOIN t_issue i
		       ON i.repo_id = r.repo_id AND i.state = ? AND i.deleted_at IS NULL
		LEFT JOIN t_pull_request p
		       ON p.repo_id = r.repo_id AND p.state = ? AND p.deleted_at IS NULL
		WHERE r.org_id = ? AND r.deleted_at IS NULL
		GROUP BY r.repo_id, labelled, embedded`,
		model.IssueStateOpen, model.IssueStateOpen, orgId,
	).Scan(&rows).Error
	return rows, err
}

// Upsert inserts or updates an organization keyed on (platform, external_id).
func (or *OrganizationRepo) Upsert(org *model.Organization) (*model.Organization, error) {
	err := or.db.Database().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "platform"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "avatar_url", "is_personal", "installation_id",
		}),
	}).Create(org).Error
	if err != nil {
		return nil, err
	}

	// re-read so the caller sees the persisted row, conflicts keep the
	// original org_id
	persisted, err := or.GetByPlatformExternalId(org.Platform, org.ExternalId)
	if err != nil {
		return nil, err
	}
	return persisted, nil
}
