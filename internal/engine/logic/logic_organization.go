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

package logic

import (
	"errors"
	"time"

	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/pkg/ctx"
	"github.com/go-pledge/pledge/pkg/log"
)

var (
	// ErrResourceNotFound is returned by lookups whose callers require the
	// entity to exist.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrMissingRelationScope reports a protected lookup called without a
	// user or repository scope. Programming contract violation, not a
	// runtime condition.
	ErrMissingRelationScope = errors.New("must provide at least one relationship (userId or repoName)")

	// ErrMissingIdentityFilter reports a protected lookup called without an
	// organization id or name.
	ErrMissingIdentityFilter = errors.New("must provide at least one identity filter (orgId or orgName)")
)

// ProtectedLookup names the parameters of a scoped organization lookup.
// Platform plus at least one identity filter (OrgId/OrgName) plus at least
// one relationship scope (UserId/RepoName) are mandatory.
type ProtectedLookup struct {
	Platform string
	OrgId    string
	OrgName  string
	RepoName string
	UserId   string
}

type OrganizationLogic struct {
	ctx       *ctx.Context
	orgRepo   repo.IOrganizationRepository
	repoRepo  repo.IRepositoryRepository
	issueRepo repo.IIssueRepository
}

func NewOrganizationLogic(ctx *ctx.Context, orgRepo repo.IOrganizationRepository, repoRepo repo.IRepositoryRepository, issueRepo repo.IIssueRepository) *OrganizationLogic {
	return &OrganizationLogic{
		ctx:       ctx,
		orgRepo:   orgRepo,
		repoRepo:  repoRepo,
		issueRepo: issueRepo,
	}
}

// getProtected resolves an organization under a mandatory authorization
// scope. Missing scope parameters fail fast before any query runs. When
// scoped by repository name, the matching non-deleted repository is returned
// alongside the organization so callers can destructure both without an
// extra query. Absence is a nil result, not an error.
func (ol *OrganizationLogic) getProtected(p ProtectedLookup) (*model.Organization, *model.Repository, error) {
	if p.UserId == "" && p.RepoName == "" {
		return nil, nil, ErrMissingRelationScope
	}
	if p.OrgId == "" && p.OrgName == "" {
		return nil, nil, ErrMissingIdentityFilter
	}

	org, err := ol.orgRepo.Find(repo.OrganizationFilter{
		Platform: p.Platform,
		OrgId:    p.OrgId,
		OrgName:  p.OrgName,
		UserId:   p.UserId,
	})
	if err != nil {
		return nil, nil, err
	}
	if org == nil {
		return nil, nil, nil
	}

	if p.RepoName == "" {
		return org, nil, nil
	}

	repository, err := ol.repoRepo.GetByNameAndOrganization(p.RepoName, org.OrgId)
	if err != nil {
		return nil, nil, err
	}
	if repository == nil {
		// the repository scope did not match, the organization is out of
		// reach for this caller
		return nil, nil, nil
	}
	return org, repository, nil
}

// GetForUser resolves an organization by name, scoped to a member.
func (ol *OrganizationLogic) GetForUser(platform, orgName, userId string) (*model.Organization, error) {
	org, _, err := ol.getProtected(ProtectedLookup{
		Platform: platform,
		OrgName:  orgName,
		UserId:   userId,
	})
	return org, err
}

// GetByIdForUser resolves an organization by id, scoped to a member.
func (ol *OrganizationLogic) GetByIdForUser(platform, orgId, userId string) (*model.Organization, error) {
	org, _, err := ol.getProtected(ProtectedLookup{
		Platform: platform,
		OrgId:    orgId,
		UserId:   userId,
	})
	return org, err
}

// GetWithRepo resolves an organization together with one of its
// repositories. Not-found escalates to ErrResourceNotFound here.
func (ol *OrganizationLogic) GetWithRepo(platform, orgName, repoName string) (*model.Organization, *model.Repository, error) {
	org, repository, err := ol.getProtected(ProtectedLookup{
		Platform: platform,
		OrgName:  orgName,
		RepoName: repoName,
	})
	if err != nil {
		return nil, nil, err
	}
	if org == nil {
		return nil, nil, ErrResourceNotFound
	}
	return org, repository, nil
}

// GetWithRepoForUser is GetWithRepo additionally scoped to a member.
func (ol *OrganizationLogic) GetWithRepoForUser(platform, orgName, repoName, userId string) (*model.Organization, *model.Repository, error) {
	org, repository, err := ol.getProtected(ProtectedLookup{
		Platform: platform,
		OrgName:  orgName,
		RepoName: repoName,
		UserId:   userId,
	})
	if err != nil {
		return nil, nil, err
	}
	if org == nil {
		return nil, nil, ErrResourceNotFound
	}
	return org, repository, nil
}

// GetWithRepoAndIssue resolves an organization, one of its repositories and
// an issue by number in one pass. Any missing link escalates to
// ErrResourceNotFound.
func (ol *OrganizationLogic) GetWithRepoAndIssue(platform, orgName, repoName string, issueNumber int64) (*model.Organization, *model.Repository, *model.Issue, error) {
	org, repository, err := ol.getProtected(ProtectedLookup{
		Platform: platform,
		OrgName:  orgName,
		RepoName: repoName,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	if org == nil {
		return nil, nil, nil, ErrResourceNotFound
	}

	issue, err := ol.issueRepo.GetByNumberAndRepository(issueNumber, repository.RepoId)
	if err != nil {
		return nil, nil, nil, err
	}
	if issue == nil {
		return nil, nil, nil, ErrResourceNotFound
	}
	return org, repository, issue, nil
}

// GetByExternalId resolves an organization by its platform identity. Used by
// installation-driven flows where no membership scope exists yet.
func (ol *OrganizationLogic) GetByExternalId(platform string, externalId int64) (*model.Organization, error) {
	org, err := ol.orgRepo.GetByPlatformExternalId(platform, externalId)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrResourceNotFound
	}
	return org, nil
}

// AddUser adds a membership; duplicate inserts resolve to an is_admin
// update inside the repository layer.
func (ol *OrganizationLogic) AddUser(org *model.Organization, user *model.User, isAdmin bool) error {
	return ol.orgRepo.AddMember(org.OrgId, user.UserId, isAdmin)
}

// GetBadgeSettings builds the badge settings view with per-repository sync
// completion. The aggregation is authoritative when it disagrees upward with
// the cached open-issue count, so synced can never exceed open.
func (ol *OrganizationLogic) GetBadgeSettings(org *model.Organization) (*model.OrganizationBadgeSettingsRead, error) {
	repositories, err := ol.repoRepo.ListByOrganization(org.OrgId, true)
	if err != nil {
		return nil, err
	}

	synced, err := ol.GetRepositoriesSyncedCount(org)
	if err != nil {
		return nil, err
	}

	repos := make([]model.RepositoryBadgeSettingsRead, 0, len(repositories))
	for _, repository := range repositories {
		counts := synced[repository.RepoId] // zero value is the defined default

		openIssues := repository.OpenIssues
		if counts.SyncedIssues > openIssues {
			openIssues = counts.SyncedIssues
		}

		repos = append(repos, model.RepositoryBadgeSettingsRead{
			Id:                  repository.RepoId,
			AvatarUrl:           org.AvatarUrl,
			Name:                repository.Name,
			BadgeAutoEmbed:      repository.PledgeBadgeAutoEmbed,
			SyncedIssues:        counts.SyncedIssues,
			AutoEmbeddedIssues:  counts.AutoEmbeddedIssues,
			LabelEmbeddedIssues: counts.LabelEmbeddedIssues,
			PullRequests:        counts.PullRequests,
			OpenIssues:          openIssues,
			IsPrivate:           repository.IsPrivate,
			IsSyncCompleted:     counts.SyncedIssues == openIssues,
		})
	}

	return &model.OrganizationBadgeSettingsRead{
		ShowAmount:    org.PledgeBadgeShowAmount,
		MinimumAmount: org.PledgeMinimumAmount,
		Message:       org.DefaultBadgeCustomContent,
		Repositories:  repos,
	}, nil
}

// UpdateBadgeSettings applies a partial badge settings update. A falsy
// minimum amount or message means "leave unchanged"; distinguishing that
// from an explicit clear is a known limitation. The first successful save
// also stamps onboarded_at, once.
func (ol *OrganizationLogic) UpdateBadgeSettings(org *model.Organization, settings *model.OrganizationBadgeSettingsUpdate) error {
	if settings.ShowAmount != nil {
		org.PledgeBadgeShowAmount = *settings.ShowAmount
	}
	if settings.MinimumAmount != 0 {
		org.PledgeMinimumAmount = settings.MinimumAmount
	}
	if settings.Message != "" {
		org.DefaultBadgeCustomContent = settings.Message
	}

	if org.OnboardedAt == nil {
		now := time.Now().UTC()
		org.OnboardedAt = &now
	}

	if err := ol.orgRepo.Save(org); err != nil {
		return err
	}

	repoIds := make([]string, 0, len(settings.Repositories))
	for _, rs := range settings.Repositories {
		repoIds = append(repoIds, rs.Id)
	}
	repositories, err := ol.repoRepo.ListByIdsAndOrganization(repoIds, org.OrgId)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(repositories))
	for _, repository := range repositories {
		known[repository.RepoId] = true
	}
	for _, rs := range settings.Repositories {
		if !known[rs.Id] {
			continue
		}
		if err := ol.repoRepo.UpdateBadgeSettings(rs.Id, rs.BadgeAutoEmbed); err != nil {
			return err
		}
	}

	log.Infow("organization.update_badge_settings",
		"orgId", org.OrgId,
	)
	return nil
}

// UpdateSettings applies a partial organization settings update and stamps
// onboarded_at on the first save.
func (ol *OrganizationLogic) UpdateSettings(org *model.Organization, settings *model.OrganizationSettingsUpdate) error {
	if settings.BillingEmail != nil {
		org.BillingEmail = *settings.BillingEmail
	}

	if org.OnboardedAt == nil {
		now := time.Now().UTC()
		org.OnboardedAt = &now
	}

	if err := ol.orgRepo.Save(org); err != nil {
		return err
	}
	log.Infow("organization.update_settings",
		"orgId", org.OrgId,
	)
	return nil
}

// SetDefaultIssueBadgeCustomMessage updates the default badge message and
// keeps the in-memory organization in step.
func (ol *OrganizationLogic) SetDefaultIssueBadgeCustomMessage(org *model.Organization, message string) error {
	if err := ol.orgRepo.SetDefaultBadgeMessage(org.OrgId, message); err != nil {
		return err
	}
	org.DefaultBadgeCustomContent = message
	return nil
}

// ListWithRepositoriesForUser lists the user's organizations with their
// repositories attached, open-source repositories first.
func (ol *OrganizationLogic) ListWithRepositoriesForUser(userId string) ([]model.OrganizationWithRepositories, error) {
	orgs, err := ol.orgRepo.ListByUserId(userId)
	if err != nil {
		return nil, err
	}

	out := make([]model.OrganizationWithRepositories, 0, len(orgs))
	for _, org := range orgs {
		repositories, err := ol.repoRepo.ListByOrganization(org.OrgId, true)
		if err != nil {
			return nil, err
		}
		out = append(out, model.OrganizationWithRepositories{
			Organization: org,
			Repositories: repositories,
		})
	}
	return out, nil
}

// GetRepositoriesSyncedCount computes the four badge counters per
// repository from the grouped aggregation rows.
func (ol *OrganizationLogic) GetRepositoriesSyncedCount(org *model.Organization) (map[string]model.SyncedCount, error) {
	rows, err := ol.orgRepo.SyncedCountRows(org.OrgId)
	if err != nil {
		return nil, err
	}
	return aggregateSyncedCounts(rows), nil
}

// aggregateSyncedCounts folds grouped rows into per-repository counters.
// Every issue row contributes to synced_issues. The pull request count is
// repeated on every row of a repository by the grouped join, so it is added
// exactly once per repository. Embedded rows additionally contribute to the
// label or auto embedded counter depending on the labelled flag.
func aggregateSyncedCounts(rows []model.SyncedCountRow) map[string]model.SyncedCount {
	prsCounted := make(map[string]bool)
	ret := make(map[string]model.SyncedCount)

	for _, row := range rows {
		counts := ret[row.RepoId]

		counts.SyncedIssues += row.IssueCount
		if !prsCounted[row.RepoId] {
			counts.SyncedIssues += row.PullRequestCount
			counts.PullRequests = row.PullRequestCount
			prsCounted[row.RepoId] = true
		}

		if row.Embedded {
			if row.Labelled {
				counts.LabelEmbeddedIssues += row.IssueCount
			} else {
				counts.AutoEmbeddedIssues += row.IssueCount
			}
		}

		ret[row.RepoId] = counts
	}
	return ret
}
