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
	"testing"

	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrgRepo is an in-memory IOrganizationRepository.
type fakeOrgRepo struct {
	orgs       []model.Organization
	members    map[string]map[string]bool // orgId -> userId -> isAdmin
	syncedRows []model.SyncedCountRow
	findCalls  int
	savedOrgs  []model.Organization
	badgeMsgs  map[string]string
}

func newFakeOrgRepo(orgs ...model.Organization) *fakeOrgRepo {
	return &fakeOrgRepo{
		orgs:      orgs,
		members:   make(map[string]map[string]bool),
		badgeMsgs: make(map[string]string),
	}
}

func (f *fakeOrgRepo) GetByPlatformExternalId(platform string, externalId int64) (*model.Organization, error) {
	for i := range f.orgs {
		if f.orgs[i].Platform == platform && f.orgs[i].ExternalId == externalId {
			return &f.orgs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeOrgRepo) GetByName(platform, name string) (*model.Organization, error) {
	for i := range f.orgs {
		if f.orgs[i].Platform == platform && f.orgs[i].Name == name {
			return &f.orgs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeOrgRepo) Find(filter repo.OrganizationFilter) (*model.Organization, error) {
	f.findCalls++
	for i := range f.orgs {
		org := &f.orgs[i]
		if org.Platform != filter.Platform {
			continue
		}
		if filter.OrgId != "" && org.OrgId != filter.OrgId {
			continue
		}
		if filter.OrgName != "" && org.Name != filter.OrgName {
			continue
		}
		if filter.UserId != "" {
			if _, ok := f.members[org.OrgId][filter.UserId]; !ok {
				continue
			}
		}
		return org, nil
	}
	return nil, nil
}

func (f *fakeOrgRepo) ListInstalled() ([]model.Organization, error) {
	return f.orgs, nil
}

func (f *fakeOrgRepo) ListByUserId(userId string) ([]model.Organization, error) {
	var out []model.Organization
	for _, org := range f.orgs {
		if _, ok := f.members[org.OrgId][userId]; ok {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) AddMember(orgId, userId string, isAdmin bool) error {
	if f.members[orgId] == nil {
		f.members[orgId] = make(map[string]bool)
	}
	// duplicate inserts resolve to an update, last writer wins
	f.members[orgId][userId] = isAdmin
	return nil
}

func (f *fakeOrgRepo) GetMember(orgId, userId string) (*model.UserOrganization, error) {
	isAdmin, ok := f.members[orgId][userId]
	if !ok {
		return nil, nil
	}
	return &model.UserOrganization{OrgId: orgId, UserId: userId, IsAdmin: isAdmin}, nil
}

func (f *fakeOrgRepo) Save(org *model.Organization) error {
	f.savedOrgs = append(f.savedOrgs, *org)
	return nil
}

func (f *fakeOrgRepo) SetDefaultBadgeMessage(orgId, message string) error {
	f.badgeMsgs[orgId] = message
	return nil
}

func (f *fakeOrgRepo) SyncedCountRows(orgId string) ([]model.SyncedCountRow, error) {
	return f.syncedRows, nil
}

func (f *fakeOrgRepo) Upsert(org *model.Organization) (*model.Organization, error) {
	f.orgs = append(f.orgs, *org)
	return org, nil
}

// fakeRepoRepo is an in-memory IRepositoryRepository.
type fakeRepoRepo struct {
	repos      []model.Repository
	autoEmbeds map[string]bool
}

func newFakeRepoRepo(repos ...model.Repository) *fakeRepoRepo {
	return &fakeRepoRepo{repos: repos, autoEmbeds: make(map[string]bool)}
}

func (f *fakeRepoRepo) GetByRepoId(repoId string) (*model.Repository, error) {
	for i := range f.repos {
		if f.repos[i].RepoId == repoId {
			return &f.repos[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepoRepo) GetByNameAndOrganization(name, orgId string) (*model.Repository, error) {
	for i := range f.repos {
		if f.repos[i].Name == name && f.repos[i].OrgId == orgId {
			return &f.repos[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepoRepo) ListByOrganization(orgId string, openSourceFirst bool) ([]model.Repository, error) {
	var out []model.Repository
	for _, r := range f.repos {
		if r.OrgId == orgId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepoRepo) ListByIdsAndOrganization(repoIds []string, orgId string) ([]model.Repository, error) {
	ids := make(map[string]bool, len(repoIds))
	for _, rid := range repoIds {
		ids[rid] = true
	}
	var out []model.Repository
	for _, r := range f.repos {
		if r.OrgId == orgId && ids[r.RepoId] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepoRepo) UpdateBadgeSettings(repoId string, autoEmbed bool) error {
	f.autoEmbeds[repoId] = autoEmbed
	return nil
}

func (f *fakeRepoRepo) Upsert(repository *model.Repository) (*model.Repository, error) {
	f.repos = append(f.repos, *repository)
	return repository, nil
}

// fakeIssueRepo is an in-memory IIssueRepository.
type fakeIssueRepo struct {
	issues []model.Issue
}

func newFakeIssueRepo(issues ...model.Issue) *fakeIssueRepo {
	return &fakeIssueRepo{issues: issues}
}

func (f *fakeIssueRepo) GetByNumberAndRepository(number int64, repoId string) (*model.Issue, error) {
	for i := range f.issues {
		if f.issues[i].Number == number && f.issues[i].RepoId == repoId {
			return &f.issues[i], nil
		}
	}
	return nil, nil
}

func testOrg(orgId, name string) model.Organization {
	return model.Organization{
		OrgId:    orgId,
		Platform: consts.PlatformGitHub,
		Name:     name,
	}
}

func TestProtectedLookupUsageErrors(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())

	tests := []struct {
		name    string
		lookup  ProtectedLookup
		wantErr error
	}{
		{
			name:    "no relationship scope",
			lookup:  ProtectedLookup{Platform: consts.PlatformGitHub, OrgName: "acme"},
			wantErr: ErrMissingRelationScope,
		},
		{
			name:    "no identity filter",
			lookup:  ProtectedLookup{Platform: consts.PlatformGitHub, UserId: "alice"},
			wantErr: ErrMissingIdentityFilter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := orgRepo.findCalls
			_, _, err := ol.getProtected(tt.lookup)
			assert.ErrorIs(t, err, tt.wantErr)
			// the contract check runs before any query
			assert.Equal(t, before, orgRepo.findCalls)
		})
	}
}

func TestGetForUserScopesMembership(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	require.NoError(t, orgRepo.AddMember("org1", "alice", false))

	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())

	org, err := ol.GetForUser(consts.PlatformGitHub, "acme", "alice")
	require.NoError(t, err)
	require.NotNil(t, org)
	assert.Equal(t, "org1", org.OrgId)

	// non-members cannot see the organization
	org, err = ol.GetForUser(consts.PlatformGitHub, "acme", "mallory")
	require.NoError(t, err)
	assert.Nil(t, org)
}

func TestGetWithRepoForUser(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	require.NoError(t, orgRepo.AddMember("org1", "alice", false))
	repoRepo := newFakeRepoRepo(model.Repository{RepoId: "repo1", OrgId: "org1", Name: "widget"})

	ol := NewOrganizationLogic(nil, orgRepo, repoRepo, newFakeIssueRepo())

	org, repository, err := ol.GetWithRepoForUser(consts.PlatformGitHub, "acme", "widget", "alice")
	require.NoError(t, err)
	require.NotNil(t, org)
	require.NotNil(t, repository)
	assert.Equal(t, "repo1", repository.RepoId)

	// an unknown repository hides the organization too
	_, _, err = ol.GetWithRepoForUser(consts.PlatformGitHub, "acme", "gone", "alice")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestGetWithRepoAndIssue(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	repoRepo := newFakeRepoRepo(model.Repository{RepoId: "repo1", OrgId: "org1", Name: "widget"})
	issueRepo := newFakeIssueRepo(model.Issue{IssueId: "issue1", RepoId: "repo1", Number: 42})

	ol := NewOrganizationLogic(nil, orgRepo, repoRepo, issueRepo)

	org, repository, issue, err := ol.GetWithRepoAndIssue(consts.PlatformGitHub, "acme", "widget", 42)
	require.NoError(t, err)
	assert.Equal(t, "org1", org.OrgId)
	assert.Equal(t, "repo1", repository.RepoId)
	assert.Equal(t, "issue1", issue.IssueId)

	// an unknown issue number hides the whole chain
	_, _, _, err = ol.GetWithRepoAndIssue(consts.PlatformGitHub, "acme", "widget", 99)
	assert.ErrorIs(t, err, ErrResourceNotFound)

	// issues are scoped to the repository they live in
	_, _, _, err = ol.GetWithRepoAndIssue(consts.PlatformGitHub, "acme", "gone", 42)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestGetByExternalId(t *testing.T) {
	acme := testOrg("org1", "acme")
	acme.ExternalId = 1234
	orgRepo := newFakeOrgRepo(acme)

	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())

	org, err := ol.GetByExternalId(consts.PlatformGitHub, 1234)
	require.NoError(t, err)
	assert.Equal(t, "org1", org.OrgId)

	_, err = ol.GetByExternalId(consts.PlatformGitHub, 5678)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestAddUserDuplicateTolerant(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())

	org := &orgRepo.orgs[0]
	alice := &model.User{UserId: "alice"}

	require.NoError(t, ol.AddUser(org, alice, false))
	require.NoError(t, ol.AddUser(org, alice, true))

	member, err := orgRepo.GetMember("org1", "alice")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.True(t, member.IsAdmin)
}

func TestAggregateSyncedCounts(t *testing.T) {
	// one repository, three open issues (one labelled and embedded, one
	// auto embedded, one untouched) and two open pull requests. The pull
	// request count repeats on every grouped row.
	rows := []model.SyncedCountRow{
		{RepoId: "repo1", Labelled: true, Embedded: true, IssueCount: 1, PullRequestCount: 2},
		{RepoId: "repo1", Labelled: false, Embedded: true, IssueCount: 1, PullRequestCount: 2},
		{RepoId: "repo1", Labelled: false, Embedded: false, IssueCount: 1, PullRequestCount: 2},
	}

	counts := aggregateSyncedCounts(rows)
	require.Contains(t, counts, "repo1")

	got := counts["repo1"]
	assert.Equal(t, int64(5), got.SyncedIssues, "3 issues + 2 PRs, PRs counted once")
	assert.Equal(t, int64(1), got.LabelEmbeddedIssues)
	assert.Equal(t, int64(1), got.AutoEmbeddedIssues)
	assert.Equal(t, int64(2), got.PullRequests)
}

func TestAggregateSyncedCountsMultipleRepos(t *testing.T) {
	rows := []model.SyncedCountRow{
		{RepoId: "repo1", Labelled: false, Embedded: false, IssueCount: 2, PullRequestCount: 1},
		{RepoId: "repo2", Labelled: true, Embedded: true, IssueCount: 4, PullRequestCount: 0},
	}

	counts := aggregateSyncedCounts(rows)
	assert.Equal(t, int64(3), counts["repo1"].SyncedIssues)
	assert.Equal(t, int64(4), counts["repo2"].SyncedIssues)
	assert.Equal(t, int64(4), counts["repo2"].LabelEmbeddedIssues)
}

func TestGetBadgeSettingsMonotonicOpenIssues(t *testing.T) {
	tests := []struct {
		name          string
		storedOpen    int64
		syncedIssues  int64
		wantOpen      int64
		wantCompleted bool
	}{
		{
			name:          "aggregation corrects a stale cached count",
			storedOpen:    2,
			syncedIssues:  3,
			wantOpen:      3,
			wantCompleted: true,
		},
		{
			name:          "sync still in progress",
			storedOpen:    5,
			syncedIssues:  3,
			wantOpen:      5,
			wantCompleted: false,
		},
		{
			name:          "repository absent from aggregation",
			storedOpen:    0,
			syncedIssues:  0,
			wantOpen:      0,
			wantCompleted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
			if tt.syncedIssues > 0 {
				orgRepo.syncedRows = []model.SyncedCountRow{
					{RepoId: "repo1", IssueCount: tt.syncedIssues},
				}
			}
			repoRepo := newFakeRepoRepo(model.Repository{
				RepoId:     "repo1",
				OrgId:      "org1",
				Name:       "widget",
				OpenIssues: tt.storedOpen,
			})

			ol := NewOrganizationLogic(nil, orgRepo, repoRepo, newFakeIssueRepo())

			settings, err := ol.GetBadgeSettings(&orgRepo.orgs[0])
			require.NoError(t, err)
			require.Len(t, settings.Repositories, 1)

			got := settings.Repositories[0]
			assert.Equal(t, tt.wantOpen, got.OpenIssues)
			assert.Equal(t, tt.wantCompleted, got.IsSyncCompleted)
		})
	}
}

func TestUpdateBadgeSettingsPartialUpdate(t *testing.T) {
	orgRepo := newFakeOrgRepo(model.Organization{
		OrgId:                     "org1",
		Platform:                  consts.PlatformGitHub,
		Name:                      "acme",
		PledgeMinimumAmount:       5000,
		DefaultBadgeCustomContent: "keep me",
	})
	repoRepo := newFakeRepoRepo(model.Repository{RepoId: "repo1", OrgId: "org1", Name: "widget"})

	ol := NewOrganizationLogic(nil, orgRepo, repoRepo, newFakeIssueRepo())
	org := &orgRepo.orgs[0]

	show := true
	err := ol.UpdateBadgeSettings(org, &model.OrganizationBadgeSettingsUpdate{
		ShowAmount: &show,
		// zero MinimumAmount and empty Message mean "leave unchanged"
		Repositories: []model.RepositoryBadgeSettingsUpdate{
			{Id: "repo1", BadgeAutoEmbed: true},
			{Id: "ghost", BadgeAutoEmbed: true}, // not in this organization, skipped
		},
	})
	require.NoError(t, err)

	assert.True(t, org.PledgeBadgeShowAmount)
	assert.Equal(t, int64(5000), org.PledgeMinimumAmount)
	assert.Equal(t, "keep me", org.DefaultBadgeCustomContent)

	assert.Equal(t, map[string]bool{"repo1": true}, repoRepo.autoEmbeds)
}

func TestUpdateBadgeSettingsStampsOnboardedOnce(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())
	org := &orgRepo.orgs[0]

	require.NoError(t, ol.UpdateBadgeSettings(org, &model.OrganizationBadgeSettingsUpdate{}))
	require.NotNil(t, org.OnboardedAt)
	first := *org.OnboardedAt

	require.NoError(t, ol.UpdateBadgeSettings(org, &model.OrganizationBadgeSettingsUpdate{}))
	assert.Equal(t, first, *org.OnboardedAt)
}

func TestUpdateSettings(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())
	org := &orgRepo.orgs[0]

	email := "billing@acme.test"
	require.NoError(t, ol.UpdateSettings(org, &model.OrganizationSettingsUpdate{BillingEmail: &email}))
	assert.Equal(t, email, org.BillingEmail)
	assert.NotNil(t, org.OnboardedAt)
	require.Len(t, orgRepo.savedOrgs, 1)

	// nil BillingEmail leaves the stored value alone
	require.NoError(t, ol.UpdateSettings(org, &model.OrganizationSettingsUpdate{}))
	assert.Equal(t, email, org.BillingEmail)
}

func TestListWithRepositoriesForUser(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"), testOrg("org2", "umbrella"))
	require.NoError(t, orgRepo.AddMember("org1", "alice", false))
	repoRepo := newFakeRepoRepo(
		model.Repository{RepoId: "repo1", OrgId: "org1", Name: "widget"},
		model.Repository{RepoId: "repo2", OrgId: "org2", Name: "other"},
	)

	ol := NewOrganizationLogic(nil, orgRepo, repoRepo, newFakeIssueRepo())

	orgs, err := ol.ListWithRepositoriesForUser("alice")
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "org1", orgs[0].OrgId)
	require.Len(t, orgs[0].Repositories, 1)
	assert.Equal(t, "repo1", orgs[0].Repositories[0].RepoId)
}

func TestSetDefaultIssueBadgeCustomMessage(t *testing.T) {
	orgRepo := newFakeOrgRepo(testOrg("org1", "acme"))
	ol := NewOrganizationLogic(nil, orgRepo, newFakeRepoRepo(), newFakeIssueRepo())
	org := &orgRepo.orgs[0]

	require.NoError(t, ol.SetDefaultIssueBadgeCustomMessage(org, "fund this issue"))
	assert.Equal(t, "fund this issue", org.DefaultBadgeCustomContent)
	assert.Equal(t, "fund this issue", orgRepo.badgeMsgs["org1"])
}
