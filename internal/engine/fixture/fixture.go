// Package fixture seeds deterministic development and test data. Builders
// upsert on stable external ids, so reseeding an environment is idempotent.
package fixture

import (
	"time"

	"github.com/go-pledge/pledge/internal/engine/consts"
	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/internal/engine/repo"
	"github.com/go-pledge/pledge/pkg/id"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Fixture struct {
	db    *gorm.DB
	repos *repo.Repositories
}

func NewFixture(db *gorm.DB, repos *repo.Repositories) *Fixture {
	return &Fixture{db: db, repos: repos}
}

// Organization upserts a test organization with a stable external id.
func (f *Fixture) Organization(name string, externalId int64) (*model.Organization, error) {
	return f.repos.Organization.Upsert(&model.Organization{
		OrgId:      id.GetUUIDWithoutDashes(),
		Platform:   consts.PlatformGitHub,
		ExternalId: externalId,
		Name:       name,
		AvatarUrl:  "https://avatars.githubusercontent.com/u/105373340?v=4",
	})
}

// Repository upserts a test repository under org.
func (f *Fixture) Repository(org *model.Organization, name string, externalId int64) (*model.Repository, error) {
	return f.repos.Repository.Upsert(&model.Repository{
		RepoId:     id.GetUUIDWithoutDashes(),
		OrgId:      org.OrgId,
		Platform:   consts.PlatformGitHub,
		ExternalId: externalId,
		Name:       name,
		IsPrivate:  false,
	})
}

// Issue upserts an open test issue. number doubles as the external id.
func (f *Fixture) Issue(org *model.Organization, repository *model.Repository, number int64) (*model.Issue, error) {
	issue := &model.Issue{
		IssueId:        id.GetUUIDWithoutDashes(),
		OrgId:          org.OrgId,
		RepoId:         repository.RepoId,
		Platform:       consts.PlatformGitHub,
		ExternalId:     number,
		Number:         number,
		Title:          "issue title",
		State:          model.IssueStateOpen,
		IssueCreatedAt: time.Now().UTC(),
	}
	err := f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "state"}),
	}).Create(issue).Error
	if err != nil {
		return nil, err
	}

	// the stored business id survives a conflicting reseed
	var persisted model.Issue
	err = f.db.Where("platform = ? AND external_id = ?", issue.Platform, issue.ExternalId).First(&persisted).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}

// PullRequest upserts an open test pull request.
func (f *Fixture) PullRequest(org *model.Organization, repository *model.Repository, number int64) (*model.PullRequest, error) {
	pr := &model.PullRequest{
		PullRequestId: id.GetUUIDWithoutDashes(),
		OrgId:         org.OrgId,
		RepoId:        repository.RepoId,
		Platform:      consts.PlatformGitHub,
		ExternalId:    number,
		Number:        number,
		Title:         "pull request title",
		State:         model.IssueStateOpen,
	}
	err := f.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "state"}),
	}).Create(pr).Error
	if err != nil {
		return nil, err
	}

	var persisted model.PullRequest
	err = f.db.Where("platform = ? AND external_id = ?", pr.Platform, pr.ExternalId).First(&persisted).Error
	if err != nil {
		return nil, err
	}
	return &persisted, nil
}

// User creates a test user unless the username is already taken. All
// fixture users share the password "pledge".
func (f *Fixture) User(username string) (*model.User, error) {
	if existing, err := f.repos.User.GetByUsername(username); err == nil {
		return existing, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("pledge"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserId:   id.GetUUIDWithoutDashes(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	if err := f.repos.User.AddUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Pledge creates a paid test pledge of 25.00 in minor units against issue.
// One pledge per (issue, user) pair is enough for seeding.
func (f *Fixture) Pledge(org *model.Organization, repository *model.Repository, issue *model.Issue, byUser *model.User) (*model.Pledge, error) {
	var existing model.Pledge
	err := f.db.Where("issue_id = ? AND by_user_id = ?", issue.IssueId, byUser.UserId).First(&existing).Error
	if err == nil {
		return &existing, nil
	}

	pledge := &model.Pledge{
		PledgeId: id.GetUUIDWithoutDashes(),
		IssueId:  issue.IssueId,
		RepoId:   repository.RepoId,
		OrgId:    org.OrgId,
		ByUserId: byUser.UserId,
		Amount:   2500,
		Fee:      250,
		State:    model.PledgeStatePaid,
	}
	if err := f.db.Create(pledge).Error; err != nil {
		return nil, err
	}
	return pledge, nil
}
