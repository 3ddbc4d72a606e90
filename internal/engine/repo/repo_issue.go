package repo

import (
	"errors"

	"github.com/go-pledge/pledge/internal/engine/model"
	"github.com/go-pledge/pledge/pkg/database"
	"gorm.io/gorm"
)

type IIssueRepository interface {
	GetByNumberAndRepository(number int64, repoId string) (*model.Issue, error)
}

type IssueRepo struct {
	db         database.IDatabase
	issueModel *model.Issue
}

func NewIssueRepo(db database.IDatabase) IIssueRepository {
	return &IssueRepo{
		db:         db,
		issueModel: &model.Issue{},
	}
}

// GetByNumberAndRepository returns nil without an error when no issue
// matches.
func (ir *IssueRepo) GetByNumberAndRepository(number int64, repoId string) (*model.Issue, error) {
	var issue model.Issue
	err := ir.db.Database().
		Where("number = ? AND repo_id = ?", number, repoId).
		First(&issue).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
