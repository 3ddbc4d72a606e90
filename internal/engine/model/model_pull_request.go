package model

import "time"

// PullRequest synced pull request
type PullRequest struct {
	BaseModel
	PullRequestId string     `gorm:"column:pull_request_id;uniqueIndex" json:"pullRequestId"`
	OrgId         string     `gorm:"column:org_id;index" json:"orgId"`
	RepoId        string     `gorm:"column:repo_id;index" json:"repoId"`
	Platform      string     `gorm:"column:platform;uniqueIndex:uk_pr_platform_external" json:"platform"`
	ExternalId    int64      `gorm:"column:external_id;uniqueIndex:uk_pr_platform_external" json:"externalId"`
	Number        int64      `gorm:"column:number" json:"number"`
	Title         string     `gorm:"column:title" json:"title"`
	State         string     `gorm:"column:state;index" json:"state"` // open / closed / merged
	MergedAt      *time.Time `gorm:"column:merged_at" json:"mergedAt"`
}

func (PullRequest) TableName() string {
	return "t_pull_request"
}
