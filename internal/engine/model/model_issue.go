package model

import "time"

// Issue synced issue
type Issue struct {
	BaseModel
	IssueId               string     `gorm:"column:issue_id;uniqueIndex" json:"issueId"`
	OrgId                 string     `gorm:"column:org_id;index" json:"orgId"`
	RepoId                string     `gorm:"column:repo_id;index" json:"repoId"`
	Platform              string     `gorm:"column:platform;uniqueIndex:uk_issue_platform_external" json:"platform"`
	ExternalId            int64      `gorm:"column:external_id;uniqueIndex:uk_issue_platform_external" json:"externalId"`
	Number                int64      `gorm:"column:number" json:"number"`
	Title                 string     `gorm:"column:title" json:"title"`
	State                 string     `gorm:"column:state;index" json:"state"` // open / closed
	HasPledgeBadgeLabel   bool       `gorm:"column:has_pledge_badge_label" json:"hasPledgeBadgeLabel"`
	PledgeBadgeEmbeddedAt *time.Time `gorm:"column:pledge_badge_embedded_at" json:"pledgeBadgeEmbeddedAt"` // set once the badge is inserted into the description
	IssueCreatedAt        time.Time  `gorm:"column:issue_created_at" json:"issueCreatedAt"`
	IssueModifiedAt       *time.Time `gorm:"column:issue_modified_at" json:"issueModifiedAt"`
}

func (Issue) TableName() string {
	return "t_issue"
}

// IssueState values
const (
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)
