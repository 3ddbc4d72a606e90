package model

// Repository synced code repository
type Repository struct {
	BaseModel
	RepoId               string `gorm:"column:repo_id;uniqueIndex" json:"repoId"`
	OrgId                string `gorm:"column:org_id;index" json:"orgId"`
	Platform             string `gorm:"column:platform;uniqueIndex:uk_repo_platform_external" json:"platform"`
	ExternalId           int64  `gorm:"column:external_id;uniqueIndex:uk_repo_platform_external" json:"externalId"`
	Name                 string `gorm:"column:name;index" json:"name"`
	Description          string `gorm:"column:description" json:"description"`
	IsPrivate            bool   `gorm:"column:is_private" json:"isPrivate"`
	OpenIssues           int64  `gorm:"column:open_issues" json:"openIssues"` // cached count from the platform, aggregation may correct it upward
	PledgeBadgeAutoEmbed bool   `gorm:"column:pledge_badge_auto_embed" json:"pledgeBadgeAutoEmbed"`
}

func (Repository) TableName() string {
	return "t_repository"
}

// RepositoryBadgeSettingsRead per-repository badge sync view
type RepositoryBadgeSettingsRead struct {
	Id                  string `json:"id"`
	AvatarUrl           string `json:"avatarUrl"`
	Name                string `json:"name"`
	BadgeAutoEmbed      bool   `json:"badgeAutoEmbed"`
	SyncedIssues        int64  `json:"syncedIssues"`
	AutoEmbeddedIssues  int64  `json:"autoEmbeddedIssues"`
	LabelEmbeddedIssues int64  `json:"labelEmbeddedIssues"`
	PullRequests        int64  `json:"pullRequests"`
	OpenIssues          int64  `json:"openIssues"`
	IsPrivate           bool   `json:"isPrivate"`
	IsSyncCompleted     bool   `json:"isSyncCompleted"`
}

// RepositoryBadgeSettingsUpdate per-repository badge settings update
type RepositoryBadgeSettingsUpdate struct {
	Id             string `json:"id"`
	BadgeAutoEmbed bool   `json:"badgeAutoEmbed"`
}
