package model

// OrganizationBadgeSettingsRead badge settings with per-repository sync state
type OrganizationBadgeSettingsRead struct {
	ShowAmount    bool                          `json:"showAmount"`
	MinimumAmount int64                         `json:"minimumAmount"`
	Message       string                        `json:"message"`
	Repositories  []RepositoryBadgeSettingsRead `json:"repositories"`
}

// OrganizationBadgeSettingsUpdate partial badge settings update.
// A nil ShowAmount, zero MinimumAmount or empty Message means "leave
// unchanged"; an explicit clear is not expressible for the latter two.
type OrganizationBadgeSettingsUpdate struct {
	ShowAmount    *bool                           `json:"showAmount"`
	MinimumAmount int64                           `json:"minimumAmount"`
	Message       string                          `json:"message"`
	Repositories  []RepositoryBadgeSettingsUpdate `json:"repositories"`
}

// SyncedCount per-repository badge sync counters.
// The zero value is the defined default for repositories absent from the
// aggregation result.
type SyncedCount struct {
	SyncedIssues        int64 `json:"syncedIssues"`
	AutoEmbeddedIssues  int64 `json:"autoEmbeddedIssues"`
	LabelEmbeddedIssues int64 `json:"labelEmbeddedIssues"`
	PullRequests        int64 `json:"pullRequests"`
}

// SyncedCountRow one grouped row of the synced-issue aggregation query:
// issue and pull request counts per (repository, labelled, embedded).
type SyncedCountRow struct {
	RepoId           string `gorm:"column:repo_id"`
	Labelled         bool   `gorm:"column:labelled"`
	Embedded         bool   `gorm:"column:embedded"`
	IssueCount       int64  `gorm:"column:issue_count"`
	PullRequestCount int64  `gorm:"column:pull_request_count"`
}
