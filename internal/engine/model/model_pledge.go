package model

// Pledge monetary pledge against an issue
type Pledge struct {
	BaseModel
	PledgeId string `gorm:"column:pledge_id;uniqueIndex" json:"pledgeId"`
	IssueId  string `gorm:"column:issue_id;index" json:"issueId"`
	RepoId   string `gorm:"column:repo_id;index" json:"repoId"`
	OrgId    string `gorm:"column:org_id;index" json:"orgId"`
	ByUserId string `gorm:"column:by_user_id" json:"byUserId"`
	Amount   int64  `gorm:"column:amount" json:"amount"` // minor units
	Fee      int64  `gorm:"column:fee" json:"fee"`
	State    string `gorm:"column:state" json:"state"`
}

func (Pledge) TableName() string {
	return "t_pledge"
}

// PledgeState values
const (
	PledgeStateInitiated = "initiated"
	PledgeStateCreated   = "created"
	PledgeStatePaid      = "paid"
)
