package model

// Invite signup invitation code
type Invite struct {
	BaseModel
	InviteId    string  `gorm:"column:invite_id;uniqueIndex" json:"inviteId"`
	Code        string  `gorm:"column:code;uniqueIndex" json:"code"` // 8 chars, [A-Z0-9]
	CreatedBy   string  `gorm:"column:created_by" json:"createdBy"`  // user id of the issuer
	ClaimedBy   *string `gorm:"column:claimed_by" json:"claimedBy"`  // user id of the claimer, nil until claimed
	SentToEmail string  `gorm:"column:sent_to_email" json:"sentToEmail"`
	Note        string  `gorm:"column:note" json:"note"`
}

func (Invite) TableName() string {
	return "t_invite"
}

// InviteDetail is an invite with its creator and claimer resolved.
type InviteDetail struct {
	Invite
	CreatedByUser *UserInfo `json:"createdByUser,omitempty"`
	ClaimedByUser *UserInfo `json:"claimedByUser,omitempty"`
}
