package model

// User platform account
type User struct {
	BaseModel
	UserId             string `gorm:"column:user_id;uniqueIndex" json:"userId"`
	Username           string `gorm:"column:username" json:"username"`
	Email              string `gorm:"column:email" json:"email"`
	Avatar             string `gorm:"column:avatar" json:"avatar"`
	Password           string `gorm:"column:password" json:"-"`
	InviteOnlyApproved bool   `gorm:"column:invite_only_approved;not null;default:0" json:"inviteOnlyApproved"` // becomes true only via a successful invite claim
	IsEnabled          int    `gorm:"column:is_enabled;default:1" json:"isEnabled"`                             // 0: disabled, 1: enabled
}

func (User) TableName() string {
	return "t_user"
}

type UserInfo struct {
	UserId   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Email    string `json:"email"`
}
