package model

// Reward payout for a completed pledge
type Reward struct {
	BaseModel
	RewardId string `gorm:"column:reward_id;uniqueIndex" json:"rewardId"`
	PledgeId string `gorm:"column:pledge_id;index" json:"pledgeId"`
	UserId   string `gorm:"column:user_id" json:"userId"`
	Amount   int64  `gorm:"column:amount" json:"amount"`
	Email    string `gorm:"column:email;not null;index" json:"email"` // backfilled with a sentinel for pre-existing rows
}

func (Reward) TableName() string {
	return "t_reward"
}
