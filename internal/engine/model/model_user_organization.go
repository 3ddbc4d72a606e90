package model

// UserOrganization organization membership
type UserOrganization struct {
	BaseModel
	UserId  string `gorm:"column:user_id;uniqueIndex:uk_user_org" json:"userId"`
	OrgId   string `gorm:"column:org_id;uniqueIndex:uk_user_org" json:"orgId"`
	IsAdmin bool   `gorm:"column:is_admin" json:"isAdmin"`
}

func (UserOrganization) TableName() string {
	return "t_user_organization"
}
