package model

import (
	"time"

	"gorm.io/datatypes"
)

// Organization synced code-platform organization
type Organization struct {
	BaseModel
	OrgId                     string         `gorm:"column:org_id;uniqueIndex" json:"orgId"`
	Platform                  string         `gorm:"column:platform;uniqueIndex:uk_org_platform_external" json:"platform"`
	ExternalId                int64          `gorm:"column:external_id;uniqueIndex:uk_org_platform_external" json:"externalId"`
	Name                      string         `gorm:"column:name;index" json:"name"`
	AvatarUrl                 string         `gorm:"column:avatar_url" json:"avatarUrl"`
	IsPersonal                bool           `gorm:"column:is_personal" json:"isPersonal"`
	InstallationId            *int64         `gorm:"column:installation_id" json:"installationId"`
	PledgeBadgeShowAmount     bool           `gorm:"column:pledge_badge_show_amount" json:"pledgeBadgeShowAmount"`
	PledgeMinimumAmount       int64          `gorm:"column:pledge_minimum_amount" json:"pledgeMinimumAmount"`
	DefaultBadgeCustomContent string         `gorm:"column:default_badge_custom_content" json:"defaultBadgeCustomContent"`
	BillingEmail              string         `gorm:"column:billing_email" json:"billingEmail"`
	OnboardedAt               *time.Time     `gorm:"column:onboarded_at" json:"onboardedAt"`
	Settings                  datatypes.JSON `gorm:"column:settings;type:json" json:"settings"`
}

func (Organization) TableName() string {
	return "t_organization"
}

// OrganizationSettingsUpdate partial organization settings update
type OrganizationSettingsUpdate struct {
	BillingEmail *string `json:"billingEmail"`
}

// OrganizationWithRepositories is an organization with its repositories
// attached.
type OrganizationWithRepositories struct {
	Organization
	Repositories []Repository `json:"repositories"`
}
