package model

import (
	"encoding/json"
	"time"
)

// Organization is a master-DB row describing one tenant organization.
type Organization struct {
	ID               string          `gorm:"column:id;primaryKey"`
	Name             string          `gorm:"column:name;not null"`
	Slug             string          `gorm:"column:slug;not null"`
	Description      string          `gorm:"column:description"`
	IsActive         bool            `gorm:"column:is_active"`
	SubscriptionTier string          `gorm:"column:subscription_tier"`
	Settings         json.RawMessage `gorm:"column:settings;type:jsonb"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Organization) TableName() string {
	return "organizations"
}

// DatabaseCreated reports whether provisioning already recorded a tenant
// database for this organization.
func (o Organization) DatabaseCreated() bool {
	var settings struct {
		DatabaseCreated bool `json:"database_created"`
	}
	if len(o.Settings) == 0 {
		return false
	}
	if err := json.Unmarshal(o.Settings, &settings); err != nil {
		return false
	}
	return settings.DatabaseCreated
}
