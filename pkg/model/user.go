package model

import "time"

// User is a master-DB row. The address column is the one the sync-all
// endpoint distributes to every tenant database.
type User struct {
	ID             string    `gorm:"column:id;primaryKey"`
	Email          string    `gorm:"column:email;not null"`
	Username       string    `gorm:"column:username"`
	Role           string    `gorm:"column:role"`
	OrganizationID string    `gorm:"column:organization_id"`
	Address        string    `gorm:"column:address"`
	IsActive       bool      `gorm:"column:is_active"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
