package model

import "time"

// Customer is a tenant-DB row, isolated per organization.
type Customer struct {
	ID          string    `gorm:"column:id;primaryKey"`
	FirstName   string    `gorm:"column:first_name"`
	LastName    string    `gorm:"column:last_name"`
	Email       string    `gorm:"column:email"`
	CompanyName string    `gorm:"column:company_name"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Customer) TableName() string {
	return "tenant_customers"
}
