package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "STUDENT"
	Teacher UserRole = "TEACHER"
	Admin   UserRole = "ADMIN"
)

// swagger:model User
// Balance 只能由 PurchaseService 变动，且永不为负。
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'STUDENT';index" json:"role"`
	Balance   float64   `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
