package models

import (
	"gorm.io/gorm"
)

// UserRole represents the global role of a user
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// User represents a user in the system
type User struct {
	ID        string   `json:"id" gorm:"primaryKey"`
	Email     string   `json:"email" gorm:"unique;not null"`
	Password  string   `json:"-" gorm:"not null"`
	FirstName string   `json:"firstName" gorm:"column:first_name;not null"`
	LastName  string   `json:"lastName" gorm:"column:last_name;not null"`
	Avatar    string   `json:"avatar"`
	Role      UserRole `json:"role" gorm:"default:'member'"`
	gorm.Model
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// FullName returns the display name used in notifications and activity entries.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
