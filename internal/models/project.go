package models

import (
	"gorm.io/gorm"
)

// MemberRole represents the role of a user within a project
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleMember MemberRole = "member"
)

// Project represents a project containing tickets
type Project struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Key         string `json:"key" gorm:"unique;not null"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId" gorm:"column:owner_id;not null;index"`
	Color       string `json:"color" gorm:"default:'#6366f1'"`
	Icon        string `json:"icon" gorm:"default:'folder'"`
	gorm.Model
}

// TableName specifies the table name for Project Model
func (Project) TableName() string {
	return "projects"
}

// ProjectMember links a user to a project with a role
type ProjectMember struct {
	ID        string     `json:"id" gorm:"primaryKey"`
	ProjectID string     `json:"projectId" gorm:"column:project_id;not null;uniqueIndex:idx_project_user"`
	UserID    string     `json:"userId" gorm:"column:user_id;not null;uniqueIndex:idx_project_user"`
	Role      MemberRole `json:"role" gorm:"default:'member'"`
	gorm.Model
}

// TableName specifies the table name for ProjectMember Model
func (ProjectMember) TableName() string {
	return "project_members"
}

// TicketSequence tracks per-project ticket numbering (e.g. PROJ-42)
type TicketSequence struct {
	ProjectID  string `json:"projectId" gorm:"column:project_id;primaryKey"`
	LastNumber int    `json:"lastNumber" gorm:"column:last_number;default:0"`
}

// TableName specifies the table name for TicketSequence Model
func (TicketSequence) TableName() string {
	return "ticket_sequences"
}
