package models

import (
	"gorm.io/gorm"
)

// TicketStatus represents the workflow status of a ticket
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in_progress"
	StatusInReview   TicketStatus = "in_review"
	StatusDone       TicketStatus = "done"
)

// TicketPriority represents the priority of a ticket
type TicketPriority string

const (
	PriorityCritical TicketPriority = "critical"
	PriorityHigh     TicketPriority = "high"
	PriorityMedium   TicketPriority = "medium"
	PriorityLow      TicketPriority = "low"
)

// TicketType represents the type of a ticket (task, bug, story, epic)
type TicketType string

const (
	TypeTask  TicketType = "task"
	TypeBug   TicketType = "bug"
	TypeStory TicketType = "story"
	TypeEpic  TicketType = "epic"
)

// UserRef is a denormalized user reference embedded in ticket responses
type UserRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Ticket represents an issue tracked on a project board
type Ticket struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	TicketNumber int            `json:"ticketNumber" gorm:"column:ticket_number"`
	ProjectID    string         `json:"projectId" gorm:"column:project_id;not null;index"`
	Title        string         `json:"title" gorm:"not null"`
	Description  string         `json:"description"`
	Type         TicketType     `json:"type" gorm:"default:'task'"`
	Status       TicketStatus   `json:"status" gorm:"not null;default:'todo';index"`
	Priority     TicketPriority `json:"priority" gorm:"default:'medium'"`
	AssigneeID   string         `json:"-" gorm:"column:assignee_id;index"`
	Assignee     *UserRef       `json:"assignee,omitempty" gorm:"-"`
	ReporterID   string         `json:"-" gorm:"column:reporter_id;not null"`
	Reporter     *UserRef       `json:"reporter,omitempty" gorm:"-"`
	ParentID     string         `json:"parentId" gorm:"column:parent_id"`
	StoryPoints  int            `json:"storyPoints" gorm:"column:story_points"`
	DueDate      string         `json:"dueDate" gorm:"column:due_date"`
	Labels       string         `json:"labels"`
	Key          string         `json:"key" gorm:"-"`
	gorm.Model
}

// TableName specifies the table name for Ticket Model
func (Ticket) TableName() string {
	return "tickets"
}

// Comment represents a comment on a ticket
type Comment struct {
	ID       string   `json:"id" gorm:"primaryKey"`
	TicketID string   `json:"ticketId" gorm:"column:ticket_id;not null;index"`
	UserID   string   `json:"userId" gorm:"column:user_id;not null"`
	Author   *UserRef `json:"author,omitempty" gorm:"-"`
	Content  string   `json:"content" gorm:"not null"`
	gorm.Model
}

// TableName specifies the table name for Comment Model
func (Comment) TableName() string {
	return "comments"
}

// Activity represents an audit entry for ticket and project changes
type Activity struct {
	ID        string `json:"id" gorm:"primaryKey"`
	TicketID  string `json:"ticketId" gorm:"column:ticket_id;index"`
	ProjectID string `json:"projectId" gorm:"column:project_id;index"`
	UserID    string `json:"userId" gorm:"column:user_id;not null"`
	Action    string `json:"action" gorm:"not null"`
	Details   string `json:"details"`
	gorm.Model
}

// TableName specifies the table name for Activity Model
func (Activity) TableName() string {
	return "activities"
}
