package models

import (
	"gorm.io/gorm"
)

// Notification types written by the ticket and meeting producers.
const (
	NotifMeetingInvite    = "meeting_invite"
	NotifMeetingUpdated   = "meeting_updated"
	NotifMeetingCancelled = "meeting_cancelled"
	NotifMeetingResponse  = "meeting_response"
	NotifTicketAssigned   = "ticket_assigned"
)

// Notification represents a persisted notification for a user
type Notification struct {
	ID            string `json:"id" gorm:"primaryKey"`
	UserID        string `json:"userId" gorm:"column:user_id;not null;index"`
	Type          string `json:"type" gorm:"not null"`
	Title         string `json:"title" gorm:"not null"`
	Message       string `json:"message"`
	ReferenceID   string `json:"referenceId" gorm:"column:reference_id"`
	ReferenceType string `json:"referenceType" gorm:"column:reference_type"`
	IsRead        bool   `json:"isRead" gorm:"column:is_read;default:false"`
	gorm.Model
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}
