package models

import (
	"gorm.io/gorm"
)

// MeetingStatus represents the lifecycle status of a meeting
type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingCompleted MeetingStatus = "completed"
	MeetingCancelled MeetingStatus = "cancelled"
)

// ParticipantStatus represents a participant's response to an invitation
type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantAccepted  ParticipantStatus = "accepted"
	ParticipantDeclined  ParticipantStatus = "declined"
	ParticipantTentative ParticipantStatus = "tentative"
)

// Meeting represents a scheduled meeting, optionally linked to a project
type Meeting struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Title       string        `json:"title" gorm:"not null"`
	Description string        `json:"description"`
	OrganizerID string        `json:"organizerId" gorm:"column:organizer_id;not null;index"`
	ProjectID   string        `json:"projectId" gorm:"column:project_id"`
	MeetingLink string        `json:"meetingLink" gorm:"column:meeting_link"`
	StartTime   string        `json:"startTime" gorm:"column:start_time;not null"`
	EndTime     string        `json:"endTime" gorm:"column:end_time;not null"`
	Location    string        `json:"location"`
	Type        string        `json:"type" gorm:"default:'general'"`
	Recurring   string        `json:"recurring"`
	Status      MeetingStatus `json:"status" gorm:"default:'scheduled'"`
	gorm.Model
}

// TableName specifies the table name for Meeting Model
func (Meeting) TableName() string {
	return "meetings"
}

// MeetingParticipant links a user to a meeting with an RSVP status
type MeetingParticipant struct {
	ID        string            `json:"id" gorm:"primaryKey"`
	MeetingID string            `json:"meetingId" gorm:"column:meeting_id;not null;uniqueIndex:idx_meeting_user"`
	UserID    string            `json:"userId" gorm:"column:user_id;not null;uniqueIndex:idx_meeting_user"`
	Status    ParticipantStatus `json:"status" gorm:"default:'pending'"`
	gorm.Model
}

// TableName specifies the table name for MeetingParticipant Model
func (MeetingParticipant) TableName() string {
	return "meeting_participants"
}
