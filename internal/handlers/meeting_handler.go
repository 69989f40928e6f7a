package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"projectflow-api/internal/database"
	"projectflow-api/internal/models"
	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MeetingHandler serves the meeting endpoints and produces realtime events
// for participants.
type MeetingHandler struct {
	Events realtime.Publisher
}

// NewMeetingHandler wires the meeting endpoints to an event publisher.
func NewMeetingHandler(events realtime.Publisher) *MeetingHandler {
	return &MeetingHandler{Events: events}
}

// CreateMeetingRequest represents the payload for scheduling a meeting
type CreateMeetingRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	ProjectID    string   `json:"projectId"`
	StartTime    string   `json:"startTime" binding:"required"`
	EndTime      string   `json:"endTime" binding:"required"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Recurring    string   `json:"recurring"`
	Participants []string `json:"participants"`
}

// UpdateMeetingRequest represents the payload for updating a meeting
type UpdateMeetingRequest struct {
	Title       *string               `json:"title"`
	Description *string               `json:"description"`
	StartTime   *string               `json:"startTime"`
	EndTime     *string               `json:"endTime"`
	Location    *string               `json:"location"`
	Status      *models.MeetingStatus `json:"status"`
}

// RespondRequest represents an RSVP to a meeting invitation
type RespondRequest struct {
	Status models.ParticipantStatus `json:"status" binding:"required,oneof=accepted declined tentative"`
}

// ParticipantsRequest represents the payload for adding participants
type ParticipantsRequest struct {
	Participants []string `json:"participants" binding:"required"`
}

// MeetingParticipantView is the participant payload inside meeting responses
type MeetingParticipantView struct {
	ID        string                   `json:"id"`
	Email     string                   `json:"email"`
	FirstName string                   `json:"firstName"`
	LastName  string                   `json:"lastName"`
	Avatar    string                   `json:"avatar"`
	Status    models.ParticipantStatus `json:"status"`
}

func meetingParticipants(db *gorm.DB, meetingID string) []MeetingParticipantView {
	var participants []MeetingParticipantView
	db.Model(&models.MeetingParticipant{}).
		Select("users.id, users.email, users.first_name, users.last_name, users.avatar, meeting_participants.status").
		Joins("JOIN users ON users.id = meeting_participants.user_id").
		Where("meeting_participants.meeting_id = ?", meetingID).
		Scan(&participants)
	return participants
}

func participantUserIDs(db *gorm.DB, meetingID, excludeUserID string) []string {
	var ids []string
	db.Model(&models.MeetingParticipant{}).
		Where("meeting_id = ? AND user_id != ?", meetingID, excludeUserID).
		Pluck("user_id", &ids)
	return ids
}

func (h *MeetingHandler) meetingPayload(m models.Meeting, action string) realtime.MeetingPayload {
	return realtime.MeetingPayload{
		MeetingID:   m.ID,
		Title:       m.Title,
		StartTime:   m.StartTime,
		EndTime:     m.EndTime,
		OrganizerID: m.OrganizerID,
		Action:      action,
	}
}

// Create handles POST /api/meetings
func (h *MeetingHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	meeting := models.Meeting{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		OrganizerID: userID,
		ProjectID:   req.ProjectID,
		MeetingLink: fmt.Sprintf("https://meet.projectflow.dev/%s", uuid.NewString()[:8]),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Type:        req.Type,
		Recurring:   req.Recurring,
		Status:      models.MeetingScheduled,
	}
	if meeting.Type == "" {
		meeting.Type = "general"
	}

	if err := db.Create(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create meeting"})
		return
	}

	// Organizer is always an accepted participant
	db.Create(&models.MeetingParticipant{
		ID:        uuid.NewString(),
		MeetingID: meeting.ID,
		UserID:    userID,
		Status:    models.ParticipantAccepted,
	})

	var invited []string
	for _, participantID := range req.Participants {
		if participantID == userID {
			continue
		}
		if err := db.Create(&models.MeetingParticipant{
			ID:        uuid.NewString(),
			MeetingID: meeting.ID,
			UserID:    participantID,
			Status:    models.ParticipantPending,
		}).Error; err != nil {
			continue
		}
		invited = append(invited, participantID)

		createNotification(h.Events, models.Notification{
			UserID:        participantID,
			Type:          models.NotifMeetingInvite,
			Title:         "Meeting Invitation",
			Message:       fmt.Sprintf("You've been invited to %q", meeting.Title),
			ReferenceID:   meeting.ID,
			ReferenceType: "meeting",
		})
	}

	if len(invited) > 0 {
		h.Events.EmitMeetingNotification(invited, h.meetingPayload(meeting, "invited"))
	}

	c.JSON(http.StatusCreated, gin.H{
		"meeting":      meeting,
		"participants": meetingParticipants(db, meeting.ID),
		"message":      "Meeting scheduled successfully",
	})
}

// List handles GET /api/meetings
// Returns meetings the user organizes or participates in.
func (h *MeetingHandler) List(c *gin.Context) {
	userID := c.GetString("user_id")

	db := database.GetDB()
	query := db.Model(&models.Meeting{}).
		Distinct("meetings.*").
		Joins("LEFT JOIN meeting_participants mp ON mp.meeting_id = meetings.id").
		Where("meetings.organizer_id = ? OR mp.user_id = ?", userID, userID)

	if startDate := c.Query("startDate"); startDate != "" {
		query = query.Where("meetings.start_time >= ?", startDate)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		query = query.Where("meetings.end_time <= ?", endDate)
	}
	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("meetings.project_id = ?", projectID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("meetings.status = ?", status)
	}

	var meetings []models.Meeting
	if err := query.Order("meetings.start_time asc").Find(&meetings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meetings"})
		return
	}

	results := make([]gin.H, 0, len(meetings))
	for _, m := range meetings {
		results = append(results, gin.H{
			"meeting":      m,
			"participants": meetingParticipants(db, m.ID),
		})
	}

	c.JSON(http.StatusOK, gin.H{"meetings": results})
}

// Upcoming handles GET /api/meetings/upcoming
func (h *MeetingHandler) Upcoming(c *gin.Context) {
	userID := c.GetString("user_id")
	now := time.Now().UTC().Format(time.RFC3339)

	var meetings []models.Meeting
	err := database.GetDB().Model(&models.Meeting{}).
		Distinct("meetings.*").
		Joins("LEFT JOIN meeting_participants mp ON mp.meeting_id = meetings.id").
		Where("(meetings.organizer_id = ? OR mp.user_id = ?) AND meetings.start_time >= ? AND meetings.status = ?",
			userID, userID, now, models.MeetingScheduled).
		Order("meetings.start_time asc").
		Limit(10).
		Find(&meetings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch upcoming meetings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meetings": meetings})
}

// Get handles GET /api/meetings/:id
func (h *MeetingHandler) Get(c *gin.Context) {
	meetingID := c.Param("id")

	db := database.GetDB()

	var meeting models.Meeting
	if err := db.Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting":      meeting,
		"participants": meetingParticipants(db, meetingID),
	})
}

// Update handles PUT /api/meetings/:id
// Only the organizer can update; participants are notified.
func (h *MeetingHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	meetingID := c.Param("id")

	var req UpdateMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var meeting models.Meeting
	if err := db.Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		}
		return
	}

	if meeting.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only organizer can update the meeting"})
		return
	}

	if req.Title != nil {
		meeting.Title = *req.Title
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}
	if req.StartTime != nil {
		meeting.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		meeting.EndTime = *req.EndTime
	}
	if req.Location != nil {
		meeting.Location = *req.Location
	}
	if req.Status != nil {
		meeting.Status = *req.Status
	}

	if err := db.Save(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update meeting"})
		return
	}

	others := participantUserIDs(db, meetingID, userID)
	for _, participantID := range others {
		createNotification(h.Events, models.Notification{
			UserID:        participantID,
			Type:          models.NotifMeetingUpdated,
			Title:         "Meeting Updated",
			Message:       fmt.Sprintf("Meeting %q has been updated", meeting.Title),
			ReferenceID:   meetingID,
			ReferenceType: "meeting",
		})
	}
	if len(others) > 0 {
		h.Events.EmitMeetingNotification(others, h.meetingPayload(meeting, "updated"))
	}

	c.JSON(http.StatusOK, gin.H{
		"meeting": meeting,
		"message": "Meeting updated successfully",
	})
}

// Delete handles DELETE /api/meetings/:id
// Only the organizer can cancel; participants are notified.
func (h *MeetingHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	meetingID := c.Param("id")

	db := database.GetDB()

	var meeting models.Meeting
	if err := db.Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		}
		return
	}

	if meeting.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only organizer can delete the meeting"})
		return
	}

	others := participantUserIDs(db, meetingID, userID)
	for _, participantID := range others {
		createNotification(h.Events, models.Notification{
			UserID:        participantID,
			Type:          models.NotifMeetingCancelled,
			Title:         "Meeting Cancelled",
			Message:       fmt.Sprintf("Meeting %q has been cancelled", meeting.Title),
			ReferenceID:   meetingID,
			ReferenceType: "meeting",
		})
	}
	if len(others) > 0 {
		h.Events.EmitMeetingNotification(others, h.meetingPayload(meeting, "cancelled"))
	}

	if err := db.Delete(&meeting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete meeting"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meeting deleted successfully"})
}

// Respond handles POST /api/meetings/:id/respond
// Records the RSVP and notifies the organizer.
func (h *MeetingHandler) Respond(c *gin.Context) {
	userID := c.GetString("user_id")
	meetingID := c.Param("id")

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var meeting models.Meeting
	if err := db.Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		}
		return
	}

	if err := db.Model(&models.MeetingParticipant{}).
		Where("meeting_id = ? AND user_id = ?", meetingID, userID).
		Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to respond to meeting"})
		return
	}

	var user models.User
	responder := "A participant"
	if err := db.Where("id = ?", userID).First(&user).Error; err == nil {
		responder = user.FullName()
	}

	createNotification(h.Events, models.Notification{
		UserID:        meeting.OrganizerID,
		Type:          models.NotifMeetingResponse,
		Title:         "Meeting Response",
		Message:       fmt.Sprintf("%s %s your meeting invitation", responder, req.Status),
		ReferenceID:   meetingID,
		ReferenceType: "meeting",
	})

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Meeting invitation %s", req.Status)})
}

// AddParticipants handles POST /api/meetings/:id/participants
func (h *MeetingHandler) AddParticipants(c *gin.Context) {
	meetingID := c.Param("id")

	var req ParticipantsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var meeting models.Meeting
	if err := db.Where("id = ?", meetingID).First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meeting not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch meeting"})
		}
		return
	}

	var invited []string
	for _, participantID := range req.Participants {
		var count int64
		db.Model(&models.MeetingParticipant{}).
			Where("meeting_id = ? AND user_id = ?", meetingID, participantID).
			Count(&count)
		if count > 0 {
			continue
		}
		if err := db.Create(&models.MeetingParticipant{
			ID:        uuid.NewString(),
			MeetingID: meetingID,
			UserID:    participantID,
			Status:    models.ParticipantPending,
		}).Error; err != nil {
			continue
		}
		invited = append(invited, participantID)

		createNotification(h.Events, models.Notification{
			UserID:        participantID,
			Type:          models.NotifMeetingInvite,
			Title:         "Meeting Invitation",
			Message:       fmt.Sprintf("You've been invited to %q", meeting.Title),
			ReferenceID:   meetingID,
			ReferenceType: "meeting",
		})
	}

	if len(invited) > 0 {
		h.Events.EmitMeetingNotification(invited, h.meetingPayload(meeting, "invited"))
	}

	c.JSON(http.StatusOK, gin.H{
		"participants": meetingParticipants(db, meetingID),
		"message":      "Participants added successfully",
	})
}
