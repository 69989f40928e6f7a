package handlers

import (
	"net/http"
	"strconv"
	"time"

	"projectflow-api/internal/database"
	"projectflow-api/internal/models"

	"github.com/gin-gonic/gin"
)

// GetDashboard handles GET /api/dashboard
// Returns a summary of the user's projects, assigned tickets, upcoming
// meetings, recent activity and stats.
func GetDashboard(c *gin.Context) {
	userID := c.GetString("user_id")
	now := time.Now().UTC().Format(time.RFC3339)
	weekAgo := time.Now().UTC().Add(-7 * 24 * time.Hour)

	db := database.GetDB()

	var projects []models.Project
	db.Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ?", userID).
		Order("projects.updated_at desc").
		Limit(5).
		Find(&projects)

	var assignedTickets []models.Ticket
	db.Where("assignee_id = ? AND status != ?", userID, models.StatusDone).
		Order(`CASE priority
			WHEN 'critical' THEN 1
			WHEN 'high' THEN 2
			WHEN 'medium' THEN 3
			ELSE 4 END, created_at desc`).
		Limit(10).
		Find(&assignedTickets)
	attachRefs(db, assignedTickets)

	var upcomingMeetings []models.Meeting
	db.Model(&models.Meeting{}).
		Distinct("meetings.*").
		Joins("LEFT JOIN meeting_participants mp ON mp.meeting_id = meetings.id").
		Where("(meetings.organizer_id = ? OR mp.user_id = ?) AND meetings.start_time >= ? AND meetings.status = ?",
			userID, userID, now, models.MeetingScheduled).
		Order("meetings.start_time asc").
		Limit(5).
		Find(&upcomingMeetings)

	var recentActivity []models.Activity
	db.Where("project_id IN (?)",
		db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)).
		Order("created_at desc").
		Limit(15).
		Find(&recentActivity)

	var unread int64
	db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&unread)

	memberProjects := db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)

	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	db.Model(&models.Ticket{}).
		Select("status, COUNT(*) as count").
		Where("project_id IN (?)", memberProjects).
		Group("status").
		Scan(&rows)

	stats := gin.H{
		string(models.StatusTodo):       int64(0),
		string(models.StatusInProgress): int64(0),
		string(models.StatusInReview):   int64(0),
		string(models.StatusDone):       int64(0),
	}
	var total int64
	for _, r := range rows {
		stats[r.Status] = r.Count
		total += r.Count
	}
	stats["total"] = total

	var myOpen, createdThisWeek int64
	db.Model(&models.Ticket{}).
		Where("assignee_id = ? AND status != ?", userID, models.StatusDone).
		Count(&myOpen)
	db.Model(&models.Ticket{}).
		Where("project_id IN (?) AND created_at >= ?", memberProjects, weekAgo).
		Count(&createdThisWeek)
	stats["myOpenTickets"] = myOpen
	stats["createdThisWeek"] = createdThisWeek

	var overdueTickets []models.Ticket
	db.Where("assignee_id = ? AND due_date != '' AND due_date < ? AND status != ?",
		userID, now, models.StatusDone).
		Order("due_date asc").
		Limit(5).
		Find(&overdueTickets)
	attachRefs(db, overdueTickets)

	c.JSON(http.StatusOK, gin.H{
		"projects":            projects,
		"assignedTickets":     assignedTickets,
		"upcomingMeetings":    upcomingMeetings,
		"recentActivity":      recentActivity,
		"unreadNotifications": unread,
		"ticketStats":         stats,
		"overdueTickets":      overdueTickets,
	})
}

// GetActivityFeed handles GET /api/dashboard/activity
func GetActivityFeed(c *gin.Context) {
	userID := c.GetString("user_id")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	db := database.GetDB()
	query := db.Where("project_id IN (?)",
		db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID))

	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	var activities []models.Activity
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&activities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity feed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"page":       page,
		"limit":      limit,
	})
}
