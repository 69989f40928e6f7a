package handlers

import (
	"net/http"
	"strconv"

	"projectflow-api/internal/database"
	"projectflow-api/internal/models"
	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// createNotification persists a notification row and pushes it to the user's
// live connections. The push is best-effort; the row is the source of truth.
func createNotification(events realtime.Publisher, n models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := database.GetDB().Create(&n).Error; err != nil {
		return
	}
	events.EmitNotification(n.UserID, realtime.NotificationPayload{
		NotificationID: n.ID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		ReferenceID:    n.ReferenceID,
		ReferenceType:  n.ReferenceType,
	})
}

// NotificationHandler serves the notification endpoints.
type NotificationHandler struct {
	Events realtime.Publisher
}

// NewNotificationHandler wires the notification endpoints.
func NewNotificationHandler(events realtime.Publisher) *NotificationHandler {
	return &NotificationHandler{Events: events}
}

// List handles GET /api/notifications
// Query params: page, limit, unreadOnly.
func (h *NotificationHandler) List(c *gin.Context) {
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
	query := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if c.Query("unreadOnly") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	var total, unread int64
	db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)
	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", userID, false).Count(&unread)

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unreadCount":   unread,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

// MarkRead handles PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	if err := database.GetDB().Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := database.GetDB().Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Update("is_read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// Delete handles DELETE /api/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	if err := database.GetDB().
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}

// ClearAll handles DELETE /api/notifications
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := database.GetDB().
		Where("user_id = ?", userID).
		Delete(&models.Notification{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications cleared"})
}
