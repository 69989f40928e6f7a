package handlers

import (
	"net/http"
	"testing"

	"projectflow-api/internal/middleware"
	"projectflow-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func notificationRouter(h *NotificationHandler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.GET("/notifications", h.List)
	api.PUT("/notifications/read-all", h.MarkAllRead)
	api.PUT("/notifications/:id/read", h.MarkRead)
	api.DELETE("/notifications/:id", h.Delete)
	api.DELETE("/notifications", h.ClearAll)
	return r
}

func TestListNotifications_UnreadCount(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")

	rows := []models.Notification{
		{ID: "n-1", UserID: "u-1", Type: models.NotifTicketAssigned, Title: "Assigned"},
		{ID: "n-2", UserID: "u-1", Type: models.NotifMeetingInvite, Title: "Invite", IsRead: true},
		{ID: "n-3", UserID: "u-2", Type: models.NotifMeetingInvite, Title: "Someone else's"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	pub := &recordingPublisher{}
	r := notificationRouter(NewNotificationHandler(pub))

	w := authedGet(t, r, "/api/notifications", "u-1")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	require.Len(t, resp["notifications"].([]any), 2)
	require.Equal(t, float64(1), resp["unreadCount"])
	require.Equal(t, float64(2), resp["total"])

	w = authedGet(t, r, "/api/notifications?unreadOnly=true", "u-1")
	resp = decodeBody(t, w)
	require.Len(t, resp["notifications"].([]any), 1)
}

func TestMarkNotificationRead(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	require.NoError(t, db.Create(&models.Notification{
		ID: "n-1", UserID: "u-1", Type: models.NotifTicketAssigned, Title: "Assigned",
	}).Error)

	pub := &recordingPublisher{}
	r := notificationRouter(NewNotificationHandler(pub))

	w := doJSON(t, r, http.MethodPut, "/api/notifications/n-1/read", "u-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var n models.Notification
	require.NoError(t, db.Where("id = ?", "n-1").First(&n).Error)
	require.True(t, n.IsRead)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	for _, id := range []string{"n-1", "n-2"} {
		require.NoError(t, db.Create(&models.Notification{
			ID: id, UserID: "u-1", Type: models.NotifTicketAssigned, Title: "Assigned",
		}).Error)
	}

	pub := &recordingPublisher{}
	r := notificationRouter(NewNotificationHandler(pub))

	w := doJSON(t, r, http.MethodPut, "/api/notifications/read-all", "u-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var unread int64
	db.Model(&models.Notification{}).Where("user_id = ? AND is_read = ?", "u-1", false).Count(&unread)
	require.EqualValues(t, 0, unread)
}

func TestClearNotifications_OnlyOwn(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	require.NoError(t, db.Create(&models.Notification{
		ID: "n-1", UserID: "u-1", Type: models.NotifTicketAssigned, Title: "Mine",
	}).Error)
	require.NoError(t, db.Create(&models.Notification{
		ID: "n-2", UserID: "u-2", Type: models.NotifTicketAssigned, Title: "Theirs",
	}).Error)

	pub := &recordingPublisher{}
	r := notificationRouter(NewNotificationHandler(pub))

	w := doJSON(t, r, http.MethodDelete, "/api/notifications", "u-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, "u-2", remaining[0].UserID)
}
