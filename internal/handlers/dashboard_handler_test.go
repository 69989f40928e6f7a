package handlers

import (
	"net/http"
	"testing"

	"projectflow-api/internal/middleware"
	"projectflow-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func dashboardRouter() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.GET("/dashboard", GetDashboard)
	api.GET("/dashboard/activity", GetActivityFeed)
	return r
}

func TestGetDashboard(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")
	seedProject(t, db, "p-1", "PF", "u-1")

	tickets := []models.Ticket{
		{ID: "t-1", TicketNumber: 1, ProjectID: "p-1", Title: "Mine", Status: models.StatusTodo,
			Priority: models.PriorityHigh, AssigneeID: "u-1", ReporterID: "u-1"},
		{ID: "t-2", TicketNumber: 2, ProjectID: "p-1", Title: "Urgent", Status: models.StatusInProgress,
			Priority: models.PriorityCritical, AssigneeID: "u-1", ReporterID: "u-1"},
		{ID: "t-3", TicketNumber: 3, ProjectID: "p-1", Title: "Done", Status: models.StatusDone,
			AssigneeID: "u-1", ReporterID: "u-1"},
	}
	for i := range tickets {
		require.NoError(t, db.Create(&tickets[i]).Error)
	}
	require.NoError(t, db.Create(&models.Notification{
		ID: "n-1", UserID: "u-1", Type: models.NotifTicketAssigned, Title: "Assigned",
	}).Error)

	r := dashboardRouter()

	w := authedGet(t, r, "/api/dashboard", "u-1")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)

	require.Len(t, resp["projects"].([]any), 1)

	// Done tickets are excluded and critical sorts first
	assigned := resp["assignedTickets"].([]any)
	require.Len(t, assigned, 2)
	require.Equal(t, "Urgent", assigned[0].(map[string]any)["title"])

	require.Equal(t, float64(1), resp["unreadNotifications"])

	stats := resp["ticketStats"].(map[string]any)
	require.Equal(t, float64(3), stats["total"])
	require.Equal(t, float64(2), stats["myOpenTickets"])
}

func TestGetActivityFeed_ScopedToMemberProjects(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")
	seedProject(t, db, "p-1", "PF", "u-1")
	seedProject(t, db, "p-2", "QA", "u-2")

	require.NoError(t, db.Create(&models.Activity{
		ID: "a-1", TicketID: "t-1", ProjectID: "p-1", UserID: "u-1", Action: "created",
	}).Error)
	require.NoError(t, db.Create(&models.Activity{
		ID: "a-2", TicketID: "t-2", ProjectID: "p-2", UserID: "u-2", Action: "created",
	}).Error)

	r := dashboardRouter()

	w := authedGet(t, r, "/api/dashboard/activity", "u-1")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	activities := resp["activities"].([]any)
	require.Len(t, activities, 1)
	require.Equal(t, "p-1", activities[0].(map[string]any)["projectId"])
}
