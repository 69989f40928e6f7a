package handlers

import (
	"net/http"
	"testing"

	"projectflow-api/internal/middleware"
	"projectflow-api/internal/models"
	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func meetingRouter(h *MeetingHandler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.POST("/meetings", h.Create)
	api.GET("/meetings", h.List)
	api.GET("/meetings/:id", h.Get)
	api.PUT("/meetings/:id", h.Update)
	api.DELETE("/meetings/:id", h.Delete)
	api.POST("/meetings/:id/respond", h.Respond)
	api.POST("/meetings/:id/participants", h.AddParticipants)
	return r
}

func TestCreateMeeting_InvitesParticipants(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")
	seedUser(t, db, "u-3", "carol@example.com", "Carol", "White")

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodPost, "/api/meetings", "u-1", gin.H{
		"title":        "Sprint planning",
		"startTime":    "2026-09-01T10:00:00Z",
		"endTime":      "2026-09-01T11:00:00Z",
		"participants": []string{"u-2", "u-3", "u-1"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeBody(t, w)
	meeting := resp["meeting"].(map[string]any)
	require.Equal(t, "scheduled", meeting["status"])
	require.NotEmpty(t, meeting["meetingLink"])

	// Organizer accepted, invitees pending; the organizer in the invite list
	// is not duplicated.
	require.Len(t, resp["participants"].([]any), 3)
	var organizer models.MeetingParticipant
	require.NoError(t, db.Where("meeting_id = ? AND user_id = ?", meeting["id"], "u-1").First(&organizer).Error)
	require.Equal(t, models.ParticipantAccepted, organizer.Status)

	// Each invitee gets a stored notification and a push
	var invites int64
	db.Model(&models.Notification{}).Where("type = ?", models.NotifMeetingInvite).Count(&invites)
	require.EqualValues(t, 2, invites)
	require.Len(t, pub.byKind("notification"), 2)

	emits := pub.byKind("meeting_notification")
	require.Len(t, emits, 1)
	require.ElementsMatch(t, []string{"u-2", "u-3"}, emits[0].UserIDs)
	require.Equal(t, "invited", emits[0].Payload.(realtime.MeetingPayload).Action)
}

func TestRespondToMeeting_NotifiesOrganizer(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")

	meeting := models.Meeting{
		ID: "m-1", Title: "Standup", OrganizerID: "u-1",
		StartTime: "2026-09-01T09:00:00Z", EndTime: "2026-09-01T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	require.NoError(t, db.Create(&meeting).Error)
	require.NoError(t, db.Create(&models.MeetingParticipant{
		ID: "mp-1", MeetingID: "m-1", UserID: "u-2", Status: models.ParticipantPending,
	}).Error)

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodPost, "/api/meetings/m-1/respond", "u-2", gin.H{"status": "accepted"})
	require.Equal(t, http.StatusOK, w.Code)

	var mp models.MeetingParticipant
	require.NoError(t, db.Where("id = ?", "mp-1").First(&mp).Error)
	require.Equal(t, models.ParticipantAccepted, mp.Status)

	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", "u-1", models.NotifMeetingResponse).First(&n).Error)
	require.Contains(t, n.Message, "Bob Jones")
	require.Contains(t, n.Message, "accepted")
}

func TestRespondToMeeting_RejectsUnknownStatus(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodPost, "/api/meetings/m-1/respond", "u-2", gin.H{"status": "maybe"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateMeeting_OrganizerOnly(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")

	meeting := models.Meeting{
		ID: "m-1", Title: "Standup", OrganizerID: "u-1",
		StartTime: "2026-09-01T09:00:00Z", EndTime: "2026-09-01T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	require.NoError(t, db.Create(&meeting).Error)
	require.NoError(t, db.Create(&models.MeetingParticipant{
		ID: "mp-1", MeetingID: "m-1", UserID: "u-2", Status: models.ParticipantPending,
	}).Error)

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodPut, "/api/meetings/m-1", "u-2", gin.H{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/meetings/m-1", "u-1", gin.H{"title": "Daily standup"})
	require.Equal(t, http.StatusOK, w.Code)

	emits := pub.byKind("meeting_notification")
	require.Len(t, emits, 1)
	require.Equal(t, []string{"u-2"}, emits[0].UserIDs)
	require.Equal(t, "updated", emits[0].Payload.(realtime.MeetingPayload).Action)
}

func TestDeleteMeeting_NotifiesCancellation(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")

	meeting := models.Meeting{
		ID: "m-1", Title: "Standup", OrganizerID: "u-1",
		StartTime: "2026-09-01T09:00:00Z", EndTime: "2026-09-01T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	require.NoError(t, db.Create(&meeting).Error)
	require.NoError(t, db.Create(&models.MeetingParticipant{
		ID: "mp-1", MeetingID: "m-1", UserID: "u-2", Status: models.ParticipantAccepted,
	}).Error)

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodDelete, "/api/meetings/m-1", "u-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var n models.Notification
	require.NoError(t, db.Where("user_id = ? AND type = ?", "u-2", models.NotifMeetingCancelled).First(&n).Error)

	emits := pub.byKind("meeting_notification")
	require.Len(t, emits, 1)
	require.Equal(t, "cancelled", emits[0].Payload.(realtime.MeetingPayload).Action)
}

func TestAddParticipants_SkipsExisting(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")
	seedUser(t, db, "u-3", "carol@example.com", "Carol", "White")

	meeting := models.Meeting{
		ID: "m-1", Title: "Standup", OrganizerID: "u-1",
		StartTime: "2026-09-01T09:00:00Z", EndTime: "2026-09-01T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	require.NoError(t, db.Create(&meeting).Error)
	require.NoError(t, db.Create(&models.MeetingParticipant{
		ID: "mp-1", MeetingID: "m-1", UserID: "u-2", Status: models.ParticipantAccepted,
	}).Error)

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := doJSON(t, r, http.MethodPost, "/api/meetings/m-1/participants", "u-1", gin.H{
		"participants": []string{"u-2", "u-3"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	emits := pub.byKind("meeting_notification")
	require.Len(t, emits, 1)
	require.Equal(t, []string{"u-3"}, emits[0].UserIDs)

	var count int64
	db.Model(&models.MeetingParticipant{}).Where("meeting_id = ?", "m-1").Count(&count)
	require.EqualValues(t, 2, count)
}

func TestListMeetings_IncludesParticipations(t *testing.T) {
	db := setupTestDB(t)
	seedUser(t, db, "u-1", "alice@example.com", "Alice", "Smith")
	seedUser(t, db, "u-2", "bob@example.com", "Bob", "Jones")

	organized := models.Meeting{
		ID: "m-1", Title: "Mine", OrganizerID: "u-1",
		StartTime: "2026-09-01T09:00:00Z", EndTime: "2026-09-01T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	invitedTo := models.Meeting{
		ID: "m-2", Title: "Theirs", OrganizerID: "u-2",
		StartTime: "2026-09-02T09:00:00Z", EndTime: "2026-09-02T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	unrelated := models.Meeting{
		ID: "m-3", Title: "Other", OrganizerID: "u-2",
		StartTime: "2026-09-03T09:00:00Z", EndTime: "2026-09-03T09:15:00Z",
		Status: models.MeetingScheduled,
	}
	for _, m := range []models.Meeting{organized, invitedTo, unrelated} {
		require.NoError(t, db.Create(&m).Error)
	}
	require.NoError(t, db.Create(&models.MeetingParticipant{
		ID: "mp-1", MeetingID: "m-2", UserID: "u-1", Status: models.ParticipantPending,
	}).Error)

	pub := &recordingPublisher{}
	r := meetingRouter(NewMeetingHandler(pub))

	w := authedGet(t, r, "/api/meetings", "u-1")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	require.Len(t, resp["meetings"].([]any), 2)
}
