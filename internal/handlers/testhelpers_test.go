package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"projectflow-api/internal/auth"
	"projectflow-api/internal/database"
	"projectflow-api/internal/models"
	"projectflow-api/internal/realtime"
	"projectflow-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB swaps the package database for an in-memory one.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	return db
}

// seedUser inserts a user with a fixed password hash placeholder.
func seedUser(t *testing.T, db *gorm.DB, id, email, first, last string) models.User {
	t.Helper()
	u := models.User{ID: id, Email: email, Password: "x", FirstName: first, LastName: last}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// seedProject inserts a project with its owner membership and ticket sequence.
func seedProject(t *testing.T, db *gorm.DB, id, key, ownerID string) models.Project {
	t.Helper()
	p := models.Project{ID: id, Name: "Project " + key, Key: key, OwnerID: ownerID}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.ProjectMember{ID: id + "-owner", ProjectID: id, UserID: ownerID, Role: models.MemberRoleOwner}).Error)
	require.NoError(t, db.Create(&models.TicketSequence{ProjectID: id}).Error)
	invalidateMemberCache(id)
	return p
}

func addProjectMember(t *testing.T, db *gorm.DB, projectID, userID string) {
	t.Helper()
	require.NoError(t, db.Create(&models.ProjectMember{ID: projectID + "-" + userID, ProjectID: projectID, UserID: userID, Role: models.MemberRoleMember}).Error)
	invalidateMemberCache(projectID)
}

// doJSON performs an authenticated JSON request against the router.
func doJSON(t *testing.T, r *gin.Engine, method, path, userID string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := auth.GenerateToken(userID, userID+"@example.com")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// recordedEvent captures one publisher call.
type recordedEvent struct {
	Kind    string
	UserIDs []string
	Payload any
}

// recordingPublisher is a realtime.Publisher that records emitted events
// instead of pushing them to sockets.
type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingPublisher) record(kind string, userIDs []string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Kind: kind, UserIDs: userIDs, Payload: payload})
}

func (r *recordingPublisher) EmitTicketCreated(userIDs []string, data realtime.TicketPayload) {
	r.record("ticket_created", userIDs, data)
}

func (r *recordingPublisher) EmitTicketUpdate(userIDs []string, data realtime.TicketPayload) {
	r.record("ticket_update", userIDs, data)
}

func (r *recordingPublisher) EmitMeetingNotification(userIDs []string, data realtime.MeetingPayload) {
	r.record("meeting_notification", userIDs, data)
}

func (r *recordingPublisher) EmitNotification(userID string, data realtime.NotificationPayload) {
	r.record("notification", []string{userID}, data)
}

func (r *recordingPublisher) byKind(kind string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

var _ realtime.Publisher = (*recordingPublisher)(nil)

func authedGet(t *testing.T, r *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	token, err := auth.GenerateToken(userID, userID+"@example.com")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
