package realtime

// EventType discriminates pushed payloads on the wire.
type EventType string

const (
	EventTicketUpdate        EventType = "ticket_update"
	EventTicketCreated       EventType = "ticket_created"
	EventMeetingNotification EventType = "meeting_notification"
	EventNotification        EventType = "notification"
)

// Envelope is the wire form of every pushed event:
// {"type":"<event-type>","data":{...}}
type Envelope struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// TicketPayload is pushed to project members when a ticket is created or
// changed.
type TicketPayload struct {
	TicketID  string `json:"ticketId"`
	ProjectID string `json:"projectId"`
	Key       string `json:"key"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	ActorID   string `json:"actorId"`
}

// MeetingPayload is pushed to meeting participants on invitations and
// schedule changes.
type MeetingPayload struct {
	MeetingID   string `json:"meetingId"`
	Title       string `json:"title"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	OrganizerID string `json:"organizerId"`
	Action      string `json:"action"`
}

// NotificationPayload mirrors a persisted notification row so the client can
// render it without refetching.
type NotificationPayload struct {
	NotificationID string `json:"notificationId"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	ReferenceID    string `json:"referenceId,omitempty"`
	ReferenceType  string `json:"referenceType,omitempty"`
}

// Publisher is the interface the ticket/meeting/notification handlers use to
// push events. Delivery is best-effort; none of these methods returns an
// error and a user with zero live connections simply receives nothing.
type Publisher interface {
	EmitTicketCreated(userIDs []string, data TicketPayload)
	EmitTicketUpdate(userIDs []string, data TicketPayload)
	EmitMeetingNotification(userIDs []string, data MeetingPayload)
	EmitNotification(userID string, data NotificationPayload)
}
