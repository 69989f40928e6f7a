package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"projectflow-api/internal/database"
	"projectflow-api/internal/models"
	"projectflow-api/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TicketHandler serves the ticket endpoints and produces realtime events for
// project members.
type TicketHandler struct {
	Events realtime.Publisher
}

// NewTicketHandler wires the ticket endpoints to an event publisher.
func NewTicketHandler(events realtime.Publisher) *TicketHandler {
	return &TicketHandler{Events: events}
}

// CreateTicketRequest represents the request payload for creating a ticket
type CreateTicketRequest struct {
	ProjectID   string                `json:"projectId" binding:"required"`
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Type        models.TicketType     `json:"type"`
	Priority    models.TicketPriority `json:"priority"`
	AssigneeID  string                `json:"assigneeId"`
	ParentID    string                `json:"parentId"`
	StoryPoints int                   `json:"storyPoints"`
	DueDate     string                `json:"dueDate"`
	Labels      []string              `json:"labels"`
}

// UpdateTicketRequest represents the request payload for updating a ticket
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Type        *models.TicketType     `json:"type"`
	Status      *models.TicketStatus   `json:"status"`
	Priority    *models.TicketPriority `json:"priority"`
	AssigneeID  *string                `json:"assigneeId"`
	StoryPoints *int                   `json:"storyPoints"`
	DueDate     *string                `json:"dueDate"`
	Labels      *[]string              `json:"labels"`
}

// MoveTicketRequest represents a minimal request to change status
type MoveTicketRequest struct {
	Status models.TicketStatus `json:"status" binding:"required"`
}

// attachRefs fills the denormalized Key/Assignee/Reporter fields on tickets
// for API responses.
func attachRefs(db *gorm.DB, tickets []models.Ticket) {
	if len(tickets) == 0 {
		return
	}

	projectKeys := make(map[string]string)
	var projects []models.Project
	if err := db.Find(&projects).Error; err == nil {
		for _, p := range projects {
			projectKeys[p.ID] = p.Key
		}
	}

	userByID := make(map[string]models.User)
	var users []models.User
	if err := db.Find(&users).Error; err == nil {
		for _, u := range users {
			userByID[u.ID] = u
		}
	}

	for i := range tickets {
		t := &tickets[i]
		if key, ok := projectKeys[t.ProjectID]; ok {
			t.Key = fmt.Sprintf("%s-%d", key, t.TicketNumber)
		}
		if u, ok := userByID[t.AssigneeID]; ok {
			t.Assignee = &models.UserRef{ID: u.ID, Name: u.FullName(), Avatar: u.Avatar}
		}
		if u, ok := userByID[t.ReporterID]; ok {
			t.Reporter = &models.UserRef{ID: u.ID, Name: u.FullName(), Avatar: u.Avatar}
		}
	}
}

func (h *TicketHandler) ticketPayload(t models.Ticket, actorID string) realtime.TicketPayload {
	return realtime.TicketPayload{
		TicketID:  t.ID,
		ProjectID: t.ProjectID,
		Key:       t.Key,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		ActorID:   actorID,
	}
}

func logActivity(db *gorm.DB, ticketID, projectID, userID, action string, details any) {
	var detailsJSON string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		}
	}
	db.Create(&models.Activity{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		ProjectID: projectID,
		UserID:    userID,
		Action:    action,
		Details:   detailsJSON,
	})
}

// Create handles POST /api/tickets
func (h *TicketHandler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var project models.Project
	if err := db.Where("id = ?", req.ProjectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid projectId: project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate projectId"})
		}
		return
	}

	ticketType := req.Type
	if ticketType == "" {
		ticketType = models.TypeTask
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	var labels string
	if len(req.Labels) > 0 {
		if b, err := json.Marshal(req.Labels); err == nil {
			labels = string(b)
		}
	}

	ticket := models.Ticket{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        ticketType,
		Status:      models.StatusTodo,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		ReporterID:  userID,
		ParentID:    req.ParentID,
		StoryPoints: req.StoryPoints,
		DueDate:     req.DueDate,
		Labels:      labels,
	}

	// Claim the next ticket number and insert atomically
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.TicketSequence{}).
			Where("project_id = ?", req.ProjectID).
			Update("last_number", gorm.Expr("last_number + 1")).Error; err != nil {
			return err
		}
		var seq models.TicketSequence
		if err := tx.Where("project_id = ?", req.ProjectID).First(&seq).Error; err != nil {
			return err
		}
		ticket.TicketNumber = seq.LastNumber
		return tx.Create(&ticket).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create ticket"})
		return
	}

	ticket.Key = fmt.Sprintf("%s-%d", project.Key, ticket.TicketNumber)
	logActivity(db, ticket.ID, ticket.ProjectID, userID, "created", gin.H{
		"ticketKey": ticket.Key,
		"title":     ticket.Title,
	})

	tickets := []models.Ticket{ticket}
	attachRefs(db, tickets)
	ticket = tickets[0]

	h.Events.EmitTicketCreated(projectMemberIDs(ticket.ProjectID), h.ticketPayload(ticket, userID))

	c.JSON(http.StatusCreated, gin.H{
		"ticket":  ticket,
		"message": "Ticket created successfully",
	})
}

// List handles GET /api/tickets
// Optional filters: projectId, status, type, priority, assigneeId, search.
func (h *TicketHandler) List(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "50")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	db := database.GetDB()
	query := db.Model(&models.Ticket{})

	if projectID := c.Query("projectId"); projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if ticketType := c.Query("type"); ticketType != "" {
		query = query.Where("type = ?", ticketType)
	}
	if priority := c.Query("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if assigneeID := c.Query("assigneeId"); assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tickets"})
		return
	}

	var tickets []models.Ticket
	result := query.Session(&gorm.Session{}).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&tickets)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tickets"})
		return
	}

	attachRefs(db, tickets)

	c.JSON(http.StatusOK, gin.H{
		"tickets": tickets,
		"count":   len(tickets),
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// Get handles GET /api/tickets/:id
// Returns the ticket with its comments, activities and subtasks.
func (h *TicketHandler) Get(c *gin.Context) {
	ticketID := c.Param("id")

	db := database.GetDB()

	var ticket models.Ticket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ticket"})
		}
		return
	}

	var comments []models.Comment
	db.Where("ticket_id = ?", ticketID).Order("created_at desc").Find(&comments)
	attachCommentAuthors(db, comments)

	var activities []models.Activity
	db.Where("ticket_id = ?", ticketID).Order("created_at desc").Limit(20).Find(&activities)

	var subtasks []models.Ticket
	db.Where("parent_id = ?", ticketID).Find(&subtasks)

	tickets := []models.Ticket{ticket}
	attachRefs(db, tickets)
	attachRefs(db, subtasks)

	c.JSON(http.StatusOK, gin.H{
		"ticket":     tickets[0],
		"comments":   comments,
		"activities": activities,
		"subtasks":   subtasks,
	})
}

// Update handles PUT /api/tickets/:id
func (h *TicketHandler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	ticketID := c.Param("id")

	db := database.GetDB()

	var ticket models.Ticket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ticket"})
		}
		return
	}

	var req UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	type change struct {
		Field string `json:"field"`
		From  string `json:"from"`
		To    string `json:"to"`
	}
	var changes []change

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Type != nil {
		ticket.Type = *req.Type
	}
	if req.Status != nil && *req.Status != ticket.Status {
		changes = append(changes, change{Field: "status", From: string(ticket.Status), To: string(*req.Status)})
		ticket.Status = *req.Status
	}
	if req.Priority != nil && *req.Priority != ticket.Priority {
		changes = append(changes, change{Field: "priority", From: string(ticket.Priority), To: string(*req.Priority)})
		ticket.Priority = *req.Priority
	}
	assigneeChanged := false
	if req.AssigneeID != nil && *req.AssigneeID != ticket.AssigneeID {
		changes = append(changes, change{Field: "assignee", From: ticket.AssigneeID, To: *req.AssigneeID})
		ticket.AssigneeID = *req.AssigneeID
		assigneeChanged = true
	}
	if req.StoryPoints != nil {
		ticket.StoryPoints = *req.StoryPoints
	}
	if req.DueDate != nil {
		ticket.DueDate = *req.DueDate
	}
	if req.Labels != nil {
		if b, err := json.Marshal(*req.Labels); err == nil {
			ticket.Labels = string(b)
		}
	}

	if err := db.Save(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update ticket"})
		return
	}

	if len(changes) > 0 {
		logActivity(db, ticket.ID, ticket.ProjectID, userID, "updated", gin.H{"changes": changes})
	}

	tickets := []models.Ticket{ticket}
	attachRefs(db, tickets)
	ticket = tickets[0]

	h.Events.EmitTicketUpdate(projectMemberIDs(ticket.ProjectID), h.ticketPayload(ticket, userID))

	// Let the new assignee know directly, on top of the project-wide event
	if assigneeChanged && ticket.AssigneeID != "" && ticket.AssigneeID != userID {
		createNotification(h.Events, models.Notification{
			UserID:        ticket.AssigneeID,
			Type:          models.NotifTicketAssigned,
			Title:         "Ticket Assigned",
			Message:       fmt.Sprintf("You've been assigned %q", ticket.Title),
			ReferenceID:   ticket.ID,
			ReferenceType: "ticket",
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"ticket":  ticket,
		"message": "Ticket updated successfully",
	})
}

// Move handles PUT /api/tickets/:id/move
// Updates only the workflow status (kanban drag-and-drop).
func (h *TicketHandler) Move(c *gin.Context) {
	userID := c.GetString("user_id")
	ticketID := c.Param("id")

	var req MoveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var ticket models.Ticket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ticket"})
		}
		return
	}

	from := ticket.Status
	ticket.Status = req.Status
	if err := db.Model(&ticket).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to move ticket"})
		return
	}

	if from != req.Status {
		logActivity(db, ticket.ID, ticket.ProjectID, userID, "moved", gin.H{
			"from": from,
			"to":   req.Status,
		})
	}

	h.Events.EmitTicketUpdate(projectMemberIDs(ticket.ProjectID), h.ticketPayload(ticket, userID))

	c.JSON(http.StatusOK, gin.H{"message": "Ticket moved successfully"})
}

// Delete handles DELETE /api/tickets/:id
func (h *TicketHandler) Delete(c *gin.Context) {
	ticketID := c.Param("id")

	db := database.GetDB()

	var ticket models.Ticket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ticket"})
		}
		return
	}

	if err := db.Delete(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete ticket"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ticket deleted successfully",
		"id":      ticketID,
	})
}

// Kanban handles GET /api/tickets/kanban/:projectId
// Returns the project's tickets grouped by workflow status.
func (h *TicketHandler) Kanban(c *gin.Context) {
	projectID := c.Param("projectId")

	db := database.GetDB()

	var tickets []models.Ticket
	if err := db.Where("project_id = ?", projectID).
		Order("created_at desc").
		Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch kanban board"})
		return
	}

	attachRefs(db, tickets)

	columns := []models.TicketStatus{
		models.StatusTodo,
		models.StatusInProgress,
		models.StatusInReview,
		models.StatusDone,
	}
	board := make([]gin.H, 0, len(columns))
	for _, status := range columns {
		col := make([]models.Ticket, 0)
		for _, t := range tickets {
			if t.Status == status {
				col = append(col, t)
			}
		}
		board = append(board, gin.H{
			"status":  status,
			"tickets": col,
		})
	}

	c.JSON(http.StatusOK, gin.H{"board": board})
}

func attachCommentAuthors(db *gorm.DB, comments []models.Comment) {
	if len(comments) == 0 {
		return
	}
	userByID := make(map[string]models.User)
	var users []models.User
	if err := db.Find(&users).Error; err == nil {
		for _, u := range users {
			userByID[u.ID] = u
		}
	}
	for i := range comments {
		if u, ok := userByID[comments[i].UserID]; ok {
			comments[i].Author = &models.UserRef{ID: u.ID, Name: u.FullName(), Avatar: u.Avatar}
		}
	}
}

// CommentRequest represents the payload for creating/updating a comment
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment handles POST /api/tickets/:id/comments
func (h *TicketHandler) AddComment(c *gin.Context) {
	userID := c.GetString("user_id")
	ticketID := c.Param("id")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var ticket models.Ticket
	if err := db.Where("id = ?", ticketID).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch ticket"})
		}
		return
	}

	comment := models.Comment{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		UserID:   userID,
		Content:  req.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}

	logActivity(db, ticketID, ticket.ProjectID, userID, "commented", gin.H{"commentId": comment.ID})

	comments := []models.Comment{comment}
	attachCommentAuthors(db, comments)

	c.JSON(http.StatusCreated, gin.H{
		"comment": comments[0],
		"message": "Comment added successfully",
	})
}

// UpdateComment handles PUT /api/tickets/:id/comments/:commentId
func (h *TicketHandler) UpdateComment(c *gin.Context) {
	userID := c.GetString("user_id")
	commentID := c.Param("commentId")

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var comment models.Comment
	if err := db.Where("id = ? AND user_id = ?", commentID, userID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comment"})
		}
		return
	}

	comment.Content = req.Content
	if err := db.Save(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comment": comment,
		"message": "Comment updated successfully",
	})
}

// DeleteComment handles DELETE /api/tickets/:id/comments/:commentId
func (h *TicketHandler) DeleteComment(c *gin.Context) {
	userID := c.GetString("user_id")
	commentID := c.Param("commentId")

	if err := database.GetDB().
		Where("id = ? AND user_id = ?", commentID, userID).
		Delete(&models.Comment{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
