package handlers

import (
	"errors"
	"net/http"
	"strings"

	"projectflow-api/internal/database"
	"projectflow-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProjectRequest represents the request payload for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Key         string `json:"key" binding:"required,min=2,max=10"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// UpdateProjectRequest represents the request payload for updating a project
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
}

// ProjectMemberView is the member payload returned inside project details
type ProjectMemberView struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	FirstName string            `json:"firstName"`
	LastName  string            `json:"lastName"`
	Avatar    string            `json:"avatar"`
	Role      models.MemberRole `json:"role"`
}

// CreateProject handles POST /api/projects
func CreateProject(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()
	key := strings.ToUpper(strings.TrimSpace(req.Key))

	var count int64
	if err := db.Model(&models.Project{}).Where("key = ?", key).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check project key"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Project key already exists"})
		return
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Key:         key,
		Description: req.Description,
		OwnerID:     userID,
		Color:       req.Color,
		Icon:        req.Icon,
	}
	if project.Color == "" {
		project.Color = "#6366f1"
	}
	if project.Icon == "" {
		project.Icon = "folder"
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		owner := models.ProjectMember{
			ID:        uuid.NewString(),
			ProjectID: project.ID,
			UserID:    userID,
			Role:      models.MemberRoleOwner,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		// Initialize the per-project ticket numbering sequence
		seq := models.TicketSequence{ProjectID: project.ID, LastNumber: 0}
		return tx.Create(&seq).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"project": project,
		"message": "Project created successfully",
	})
}

// GetProjects handles GET /api/projects
// Returns projects the authenticated user is a member of.
func GetProjects(c *gin.Context) {
	userID := c.GetString("user_id")

	var projects []models.Project
	err := database.GetDB().
		Joins("JOIN project_members pm ON pm.project_id = projects.id").
		Where("pm.user_id = ? AND pm.deleted_at IS NULL", userID).
		Order("projects.updated_at desc").
		Find(&projects).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

// GetProject handles GET /api/projects/:id
// Returns the project with members and ticket stats.
func GetProject(c *gin.Context) {
	projectID := c.Param("id")

	db := database.GetDB()

	var project models.Project
	if err := db.Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	var members []ProjectMemberView
	db.Model(&models.ProjectMember{}).
		Select("users.id, users.email, users.first_name, users.last_name, users.avatar, project_members.role").
		Joins("JOIN users ON users.id = project_members.user_id").
		Where("project_members.project_id = ?", projectID).
		Scan(&members)

	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	db.Model(&models.Ticket{}).
		Select("status, COUNT(*) as count").
		Where("project_id = ?", projectID).
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

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"members": members,
		"stats":   stats,
	})
}

// UpdateProject handles PUT /api/projects/:id
func UpdateProject(c *gin.Context) {
	projectID := c.Param("id")

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project models.Project
	if err := database.GetDB().Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Icon != nil {
		project.Icon = *req.Icon
	}

	if err := database.GetDB().Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project": project,
		"message": "Project updated successfully",
	})
}

// DeleteProject handles DELETE /api/projects/:id
// Only the project owner can delete a project.
func DeleteProject(c *gin.Context) {
	userID := c.GetString("user_id")
	projectID := c.Param("id")

	var project models.Project
	if err := database.GetDB().Where("id = ?", projectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch project"})
		}
		return
	}

	if project.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only project owner can delete the project"})
		return
	}

	if err := database.GetDB().Delete(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	invalidateMemberCache(projectID)

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
		"id":      projectID,
	})
}

// AddMemberRequest represents the payload for adding a project member
type AddMemberRequest struct {
	UserID string            `json:"userId" binding:"required"`
	Role   models.MemberRole `json:"role"`
}

// AddMember handles POST /api/projects/:id/members
func AddMember(c *gin.Context) {
	projectID := c.Param("id")

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := database.GetDB()

	var count int64
	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, req.UserID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check membership"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is already a member of this project"})
		return
	}

	role := req.Role
	if role == "" {
		role = models.MemberRoleMember
	}

	member := models.ProjectMember{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
	}
	if err := db.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add member"})
		return
	}

	invalidateMemberCache(projectID)

	c.JSON(http.StatusCreated, gin.H{
		"member":  member,
		"message": "Member added successfully",
	})
}

// RemoveMember handles DELETE /api/projects/:id/members/:userId
func RemoveMember(c *gin.Context) {
	projectID := c.Param("id")
	memberUserID := c.Param("userId")

	if err := database.GetDB().
		Where("project_id = ? AND user_id = ?", projectID, memberUserID).
		Delete(&models.ProjectMember{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove member"})
		return
	}

	invalidateMemberCache(projectID)

	c.JSON(http.StatusOK, gin.H{"message": "Member removed successfully"})
}
