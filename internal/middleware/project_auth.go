package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/checkin-api/internal/database"
	"github.com/yukikurage/checkin-api/internal/models"
)

// Context keys set by RequireProjectAccess.
const (
	ContextKeyProject       = "project"
	ContextKeyProjectMember = "project_member"
)

// RequireProjectAccess checks if the user is a member of the project
func RequireProjectAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectIDStr := c.Param("id")
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid project ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var project models.Project
		if err := database.GetDB().First(&project, projectID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
		if err != nil {
			// Return 404 instead of 403 to avoid leaking project existence
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			c.Abort()
			return
		}

		c.Set(ContextKeyProject, project)
		c.Set(ContextKeyProjectMember, member)
		c.Next()
	}
}

// RequireProjectOwner checks if the user is an owner of the project
func RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(ContextKeyProjectMember)
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Project access required",
			})
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.ProjectMember)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Invalid project member data",
			})
			c.Abort()
			return
		}

		if member.Role != models.RoleOwner {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Only project owners can perform this action",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetProjectMember retrieves the membership stored by RequireProjectAccess
func GetProjectMember(c *gin.Context) (models.ProjectMember, bool) {
	memberInterface, exists := c.Get(ContextKeyProjectMember)
	if !exists {
		return models.ProjectMember{}, false
	}
	member, ok := memberInterface.(models.ProjectMember)
	return member, ok
}

// GetProject retrieves the project stored by RequireProjectAccess
func GetProject(c *gin.Context) (models.Project, bool) {
	projectInterface, exists := c.Get(ContextKeyProject)
	if !exists {
		return models.Project{}, false
	}
	project, ok := projectInterface.(models.Project)
	return project, ok
}
