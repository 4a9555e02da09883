package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/checkin-api/internal/dto"
	apierrors "github.com/yukikurage/checkin-api/internal/errors"
	"github.com/yukikurage/checkin-api/internal/middleware"
	"github.com/yukikurage/checkin-api/internal/models"
	"github.com/yukikurage/checkin-api/internal/services"
)

// ProjectHandler coordinates project-related HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a new project owned by the current user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name           string                `json:"name" binding:"required"`
		Description    string                `json:"description"`
		Icon           string                `json:"icon"`
		IconType       models.IconType       `json:"icon_type"`
		VisibilityType models.VisibilityType `json:"visibility_type"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:           req.Name,
		Description:    req.Description,
		Icon:           req.Icon,
		IconType:       req.IconType,
		VisibilityType: req.VisibilityType,
		OwnerID:        userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, true))
}

// ListProjects returns all projects the user is a member of.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.projectService.ListProjectsForUser(userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
	})
}

// ListPublicProjects returns public projects for discovery.
func (h *ProjectHandler) ListPublicProjects(c *gin.Context) {
	projects, err := h.projectService.ListPublicProjects()
	if err != nil {
		respondProjectError(c, err)
		return
	}

	projectDTOs := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		projectDTOs[i] = dto.ToProjectDTO(p, false)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": projectDTOs,
	})
}

// GetProject returns the normalized project aggregate with derived stats.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	member, _ := middleware.GetProjectMember(c)

	detail, err := h.projectService.GetProjectDetail(c.Request.Context(), project.ID, member.Role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetProjectSnapshot serves the cached aggregate mirror, recomputing on a
// miss.
func (h *ProjectHandler) GetProjectSnapshot(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	member, _ := middleware.GetProjectMember(c)

	snapshot, err := h.projectService.GetProjectSnapshot(c.Request.Context(), project.ID, member.Role)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// UpdateProject updates a project's mutable fields.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	type UpdateProjectRequest struct {
		Name           *string                `json:"name"`
		Description    *string                `json:"description"`
		Icon           *string                `json:"icon"`
		IconType       *models.IconType       `json:"icon_type"`
		VisibilityType *models.VisibilityType `json:"visibility_type"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.projectService.UpdateProject(c.Request.Context(), project.ID, services.UpdateProjectInput{
		Name:           req.Name,
		Description:    req.Description,
		Icon:           req.Icon,
		IconType:       req.IconType,
		VisibilityType: req.VisibilityType,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, true))
}

// DeleteProject soft deletes a project.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ArchiveProject marks a project archived.
func (h *ProjectHandler) ArchiveProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	archived, err := h.projectService.ArchiveProject(c.Request.Context(), project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*archived, true))
}

// RestoreProject clears a project's archive mark.
func (h *ProjectHandler) RestoreProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	restored, err := h.projectService.RestoreProject(c.Request.Context(), project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*restored, true))
}

// RegenerateInviteCode generates a new invite code for the project.
func (h *ProjectHandler) RegenerateInviteCode(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	updated, err := h.projectService.RegenerateInviteCode(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*updated, true))
}

// JoinByInviteCode joins the project matching the submitted invite code.
func (h *ProjectHandler) JoinByInviteCode(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, joined, err := h.projectService.JoinByInviteCode(userID, req.InviteCode)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	message := "Successfully joined project"
	if !joined {
		message = "Already a member of this project"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"project": dto.ToProjectDTO(*project, false),
	})
}

// JoinPublicProject joins a public project directly. Idempotent: repeating
// the call reports success without a second membership row.
func (h *ProjectHandler) JoinPublicProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	joined, err := h.projectService.JoinPublicProject(projectID, userID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	message := "Successfully joined project"
	if !joined {
		message = "Already a member of this project"
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// LeaveProject removes the current user's membership.
func (h *ProjectHandler) LeaveProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.projectService.LeaveProject(project.ID, userID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Left project successfully",
	})
}

// RemoveMember removes a member from the project.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.projectService.RemoveMember(project.ID, actorID, targetID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidProjectName),
		errors.Is(err, services.ErrInvalidVisibility),
		errors.Is(err, services.ErrInvalidIconType):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrVisibilityImmutable),
		errors.Is(err, services.ErrProjectArchived),
		errors.Is(err, services.ErrProjectNotArchived),
		errors.Is(err, services.ErrProjectNotJoinable),
		errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrOwnerCannotLeave):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrProjectMemberNotFound),
		errors.Is(err, services.ErrInvalidInviteCode):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
