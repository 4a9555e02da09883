package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/checkin-api/internal/dto"
	apierrors "github.com/yukikurage/checkin-api/internal/errors"
	"github.com/yukikurage/checkin-api/internal/middleware"
	"github.com/yukikurage/checkin-api/internal/services"
	"github.com/yukikurage/checkin-api/internal/utils"
)

// CheckInHandler coordinates check-in HTTP handlers.
type CheckInHandler struct {
	checkInService *services.CheckInService
	projectService *services.ProjectService
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(checkInService *services.CheckInService, projectService *services.ProjectService) *CheckInHandler {
	return &CheckInHandler{
		checkInService: checkInService,
		projectService: projectService,
	}
}

// CreateCheckIn records today's check-in for the current user.
func (h *CheckInHandler) CreateCheckIn(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if project.IsArchived() {
		apierrors.Conflict(c, services.ErrProjectArchived.Error())
		return
	}

	type CheckInRequest struct {
		Condition *int   `json:"condition" binding:"required"`
		Note      string `json:"note"`
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	checkIn, err := h.checkInService.CheckIn(services.CheckInInput{
		ProjectID: project.ID,
		UserID:    userID,
		Condition: *req.Condition,
		Note:      req.Note,
	})
	if err != nil {
		respondCheckInError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCheckInDTO(*checkIn))
}

// CancelTodayCheckIn cancels the current user's check-in for today.
func (h *CheckInHandler) CancelTodayCheckIn(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	userID, _ := middleware.GetUserID(c)

	if err := h.checkInService.CancelToday(project.ID, userID); err != nil {
		respondCheckInError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Check-in cancelled",
	})
}

// ListCheckIns returns a project's check-ins, newest first.
func (h *CheckInHandler) ListCheckIns(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	params := utils.GetPaginationParams(c)

	checkIns, total, err := h.checkInService.ListCheckIns(project.ID, params.Page, params.Limit)
	if err != nil {
		respondCheckInError(c, err)
		return
	}

	checkInDTOs := make([]dto.CheckInDTO, len(checkIns))
	for i, ci := range checkIns {
		checkInDTOs[i] = dto.ToCheckInDTO(ci)
	}

	c.JSON(http.StatusOK, dto.CheckInListResponse{
		CheckIns:   checkInDTOs,
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// GetStreak returns the current user's consecutive daily check-in streak.
func (h *CheckInHandler) GetStreak(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	userID, _ := middleware.GetUserID(c)

	streak, err := h.checkInService.Streak(project.ID, userID)
	if err != nil {
		respondCheckInError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streak": streak,
	})
}

// MaterializeDailyStat persists today's stats as the fast-path snapshot row.
func (h *CheckInHandler) MaterializeDailyStat(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	stat, err := h.projectService.MaterializeDailyStat(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, stat)
}

func respondCheckInError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrConditionOutOfRange),
		errors.Is(err, services.ErrNoteTooLong):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyCheckedInToday):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNoCheckInToday):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
