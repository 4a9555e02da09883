package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/checkin-api/internal/dto"
	apierrors "github.com/yukikurage/checkin-api/internal/errors"
	"github.com/yukikurage/checkin-api/internal/middleware"
	"github.com/yukikurage/checkin-api/internal/services"
)

// MembershipHandler coordinates join-request and invitation HTTP handlers.
type MembershipHandler struct {
	membershipService *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler.
func NewMembershipHandler(membershipService *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{
		membershipService: membershipService,
	}
}

// RequestToJoin creates (or coalesces to) a pending join request.
func (h *MembershipHandler) RequestToJoin(c *gin.Context) {
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

	req, created, err := h.membershipService.RequestToJoin(projectID, userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToJoinRequestDTO(*req))
}

// GetMyJoinRequest returns the current user's latest request for a project.
func (h *MembershipHandler) GetMyJoinRequest(c *gin.Context) {
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

	req, err := h.membershipService.GetMyRequest(projectID, userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJoinRequestDTO(*req))
}

// ListJoinRequests lists a project's pending join requests.
func (h *MembershipHandler) ListJoinRequests(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	reqs, err := h.membershipService.ListPendingRequests(project.ID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	reqDTOs := make([]dto.JoinRequestDTO, len(reqs))
	for i, r := range reqs {
		reqDTOs[i] = dto.ToJoinRequestDTO(r)
	}

	c.JSON(http.StatusOK, gin.H{
		"join_requests": reqDTOs,
	})
}

// ApproveJoinRequest approves a pending join request.
func (h *MembershipHandler) ApproveJoinRequest(c *gin.Context) {
	approverID, _ := middleware.GetUserID(c)

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request ID")
		return
	}

	req, err := h.membershipService.ApproveRequest(requestID, approverID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJoinRequestDTO(*req))
}

// RejectJoinRequest rejects a pending join request.
func (h *MembershipHandler) RejectJoinRequest(c *gin.Context) {
	approverID, _ := middleware.GetUserID(c)

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request ID")
		return
	}

	type RejectRequest struct {
		Reason string `json:"reason"`
	}

	// Reason is optional; an empty body is fine.
	var req RejectRequest
	_ = c.ShouldBindJSON(&req)

	joinReq, err := h.membershipService.RejectRequest(requestID, approverID, req.Reason)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToJoinRequestDTO(*joinReq))
}

// InviteMember creates a pending invitation addressed to an email.
func (h *MembershipHandler) InviteMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}
	inviterID, _ := middleware.GetUserID(c)

	type InviteRequest struct {
		Email string `json:"email" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	inv, err := h.membershipService.Invite(project.ID, inviterID, req.Email)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToInvitationDTO(*inv))
}

// CancelInvitation cancels a pending invitation.
func (h *MembershipHandler) CancelInvitation(c *gin.Context) {
	member, ok := middleware.GetProjectMember(c)
	if !ok {
		apierrors.InternalError(c, "Membership not found in context")
		return
	}
	actorID, _ := middleware.GetUserID(c)

	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	inv, err := h.membershipService.CancelInvitation(invitationID, actorID, member.Role)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*inv))
}

// AcceptInvitation accepts a pending invitation addressed to the current
// user's email.
func (h *MembershipHandler) AcceptInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invitationID, err := strconv.ParseUint(c.Param("invitation_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	inv, err := h.membershipService.AcceptInvitation(invitationID, userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationDTO(*inv))
}

// ListMyInvitations lists pending invitations addressed to the current user.
func (h *MembershipHandler) ListMyInvitations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	invs, err := h.membershipService.ListMyInvitations(userID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	invDTOs := make([]dto.InvitationDTO, len(invs))
	for i, inv := range invs {
		invDTOs[i] = dto.ToInvitationDTO(inv)
	}

	c.JSON(http.StatusOK, gin.H{
		"invitations": invDTOs,
	})
}

// ListInvitationHistory returns the project's audit trail.
func (h *MembershipHandler) ListInvitationHistory(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not found in context")
		return
	}

	history, err := h.membershipService.ListHistory(project.ID)
	if err != nil {
		respondMembershipError(c, err)
		return
	}

	historyDTOs := make([]dto.InvitationHistoryDTO, len(history))
	for i, h := range history {
		historyDTOs[i] = dto.ToInvitationHistoryDTO(h)
	}

	c.JSON(http.StatusOK, gin.H{
		"history": historyDTOs,
	})
}

func respondMembershipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrSelfInvitation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAlreadyProjectMember),
		errors.Is(err, services.ErrDuplicateInvitation),
		errors.Is(err, services.ErrRequestAlreadyProcessed),
		errors.Is(err, services.ErrInvitationAlreadyProcessed),
		errors.Is(err, services.ErrProjectNotRequestable),
		errors.Is(err, services.ErrProjectArchived):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrCannotProcessOwnRequest),
		errors.Is(err, services.ErrCannotCancelOthersInvitation),
		errors.Is(err, services.ErrInvitationNotAddressed):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
