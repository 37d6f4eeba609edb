package controller

import (
	"devforge_backend/internal/service"
	"devforge_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type WorkspaceController struct {
	WorkspaceService *service.WorkspaceService
}

func NewWorkspaceController(workspaceService *service.WorkspaceService) *WorkspaceController {
	return &WorkspaceController{WorkspaceService: workspaceService}
}

// Open godoc
// @Summary Open a project workspace
// @Description Returns the project together with this session's transcript and cached artifacts.
// @Tags workspace
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response{data=service.WorkspaceView}
// @Failure 404 {object} util.Response
// @Router /workspace/{id} [get]
func (c *WorkspaceController) Open(ctx *gin.Context) {
	view, err := c.WorkspaceService.Open(ctx.Request.Context(), ownerID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, view)
}

type MentorMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMentorMessage godoc
// @Summary Ask the AI mentor a question
// @Description Chat degrades gracefully: an endpoint failure yields a fallback reply, not an error.
// @Tags workspace
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "project id"
// @Param body body MentorMessageRequest true "question"
// @Success 200 {object} util.Response{data=service.MentorReply}
// @Failure 409 {object} util.Response
// @Router /workspace/{id}/mentor [post]
func (c *WorkspaceController) SendMentorMessage(ctx *gin.Context) {
	var req MentorMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.WorkspaceService.SendMentorMessage(ctx.Request.Context(), ownerID(ctx), ctx.Param("id"), req.Text)
	if err != nil {
		respondWorkspaceError(ctx, err)
		return
	}
	util.Success(ctx, reply)
}

type ReviewRequest struct {
	Code string `json:"code"`
}

// SubmitReview godoc
// @Summary Submit code for an AI review
// @Tags workspace
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param id path string true "project id"
// @Param body body ReviewRequest true "code"
// @Success 200 {object} util.Response{data=model.CodeReviewResult}
// @Failure 400 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /workspace/{id}/review [post]
func (c *WorkspaceController) SubmitReview(ctx *gin.Context) {
	var req ReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, err := c.WorkspaceService.SubmitReview(ctx.Request.Context(), ownerID(ctx), ctx.Param("id"), req.Code)
	if err != nil {
		respondWorkspaceError(ctx, err)
		return
	}
	util.Success(ctx, review)
}

// ResetReview godoc
// @Summary Clear the cached review so a new revision can be reviewed
// @Tags workspace
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response
// @Router /workspace/{id}/review [delete]
func (c *WorkspaceController) ResetReview(ctx *gin.Context) {
	if err := c.WorkspaceService.ResetReview(ctx.Request.Context(), ownerID(ctx), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// RevealSolution godoc
// @Summary Reveal the AI reference solution (generated once per session)
// @Tags workspace
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /workspace/{id}/solution [post]
func (c *WorkspaceController) RevealSolution(ctx *gin.Context) {
	solution, err := c.WorkspaceService.RevealSolution(ctx.Request.Context(), ownerID(ctx), ctx.Param("id"))
	if err != nil {
		respondWorkspaceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"solution": solution})
}

// Leave godoc
// @Summary Leave the workspace, discarding transcript, review and solution
// @Tags workspace
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response
// @Router /workspace/{id}/leave [post]
func (c *WorkspaceController) Leave(ctx *gin.Context) {
	if err := c.WorkspaceService.Discard(ctx.Request.Context(), ownerID(ctx), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

func respondWorkspaceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrEmptyCode), errors.Is(err, util.ErrEmptyMessage):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrActionInFlight):
		util.Conflict(ctx, "a request for this action is already in flight")
	case errors.Is(err, util.ErrAIMissingKey):
		util.Error(ctx, http.StatusServiceUnavailable, "AI endpoint is not configured")
	case errors.Is(err, util.ErrGeneration):
		util.Error(ctx, http.StatusBadGateway, "Failed to generate. Please try again.")
	default:
		util.LogInternalError(ctx, err)
	}
}
