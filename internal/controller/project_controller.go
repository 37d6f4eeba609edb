package controller

import (
	"devforge_backend/internal/model"
	"devforge_backend/internal/service"
	"devforge_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ProjectController struct {
	ProjectService *service.ProjectService
}

func NewProjectController(projectService *service.ProjectService) *ProjectController {
	return &ProjectController{ProjectService: projectService}
}

// ownerID resolves the identity scope: the authenticated user's id, or 0
// in local mode where requests carry no claims.
func ownerID(ctx *gin.Context) uint {
	if claims := util.GetUserFromContext(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}

// Create godoc
// @Summary Generate a project spec from preferences and save it
// @Tags projects
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body model.UserPreferences true "level, language, concepts"
// @Success 201 {object} util.Response{data=model.Project}
// @Failure 400 {object} util.Response
// @Failure 502 {object} util.Response
// @Router /projects [post]
func (c *ProjectController) Create(ctx *gin.Context) {
	var prefs model.UserPreferences
	if err := ctx.ShouldBindJSON(&prefs); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !prefs.Level.Valid() {
		util.BadRequest(ctx, "level must be Beginner, Intermediate or Advanced")
		return
	}

	project, err := c.ProjectService.Create(ctx.Request.Context(), ownerID(ctx), prefs)
	if err != nil {
		respondGenerationError(ctx, err)
		return
	}

	util.Created(ctx, project)
}

// List godoc
// @Summary List the caller's projects, newest first
// @Tags projects
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Project}
// @Router /projects [get]
func (c *ProjectController) List(ctx *gin.Context) {
	projects, err := c.ProjectService.List(ctx.Request.Context(), ownerID(ctx))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	util.Success(ctx, projects)
}

// Get godoc
// @Summary Fetch one project
// @Tags projects
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response{data=model.Project}
// @Failure 404 {object} util.Response
// @Router /projects/{id} [get]
func (c *ProjectController) Get(ctx *gin.Context) {
	project, err := c.ProjectService.Get(ctx.Request.Context(), ownerID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, project)
}

// Delete godoc
// @Summary Delete a project and discard its workspace session
// @Tags projects
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "project id"
// @Success 200 {object} util.Response
// @Router /projects/{id} [delete]
func (c *ProjectController) Delete(ctx *gin.Context) {
	if err := c.ProjectService.Delete(ctx.Request.Context(), ownerID(ctx), ctx.Param("id")); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// respondGenerationError maps generator failures onto the API: a missing
// credential is a configuration problem for this action only, everything
// else from the endpoint is a bad gateway.
func respondGenerationError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAIMissingKey):
		util.Error(ctx, http.StatusServiceUnavailable, "AI endpoint is not configured")
	case errors.Is(err, util.ErrGeneration):
		util.Error(ctx, http.StatusBadGateway, "Failed to generate. Please try again.")
	default:
		util.LogInternalError(ctx, err)
	}
}
