package controller

import (
	"devforge_backend/internal/model"
	"devforge_backend/internal/service"
	"devforge_backend/internal/util"
	"fmt"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		StorageService: storageService,
	}
}

type UpdateProfileRequest struct {
	Level    model.Difficulty `json:"level"`
	Language string           `json:"language"`
}

// UpdateProfile godoc
// @Summary Update default generation preferences
// @Tags user
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "preferences"
// @Success 200 {object} util.Response{data=model.User}
// @Router /user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Level != "" && !req.Level.Valid() {
		util.BadRequest(ctx, fmt.Sprintf("invalid level %q", req.Level))
		return
	}

	user, err := c.UserService.UpdatePreferences(claims.UserID, req.Level, req.Language)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload a profile photo
// @Tags user
// @Security ApiKeyAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "avatar image"
// @Success 200 {object} util.Response
// @Router /user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "missing file")
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("avatars/%d%s", claims.UserID, filepath.Ext(header.Filename))
	url, err := c.StorageService.Provider.Upload(
		ctx.Request.Context(),
		filename,
		file,
		header.Size,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if err := c.UserService.UpdateAvatar(claims.UserID, url); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
