package controller

import (
	"errors"

	"secaware_backend/internal/service"
	"secaware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ModuleController struct {
	ModuleService *service.ModuleService
}

func NewModuleController(moduleService *service.ModuleService) *ModuleController {
	return &ModuleController{ModuleService: moduleService}
}

// ListModules godoc
// @Summary 获取模块列表
// @Description 返回全部培训模块及当前用户的完成度和解锁状态
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.ModuleOverview}
// @Router /api/modules [get]
func (c *ModuleController) ListModules(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	modules, err := c.ModuleService.ListModules(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, modules)
}

// ListSections godoc
// @Summary 获取模块的小节列表
// @Description 返回模块内全部小节及完成/解锁状态，顺序解锁在这里计算
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "模块ID"
// @Success 200 {object} util.Response{data=[]service.SectionOverview}
// @Failure 404 {object} util.Response "模块不存在"
// @Router /api/modules/{id}/sections [get]
func (c *ModuleController) ListSections(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	moduleID := util.MustParseUint(ctx.Param("id"))
	if moduleID == 0 {
		util.BadRequest(ctx, "无效的模块ID")
		return
	}

	sections, err := c.ModuleService.ListSections(user.UserID, moduleID)
	if err != nil {
		if errors.Is(err, util.ErrModuleNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, sections)
}

// GetSectionDetail godoc
// @Summary 获取小节详情
// @Description 返回小节的阅读内容、测验题（不含答案）、阅读位置与草稿
// @Tags 培训模块
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response{data=service.SectionDetail}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id} [get]
func (c *ModuleController) GetSectionDetail(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	sectionID := util.MustParseUint(ctx.Param("id"))
	if sectionID == 0 {
		util.BadRequest(ctx, "无效的小节ID")
		return
	}

	detail, err := c.ModuleService.GetSectionDetail(user.UserID, sectionID)
	if err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, detail)
}
