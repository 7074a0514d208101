package controller

import (
	"errors"

	"secaware_backend/internal/service"
	"secaware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// SubmitAnswerRequest 单题作答请求体
type SubmitAnswerRequest struct {
	SelectedIndex *int `json:"selectedIndex" binding:"required"` // 指针区分 0 和缺省
}

// SubmitAnswer godoc
// @Summary 提交单题答案
// @Description 判题并按幂等规则发放XP，重复答对不会二次发放
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Param body body SubmitAnswerRequest true "所选选项下标"
// @Success 200 {object} util.Response{data=service.AnswerResult}
// @Failure 400 {object} util.Response "选项下标越界"
// @Failure 404 {object} util.Response "题目不存在"
// @Router /api/questions/{id}/answer [post]
func (c *ProgressController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID := util.MustParseUint(ctx.Param("id"))
	if questionID == 0 {
		util.BadRequest(ctx, "无效的题目ID")
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ProgressService.SubmitAnswer(user.UserID, questionID, *req.SelectedIndex)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidAnswerIndex):
			util.BadRequest(ctx, "选项下标越界")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// MarkContentComplete godoc
// @Summary 标记单屏内容已读
// @Description 将一条阅读内容标记为完成，重复标记幂等
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "内容ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "内容不存在"
// @Router /api/content/{id}/complete [post]
func (c *ProgressController) MarkContentComplete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	itemID := util.MustParseUint(ctx.Param("id"))
	if itemID == 0 {
		util.BadRequest(ctx, "无效的内容ID")
		return
	}

	if err := c.ProgressService.MarkContentComplete(user.UserID, itemID); err != nil {
		if errors.Is(err, util.ErrContentItemNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"completed": true})
}

// MarkSectionContentComplete godoc
// @Summary 标记小节全部内容已读
// @Description 一次性将小节内所有阅读内容标记为完成，整体原子生效
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/content/complete [post]
func (c *ProgressController) MarkSectionContentComplete(ctx *gin.Context) {
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

	if err := c.ProgressService.MarkSectionContentComplete(user.UserID, sectionID); err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"completed": true})
}

// GetSectionProgress godoc
// @Summary 获取小节阅读进度
// @Description 返回小节内每条内容的完成状态与整体百分比
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response{data=service.SectionContentProgress}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/progress [get]
func (c *ProgressController) GetSectionProgress(ctx *gin.Context) {
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

	progress, err := c.ProgressService.GetSectionProgress(user.UserID, sectionID)
	if err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, progress)
}
