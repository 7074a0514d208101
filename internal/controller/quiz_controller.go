package controller

import (
	"errors"

	"secaware_backend/internal/service"
	"secaware_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// SubmitQuiz godoc
// @Summary 整卷提交测验
// @Description 批量判题、计算得分与XP并删除草稿，整体在一个事务内
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Param body body service.QuizSubmission true "题目ID到选项下标的映射"
// @Success 200 {object} util.Response{data=service.QuizSubmitResult}
// @Failure 400 {object} util.Response "选项下标越界或小节没有测验题"
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/quiz/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
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

	var submission service.QuizSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(user.UserID, sectionID, submission)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSectionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidAnswerIndex):
			util.BadRequest(ctx, "选项下标越界")
		case errors.Is(err, util.ErrNoQuizQuestions):
			util.BadRequest(ctx, "该小节没有测验题")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// SaveDraft godoc
// @Summary 保存测验草稿
// @Description 保存当前答题进度，不判题、不发放XP
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Param body body service.QuizDraftRequest true "草稿内容"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/quiz/draft [put]
func (c *QuizController) SaveDraft(ctx *gin.Context) {
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

	var req service.QuizDraftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.SaveDraft(user.UserID, sectionID, req); err != nil {
		switch {
		case errors.Is(err, util.ErrSectionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidDraft):
			util.BadRequest(ctx, "草稿内容无效")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// GetDraft godoc
// @Summary 获取测验草稿
// @Description 返回保存的答题进度，没有草稿时 data 为 null
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response{data=service.QuizDraftState}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/quiz/draft [get]
func (c *QuizController) GetDraft(ctx *gin.Context) {
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

	draft, err := c.QuizService.GetDraft(user.UserID, sectionID)
	if err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, draft)
}

// ReadingPositionRequest 阅读位置请求体
type ReadingPositionRequest struct {
	StepIndex *int `json:"stepIndex" binding:"required"`
}

// SaveReadingPosition godoc
// @Summary 保存阅读位置
// @Description 记录用户在小节内读到第几屏，便于断点续读
// @Tags 测验
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Param body body ReadingPositionRequest true "阅读位置"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/reading-position [put]
func (c *QuizController) SaveReadingPosition(ctx *gin.Context) {
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

	var req ReadingPositionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.QuizService.SaveReadingPosition(user.UserID, sectionID, *req.StepIndex); err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"saved": true})
}

// GetReadingPosition godoc
// @Summary 获取阅读位置
// @Description 返回保存的阅读位置，越界或缺失时回落为 0
// @Tags 测验
// @Produce json
// @Security BearerAuth
// @Param id path int true "小节ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "小节不存在"
// @Router /api/sections/{id}/reading-position [get]
func (c *QuizController) GetReadingPosition(ctx *gin.Context) {
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

	stepIndex, err := c.QuizService.GetReadingPosition(user.UserID, sectionID)
	if err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"stepIndex": stepIndex})
}
