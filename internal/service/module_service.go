package service

import (
	"secaware_backend/internal/model"
	"secaware_backend/internal/repository"
	"secaware_backend/internal/util"

	"gorm.io/gorm"
)

// ModuleService 课程目录读取：模块/节列表、解锁推导、节详情
// 全部为只读推导，完成度永远实时重算，不落库
type ModuleService struct {
	ModuleRepo   *repository.ModuleRepository
	ProgressRepo *repository.LearningProgressRepository
	AttemptRepo  *repository.QuestionAttemptRepository
	DraftRepo    *repository.DraftRepository
}

func NewModuleService(
	moduleRepo *repository.ModuleRepository,
	progressRepo *repository.LearningProgressRepository,
	attemptRepo *repository.QuestionAttemptRepository,
	draftRepo *repository.DraftRepository,
) *ModuleService {
	return &ModuleService{
		ModuleRepo:   moduleRepo,
		ProgressRepo: progressRepo,
		AttemptRepo:  attemptRepo,
		DraftRepo:    draftRepo,
	}
}

// LoadSectionStats 某节在某用户下的即时统计，是所有完成度判定的数据源
func (s *ModuleService) LoadSectionStats(userID, sectionID uint) (SectionStats, error) {
	var stats SectionStats

	items, err := s.ModuleRepo.ListContentItems(sectionID)
	if err != nil {
		return stats, err
	}
	itemIDs := make([]uint, len(items))
	for i, item := range items {
		itemIDs[i] = item.ID
	}
	done, err := s.ProgressRepo.CountCompleted(userID, itemIDs)
	if err != nil {
		return stats, err
	}

	questions, err := s.ModuleRepo.ListQuestions(sectionID)
	if err != nil {
		return stats, err
	}
	questionIDs := make([]uint, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}
	correct, err := s.AttemptRepo.CountCorrect(userID, questionIDs)
	if err != nil {
		return stats, err
	}

	stats.LearningTotal = len(items)
	stats.LearningDone = done
	stats.QuizTotal = len(questions)
	stats.QuizCorrect = correct
	return stats, nil
}

type SectionOverview struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	OrderIndex      int    `json:"orderIndex"`
	HasLearning     bool   `json:"hasLearning"`
	HasQuiz         bool   `json:"hasQuiz"`
	LearningPercent int    `json:"learningPercent"`
	ScorePercent    int    `json:"scorePercent"`
	Completed       bool   `json:"completed"`
	Available       bool   `json:"available"`
}

type ModuleOverview struct {
	ID                   uint   `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Icon                 string `json:"icon"`
	OrderIndex           int    `json:"orderIndex"`
	CompletionPercentage int    `json:"completionPercentage"`
	Completed            bool   `json:"completed"`
	Available            bool   `json:"available"`
	HasStarted           bool   `json:"hasStarted"`
}

// ListModules 模块总览
// 模块级解锁：第 N+1 个模块可进入当且仅当第 N 个模块的可完成节全部完成
func (s *ModuleService) ListModules(userID uint) ([]ModuleOverview, error) {
	modules, err := s.ModuleRepo.ListModules()
	if err != nil {
		return nil, err
	}

	overviews := make([]ModuleOverview, len(modules))
	previousCompleted := true

	for i, module := range modules {
		sections, err := s.ModuleRepo.ListSections(module.ID)
		if err != nil {
			return nil, err
		}

		stats := make([]SectionStats, len(sections))
		for j, section := range sections {
			st, err := s.LoadSectionStats(userID, section.ID)
			if err != nil {
				return nil, err
			}
			stats[j] = st
		}

		completed := ModuleFullyCompleted(stats, util.PassThresholdUnlock)
		started, err := s.moduleStarted(userID, sections, stats)
		if err != nil {
			return nil, err
		}

		overviews[i] = ModuleOverview{
			ID:                   module.ID,
			Title:                module.Title,
			Description:          module.Description,
			Icon:                 module.Icon,
			OrderIndex:           module.OrderIndex,
			CompletionPercentage: ModuleCompletionPercent(stats, util.PassThresholdUnlock),
			Completed:            completed,
			Available:            previousCompleted,
			HasStarted:           started,
		}
		previousCompleted = completed
	}

	return overviews, nil
}

// moduleStarted UI 用的「已开始」信号，不参与解锁
// 任一节完成 / 阅读位置大于0 / 存在测验草稿 / 存在任何阅读进度记录
func (s *ModuleService) moduleStarted(userID uint, sections []model.Section, stats []SectionStats) (bool, error) {
	sectionIDs := make([]uint, len(sections))
	var itemIDs []uint
	for i, section := range sections {
		sectionIDs[i] = section.ID
		items, err := s.ModuleRepo.ListContentItems(section.ID)
		if err != nil {
			return false, err
		}
		for _, item := range items {
			itemIDs = append(itemIDs, item.ID)
		}
	}

	for _, st := range stats {
		if ResolveSectionCompletion(st, util.PassThresholdUnlock) {
			return true, nil
		}
	}

	if any, err := s.DraftRepo.AnyPositionForSections(userID, sectionIDs); err != nil || any {
		return any, err
	}
	if any, err := s.DraftRepo.AnyDraftForSections(userID, sectionIDs); err != nil || any {
		return any, err
	}
	return s.ProgressRepo.AnyForItems(userID, itemIDs)
}

// ListSections 模块下的节列表，带完成与解锁标记
// 解锁为单次从左到右推导：第0节总是可进入，其余看前一节是否完成
func (s *ModuleService) ListSections(userID, moduleID uint) ([]SectionOverview, error) {
	if _, err := s.ModuleRepo.FindModuleByID(moduleID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrModuleNotFound
		}
		return nil, err
	}

	sections, err := s.ModuleRepo.ListSections(moduleID)
	if err != nil {
		return nil, err
	}

	stats := make([]SectionStats, len(sections))
	for i, section := range sections {
		st, err := s.LoadSectionStats(userID, section.ID)
		if err != nil {
			return nil, err
		}
		stats[i] = st
	}

	available := ResolveAvailability(stats, util.PassThresholdUnlock)

	overviews := make([]SectionOverview, len(sections))
	for i, section := range sections {
		overviews[i] = SectionOverview{
			ID:              section.ID,
			Title:           section.Title,
			Description:     section.Description,
			OrderIndex:      section.OrderIndex,
			HasLearning:     stats[i].HasLearningContent(),
			HasQuiz:         stats[i].HasQuiz(),
			LearningPercent: stats[i].LearningPercent(),
			ScorePercent:    stats[i].ScorePercent(),
			Completed:       ResolveSectionCompletion(stats[i], util.PassThresholdUnlock),
			Available:       available[i],
		}
	}

	return overviews, nil
}

type SectionQuestionView struct {
	ID         uint     `json:"id"`
	OrderIndex int      `json:"orderIndex"`
	Text       string   `json:"text"`
	Options    []string `json:"options"`
	Answered   bool     `json:"answered"`
	IsCorrect  bool     `json:"isCorrect"`
}

type SectionDetail struct {
	ID              uint                  `json:"id"`
	ModuleID        uint                  `json:"moduleId"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	OrderIndex      int                   `json:"orderIndex"`
	ContentItems    []ContentItemView     `json:"contentItems"`
	Questions       []SectionQuestionView `json:"questions"`
	Completed       bool                  `json:"completed"`
	ReadingPosition int                   `json:"readingPosition"`
	Draft           *QuizDraftState       `json:"draft,omitempty"`
}

type ContentItemView struct {
	ID         uint   `json:"id"`
	OrderIndex int    `json:"orderIndex"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Completed  bool   `json:"completed"`
}

// GetSectionDetail 节详情：内容、脱敏题目、完成度、书签与草稿
// 题目不带正确答案与解析，判定只能走提交接口
func (s *ModuleService) GetSectionDetail(userID, sectionID uint) (*SectionDetail, error) {
	section, err := s.ModuleRepo.FindSectionByID(sectionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrSectionNotFound
		}
		return nil, err
	}

	itemIDs := make([]uint, len(section.ContentItems))
	for i, item := range section.ContentItems {
		itemIDs[i] = item.ID
	}
	completionMap, err := s.ProgressRepo.GetCompletionMap(userID, itemIDs)
	if err != nil {
		return nil, err
	}

	questionIDs := make([]uint, len(section.Questions))
	for i, q := range section.Questions {
		questionIDs[i] = q.ID
	}
	attemptMap, err := s.AttemptRepo.GetAttemptMap(userID, questionIDs)
	if err != nil {
		return nil, err
	}

	stats, err := s.LoadSectionStats(userID, sectionID)
	if err != nil {
		return nil, err
	}

	detail := &SectionDetail{
		ID:           section.ID,
		ModuleID:     section.ModuleID,
		Title:        section.Title,
		Description:  section.Description,
		OrderIndex:   section.OrderIndex,
		ContentItems: make([]ContentItemView, len(section.ContentItems)),
		Questions:    make([]SectionQuestionView, len(section.Questions)),
		Completed:    ResolveSectionCompletion(stats, util.PassThresholdUnlock),
	}

	for i, item := range section.ContentItems {
		detail.ContentItems[i] = ContentItemView{
			ID:         item.ID,
			OrderIndex: item.OrderIndex,
			Title:      item.Title,
			Body:       item.Body,
			Completed:  completionMap[item.ID],
		}
	}

	for i, q := range section.Questions {
		view := SectionQuestionView{
			ID:         q.ID,
			OrderIndex: q.OrderIndex,
			Text:       q.Text,
			Options:    q.OptionList(),
		}
		if attempt, ok := attemptMap[q.ID]; ok {
			view.Answered = true
			view.IsCorrect = attempt.IsCorrect
		}
		detail.Questions[i] = view
	}

	// 书签越界时回到 0
	if pos, posErr := s.DraftRepo.GetReadingPosition(userID, sectionID); posErr == nil {
		if pos.LastStepIndex >= 0 && pos.LastStepIndex < len(section.ContentItems) {
			detail.ReadingPosition = pos.LastStepIndex
		}
	} else if posErr != gorm.ErrRecordNotFound {
		return nil, posErr
	}

	if draft, draftErr := s.DraftRepo.GetDraft(userID, sectionID); draftErr == nil {
		detail.Draft = &QuizDraftState{
			SectionID:            sectionID,
			CurrentQuestionIndex: draft.CurrentQuestionIndex,
			Answers:              draft.AnswerMap(),
			UpdatedAt:            draft.UpdatedAt,
		}
	} else if draftErr != gorm.ErrRecordNotFound {
		return nil, draftErr
	}

	return detail, nil
}
