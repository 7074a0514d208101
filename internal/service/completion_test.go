package service

import (
	"testing"

	"secaware_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestResolveSectionCompletionLearningOnly(t *testing.T) {
	st := SectionStats{LearningTotal: 3, LearningDone: 2}
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))

	st.LearningDone = 3
	assert.True(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))
}

func TestResolveSectionCompletionQuizOnly(t *testing.T) {
	// 7/10 = 70% 正好达到解锁阈值
	st := SectionStats{QuizTotal: 10, QuizCorrect: 7}
	assert.True(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))

	// 2/3 = 66.67% 四舍五入为 67，低于 70
	st = SectionStats{QuizTotal: 3, QuizCorrect: 2}
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))

	// 5/7 = 71.4% 四舍五入为 71
	st = SectionStats{QuizTotal: 7, QuizCorrect: 5}
	assert.True(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))
}

func TestResolveSectionCompletionMixed(t *testing.T) {
	// 内容读完但测验未达标
	st := SectionStats{LearningTotal: 2, LearningDone: 2, QuizTotal: 2, QuizCorrect: 1}
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))

	// 测验达标但内容未读完
	st = SectionStats{LearningTotal: 2, LearningDone: 1, QuizTotal: 2, QuizCorrect: 2}
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))

	// 两者都满足
	st = SectionStats{LearningTotal: 2, LearningDone: 2, QuizTotal: 2, QuizCorrect: 2}
	assert.True(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))
}

func TestResolveSectionCompletionEmptySection(t *testing.T) {
	st := SectionStats{}
	assert.False(t, st.Completable())
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))
}

func TestResolveSectionCompletionIsPure(t *testing.T) {
	st := SectionStats{LearningTotal: 4, LearningDone: 4, QuizTotal: 5, QuizCorrect: 4}
	first := ResolveSectionCompletion(st, util.PassThresholdUnlock)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ResolveSectionCompletion(st, util.PassThresholdUnlock))
	}
}

func TestThresholdChangesOutcome(t *testing.T) {
	// 75% 在 70 阈值下通过，在 80 统计阈值下不通过
	st := SectionStats{QuizTotal: 4, QuizCorrect: 3}
	assert.True(t, ResolveSectionCompletion(st, util.PassThresholdUnlock))
	assert.False(t, ResolveSectionCompletion(st, util.PassThresholdStats))
}

func TestResolveAvailabilityChain(t *testing.T) {
	done := SectionStats{LearningTotal: 1, LearningDone: 1}
	undone := SectionStats{LearningTotal: 1}

	available := ResolveAvailability([]SectionStats{done, undone, undone}, util.PassThresholdUnlock)
	assert.Equal(t, []bool{true, true, false}, available)

	// 首节永远可进入
	available = ResolveAvailability([]SectionStats{undone, undone}, util.PassThresholdUnlock)
	assert.Equal(t, []bool{true, false}, available)
}

func TestResolveAvailabilityEmptySectionSkipped(t *testing.T) {
	done := SectionStats{LearningTotal: 1, LearningDone: 1}
	undone := SectionStats{LearningTotal: 1}
	empty := SectionStats{}

	// 空节自动跳过，不阻塞后续节
	available := ResolveAvailability([]SectionStats{done, empty, undone}, util.PassThresholdUnlock)
	assert.Equal(t, []bool{true, true, true}, available)

	// 但空节也不会替前置节放行
	available = ResolveAvailability([]SectionStats{undone, empty, undone}, util.PassThresholdUnlock)
	assert.Equal(t, []bool{true, false, false}, available)
}

func TestModuleFullyCompleted(t *testing.T) {
	done := SectionStats{LearningTotal: 1, LearningDone: 1}
	undone := SectionStats{LearningTotal: 1}
	empty := SectionStats{}

	assert.True(t, ModuleFullyCompleted([]SectionStats{done, done}, util.PassThresholdUnlock))
	assert.False(t, ModuleFullyCompleted([]SectionStats{done, undone}, util.PassThresholdUnlock))

	// 空节不计入，但全空模块不算完成
	assert.True(t, ModuleFullyCompleted([]SectionStats{done, empty}, util.PassThresholdUnlock))
	assert.False(t, ModuleFullyCompleted([]SectionStats{empty, empty}, util.PassThresholdUnlock))
	assert.False(t, ModuleFullyCompleted(nil, util.PassThresholdUnlock))
}

func TestModuleCompletionPercent(t *testing.T) {
	done := SectionStats{LearningTotal: 1, LearningDone: 1}
	undone := SectionStats{LearningTotal: 1}
	empty := SectionStats{}

	assert.Equal(t, 50, ModuleCompletionPercent([]SectionStats{done, undone}, util.PassThresholdUnlock))
	// 1/3 完成 → 33
	assert.Equal(t, 33, ModuleCompletionPercent([]SectionStats{done, undone, undone}, util.PassThresholdUnlock))
	// 空节不参与分母
	assert.Equal(t, 100, ModuleCompletionPercent([]SectionStats{done, empty}, util.PassThresholdUnlock))
	assert.Equal(t, 0, ModuleCompletionPercent([]SectionStats{empty}, util.PassThresholdUnlock))
}
