package service

import (
	"secaware_backend/internal/util"
)

// SectionStats 某节在某用户下的即时统计，完成度只由它推导
type SectionStats struct {
	LearningTotal int
	LearningDone  int
	QuizTotal     int
	QuizCorrect   int
}

func (st SectionStats) HasLearningContent() bool {
	return st.LearningTotal > 0
}

func (st SectionStats) HasQuiz() bool {
	return st.QuizTotal > 0
}

// Completable 空节（无内容也无题）无法完成，属内容编排缺陷，不阻塞前后节
func (st SectionStats) Completable() bool {
	return st.HasLearningContent() || st.HasQuiz()
}

// ScorePercent 测验得分百分比（四舍五入），无题时为 0
func (st SectionStats) ScorePercent() int {
	return util.RoundPercent(st.QuizCorrect, st.QuizTotal)
}

// LearningPercent 阅读完成百分比（四舍五入），无内容时为 0
func (st SectionStats) LearningPercent() int {
	return util.RoundPercent(st.LearningDone, st.LearningTotal)
}

// QuizPassed 按给定阈值判定测验是否通过
func (st SectionStats) QuizPassed(threshold int) bool {
	if !st.HasQuiz() {
		return false
	}
	return st.ScorePercent() >= threshold
}

// ResolveSectionCompletion 节完成度的唯一判定实现
// 纯函数：相同输入必然得到相同输出，模块列表/节列表/统计共用本函数。
// 三种内容形态：
//   - 有阅读内容：全部读完，且（无测验 或 测验达阈值）
//   - 仅有测验：测验达阈值
//   - 二者皆无：永不完成
func ResolveSectionCompletion(st SectionStats, threshold int) bool {
	if st.HasLearningContent() {
		if st.LearningDone < st.LearningTotal {
			return false
		}
		if !st.HasQuiz() {
			return true
		}
		return st.QuizPassed(threshold)
	}

	if st.HasQuiz() {
		return st.QuizPassed(threshold)
	}

	return false
}

// ResolveAvailability 单次从左到右推导每节的可进入状态
// 第 0 节总是可进入；第 i 节可进入当且仅当第 i-1 节已完成。
// 空节视为已满足，避免死锁后续节的解锁。
func ResolveAvailability(stats []SectionStats, threshold int) []bool {
	available := make([]bool, len(stats))
	previousSatisfied := true

	for i, st := range stats {
		available[i] = previousSatisfied
		if st.Completable() {
			previousSatisfied = previousSatisfied && ResolveSectionCompletion(st, threshold)
		}
		// 空节不改变前置满足状态，相当于自动跳过
	}

	return available
}

// ModuleFullyCompleted 模块内全部可完成节均已完成
// 没有任何可完成节的模块视为未完成（不会向后解锁）
func ModuleFullyCompleted(stats []SectionStats, threshold int) bool {
	completable := 0
	for _, st := range stats {
		if !st.Completable() {
			continue
		}
		completable++
		if !ResolveSectionCompletion(st, threshold) {
			return false
		}
	}
	return completable > 0
}

// ModuleCompletionPercent 模块完成百分比，只统计可完成节
func ModuleCompletionPercent(stats []SectionStats, threshold int) int {
	completable := 0
	completed := 0
	for _, st := range stats {
		if !st.Completable() {
			continue
		}
		completable++
		if ResolveSectionCompletion(st, threshold) {
			completed++
		}
	}
	return util.RoundPercent(completed, completable)
}
