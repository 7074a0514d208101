package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// XP 发放规则常量
const (
	QuestionXPReward = 10 // 单题答对奖励（每题仅发放一次）
	QuizXPPool       = 50 // 整卷提交的 XP 池，按新答对比例折算
	PerfectQuizBonus = 25 // 一次性满分奖励（全部题目均为本次新答对）
)

// 测验通过阈值
// 参考行为在不同调用点使用了两个不同阈值，属产品层面未统一的决策，
// 这里显式拆成两个命名常量：解锁判定用 70，用户统计口径用 80。
const (
	PassThresholdUnlock = 70
	PassThresholdStats  = 80
)

// 文件上传相关常量
const (
	MimeImage = "image/"
)
