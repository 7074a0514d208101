package util

import (
	"math"
	"strconv"
)

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// RoundPercent 计算 n/d 的百分比并四舍五入为整数，d 为 0 时返回 0
func RoundPercent(n, d int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * 100))
}

// RoundShare 按 n/d 的比例折算 pool 并四舍五入，d 为 0 时返回 0
func RoundShare(n, d, pool int) int {
	if d == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(d) * float64(pool)))
}
