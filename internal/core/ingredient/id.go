package ingredient

import (
	"fmt"
	"strconv"
	"strings"
)

// IDPrefix 正規食材 ID 前綴
const IDPrefix = "ing_"

// Normalize 將純數字 ID 轉為正規格式 ing_NNN，其他格式原樣返回。
// 重複呼叫結果不變。
func Normalize(id string) string {
	if !isDigits(id) {
		return id
	}
	return IDPrefix + zfill(id, 3)
}

// Display 將正規 ID 轉回純數字格式，供期望數字 ID 的呼叫端使用
func Display(id string) string {
	rest, ok := strings.CutPrefix(id, IDPrefix)
	if !ok || !isDigits(rest) {
		return id
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return id
	}
	return strconv.FormatUint(n, 10)
}

// FromNumber 由數字建立正規 ID
func FromNumber(n int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, n)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
