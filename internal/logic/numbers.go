package logic

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newNumber 生成带前缀的业务编号（时间 + UUID片段）
// 结算编号在任何外部调用之前生成，保证重试可幂等
func newNumber(prefix string) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return prefix + time.Now().Format("20060102150405") + suffix
}
