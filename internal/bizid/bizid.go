package bizid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// 注文・請求書の業務キーのプレフィックス
const DefaultPrefix = "FPW"

// New は "<PREFIX>-<西暦4桁>-<5桁 10000..99999>" を返す。
// 一意性は保証しない。採番側がトランザクション内で重複チェックして再試行する。
func New(prefix string) string {
	return newAt(prefix, time.Now())
}

func newAt(prefix string, now time.Time) string {
	suffix := int64(10000)
	if n, err := rand.Int(rand.Reader, big.NewInt(90000)); err == nil {
		suffix += n.Int64()
	} else {
		suffix += now.UnixNano() % 90000
	}
	return fmt.Sprintf("%s-%d-%05d", prefix, now.Year(), suffix)
}
